package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RedSkyFlow/Goose/internal/db"
	"github.com/RedSkyFlow/Goose/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, m := range db.AllModels() {
		if err := conn.AutoMigrate(m); err != nil {
			t.Fatalf("migrate %T: %v", m, err)
		}
	}
	return conn
}

// seedCRM creates the minimal company/contact/deal graph used by most tests.
func seedCRM(t *testing.T, conn *gorm.DB) (models.Company, models.Contact, models.Deal) {
	t.Helper()
	company := models.Company{CompanyID: "comp-1", Name: "The Grand Hotel", Domain: "grandhotel.com", Industry: "Hospitality"}
	if err := conn.Create(&company).Error; err != nil {
		t.Fatalf("company: %v", err)
	}
	contact := models.Contact{ContactID: "cont-1", CompanyID: company.CompanyID, FirstName: "John", LastName: "Doe", Email: "john@grandhotel.com", Role: "GM"}
	if err := conn.Create(&contact).Error; err != nil {
		t.Fatalf("contact: %v", err)
	}
	deal := models.Deal{DealID: "deal-1", CompanyID: company.CompanyID, DealName: "Network Upgrade", Value: 250000, Stage: models.DealStageProposal, AIHealthScore: 85}
	if err := conn.Create(&deal).Error; err != nil {
		t.Fatalf("deal: %v", err)
	}
	return company, contact, deal
}

func mustInteraction(t *testing.T, tl *TimelineService, id string, ts time.Time, companyID, dealID, contactID string) {
	t.Helper()
	it := models.Interaction{
		InteractionID: id,
		Type:          models.InteractionEmail,
		Timestamp:     ts,
		ContentRaw:    "content " + id,
	}
	if err := tl.LinkInteraction(&it, companyID, dealID, contactID); err != nil {
		t.Fatalf("link %s: %v", id, err)
	}
}
