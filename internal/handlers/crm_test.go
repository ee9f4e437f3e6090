package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RedSkyFlow/Goose/internal/db"
	"github.com/RedSkyFlow/Goose/internal/models"
	"github.com/RedSkyFlow/Goose/internal/services"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
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

func postJSON(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v body=%s", err, w.Body.String())
	}
	return out
}

func TestCompanyCreateAndList(t *testing.T) {
	conn := setupHandlerTestDB(t)
	h := NewCompanyHandler(conn)

	w := postJSON(t, h.Create, "/companies", `{"name":"Acme","domain":"acme.io","industry":"Manufacturing"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	created := decodeBody[models.Company](t, w)
	if created.CompanyID == "" || created.AISummary == "" {
		t.Fatalf("missing generated fields: %#v", created)
	}

	w = postJSON(t, h.Create, "/companies", `{"domain":"nameless.io"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name got %d", w.Code)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/companies", nil)
	listW := httptest.NewRecorder()
	h.List(listW, listReq)
	if listW.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", listW.Code)
	}
	companies := decodeBody[[]models.Company](t, listW)
	if len(companies) != 1 {
		t.Fatalf("expected 1 company got %d", len(companies))
	}
}

func TestContactCreateRequiresKnownCompany(t *testing.T) {
	conn := setupHandlerTestDB(t)
	h := NewContactHandler(conn)

	w := postJSON(t, h.Create, "/contacts", `{"company_id":"comp-missing","first_name":"Jane"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}

	company := models.Company{CompanyID: "comp-1", Name: "Acme"}
	if err := conn.Create(&company).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	w = postJSON(t, h.Create, "/contacts", `{"company_id":"comp-1","first_name":"Jane","last_name":"Roe","email":"jane@acme.io","role":"CTO"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	// Filtered list only returns the company's contacts.
	listReq := httptest.NewRequest(http.MethodGet, "/contacts?company_id=comp-1", nil)
	listW := httptest.NewRecorder()
	h.List(listW, listReq)
	contacts := decodeBody[[]models.Contact](t, listW)
	if len(contacts) != 1 || contacts[0].FirstName != "Jane" {
		t.Fatalf("unexpected contacts: %#v", contacts)
	}
	otherReq := httptest.NewRequest(http.MethodGet, "/contacts?company_id=comp-2", nil)
	otherW := httptest.NewRecorder()
	h.List(otherW, otherReq)
	if others := decodeBody[[]models.Contact](t, otherW); len(others) != 0 {
		t.Fatalf("filter leaked contacts: %#v", others)
	}
}

func TestDealCreateValidationAndLastInteraction(t *testing.T) {
	conn := setupHandlerTestDB(t)
	tl := services.NewTimelineService(conn)
	h := NewDealHandler(conn, tl)

	company := models.Company{CompanyID: "comp-1", Name: "Acme"}
	if err := conn.Create(&company).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := postJSON(t, h.Create, "/deals", `{"company_id":"comp-1","deal_name":"Upgrade","value":-5,"ai_health_score":50}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative value: expected 400 got %d", w.Code)
	}
	w = postJSON(t, h.Create, "/deals", `{"company_id":"comp-1","deal_name":"Upgrade","value":1000,"ai_health_score":150}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("health out of range: expected 400 got %d", w.Code)
	}
	w = postJSON(t, h.Create, "/deals", `{"company_id":"comp-1","deal_name":"Upgrade","value":1000,"ai_health_score":70,"stage":"PROPOSAL"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	deal := decodeBody[models.Deal](t, w)

	// No interactions yet: last_interaction_at omitted.
	listW := httptest.NewRecorder()
	h.List(listW, httptest.NewRequest(http.MethodGet, "/deals", nil))
	deals := decodeBody[[]models.Deal](t, listW)
	if len(deals) != 1 || deals[0].LastInteractionAt != nil {
		t.Fatalf("unexpected deals: %#v", deals)
	}

	ts := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	it := models.Interaction{InteractionID: "int-1", Type: models.InteractionCallLog, Timestamp: ts}
	if err := tl.LinkInteraction(&it, "comp-1", deal.DealID, ""); err != nil {
		t.Fatalf("link: %v", err)
	}
	listW = httptest.NewRecorder()
	h.List(listW, httptest.NewRequest(http.MethodGet, "/deals", nil))
	deals = decodeBody[[]models.Deal](t, listW)
	if deals[0].LastInteractionAt == nil || !deals[0].LastInteractionAt.Equal(ts) {
		t.Fatalf("last_interaction_at = %v want %v", deals[0].LastInteractionAt, ts)
	}
}

func TestInteractionEndpoints(t *testing.T) {
	conn := setupHandlerTestDB(t)
	tl := services.NewTimelineService(conn)
	h := NewInteractionHandler(tl)

	company := models.Company{CompanyID: "comp-1", Name: "Acme"}
	if err := conn.Create(&company).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	contact := models.Contact{ContactID: "cont-1", CompanyID: "comp-1", FirstName: "Jane", Role: "CTO", Email: "jane@acme.io"}
	if err := conn.Create(&contact).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Missing company is a validation fault, not a silent drop.
	w := postJSON(t, h.Create, "/interactions", `{"type":"EMAIL","content_raw":"hello"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}

	w = postJSON(t, h.Create, "/interactions", `{"type":"EMAIL","content_raw":"hello","company_id":"comp-1","contact_id":"cont-1","timestamp":"2024-05-01T09:00:00Z"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	created := decodeBody[models.Interaction](t, w)

	tlW := httptest.NewRecorder()
	h.GetTimeline(tlW, httptest.NewRequest(http.MethodGet, "/timeline?entity_type=company&entity_id=comp-1", nil))
	if tlW.Code != http.StatusOK {
		t.Fatalf("timeline: expected 200 got %d", tlW.Code)
	}
	entries := decodeBody[[]models.TimelineEntry](t, tlW)
	if len(entries) != 1 || entries[0].Author.Name != "Jane" {
		t.Fatalf("unexpected timeline: %#v", entries)
	}

	tlW = httptest.NewRecorder()
	h.GetTimeline(tlW, httptest.NewRequest(http.MethodGet, "/timeline?entity_type=deal&entity_id=deal-missing", nil))
	if tlW.Code != http.StatusNotFound {
		t.Fatalf("missing entity: expected 404 got %d", tlW.Code)
	}

	// Annotation is write-once through the API as well.
	body := fmt.Sprintf(`{"interaction_id":%q,"summary":"Client said hello","sentiment":"POSITIVE"}`, created.InteractionID)
	w = postJSON(t, h.Annotate, "/interactions/annotate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("annotate: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	body = fmt.Sprintf(`{"interaction_id":%q,"summary":"Overwrite attempt","sentiment":"NEGATIVE"}`, created.InteractionID)
	w = postJSON(t, h.Annotate, "/interactions/annotate", body)
	annotated := decodeBody[models.Interaction](t, w)
	if annotated.AISummary != "Client said hello" {
		t.Fatalf("annotation overwritten: %#v", annotated)
	}
}
