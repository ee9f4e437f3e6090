package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/RedSkyFlow/Goose/httpx"
	"github.com/RedSkyFlow/Goose/internal/models"
	"github.com/RedSkyFlow/Goose/validation"
)

type ContactHandler struct {
	DB *gorm.DB
}

func NewContactHandler(db *gorm.DB) *ContactHandler { return &ContactHandler{DB: db} }

// List: GET /contacts?company_id=...
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("created_at desc")
	if companyID := r.URL.Query().Get("company_id"); companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	var contacts []models.Contact
	if err := q.Find(&contacts).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_contacts", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, contacts)
}

// Create: POST /contacts — contacts always belong to an existing company.
// There is no delete endpoint: authorship of past interactions must stay
// resolvable.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID string `json:"company_id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Role      string `json:"role"`
	}
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("company_id", req.CompanyID, v)
	validation.Required("first_name", req.FirstName, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var count int64
	if err := h.DB.Model(&models.Company{}).Where("company_id = ?", req.CompanyID).Count(&count).Error; err != nil || count == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"company_id": "unknown_company"})
		return
	}
	contact := models.Contact{
		ContactID: models.NewID("cont"),
		CompanyID: req.CompanyID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
	}
	if err := h.DB.Create(&contact).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_contact", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, contact)
}
