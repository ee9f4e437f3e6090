package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/RedSkyFlow/Goose/httpx"
	"github.com/RedSkyFlow/Goose/internal/models"
	"github.com/RedSkyFlow/Goose/validation"
)

type CompanyHandler struct {
	DB *gorm.DB
}

func NewCompanyHandler(db *gorm.DB) *CompanyHandler { return &CompanyHandler{DB: db} }

// List: GET /companies
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	var companies []models.Company
	if err := h.DB.Order("created_at desc").Find(&companies).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_companies", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, companies)
}

// Create: POST /companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Domain   string `json:"domain"`
		Industry string `json:"industry"`
	}
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	company := models.Company{
		CompanyID: models.NewID("comp"),
		Name:      req.Name,
		Domain:    req.Domain,
		Industry:  req.Industry,
		// Placeholder until the content generator produces a real summary.
		AISummary: "New company added via Goose OS.",
	}
	if err := h.DB.Create(&company).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_company", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, company)
}
