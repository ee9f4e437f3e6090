package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/RedSkyFlow/Goose/httpx"
	"github.com/RedSkyFlow/Goose/internal/models"
	"github.com/RedSkyFlow/Goose/internal/services"
	"github.com/RedSkyFlow/Goose/validation"
)

type DealHandler struct {
	DB       *gorm.DB
	Timeline *services.TimelineService
}

func NewDealHandler(db *gorm.DB, tl *services.TimelineService) *DealHandler {
	return &DealHandler{DB: db, Timeline: tl}
}

// List: GET /deals?company_id=... — each deal carries last_interaction_at,
// recomputed from the linked interactions on every read.
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("created_at desc")
	if companyID := r.URL.Query().Get("company_id"); companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	var deals []models.Deal
	if err := q.Find(&deals).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_deals", nil)
		return
	}
	for i := range deals {
		last, err := h.Timeline.LastInteractionAt(deals[i].DealID)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_deals", nil)
			return
		}
		deals[i].LastInteractionAt = last
	}
	httpx.JSON(w, http.StatusOK, deals)
}

// Create: POST /deals
func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID         string  `json:"company_id"`
		DealName          string  `json:"deal_name"`
		Value             float64 `json:"value"`
		Stage             string  `json:"stage"`
		HealthScore       int     `json:"ai_health_score"`
		CloseDateExpected string  `json:"close_date_expected"`
	}
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("company_id", req.CompanyID, v)
	validation.Required("deal_name", req.DealName, v)
	validation.PositiveFloat("value", req.Value, v)
	validation.IntRange("ai_health_score", req.HealthScore, 0, 100, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var count int64
	if err := h.DB.Model(&models.Company{}).Where("company_id = ?", req.CompanyID).Count(&count).Error; err != nil || count == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"company_id": "unknown_company"})
		return
	}
	stage := models.DealStage(req.Stage)
	if stage == "" {
		stage = models.DealStageLead
	}
	deal := models.Deal{
		DealID:            models.NewID("deal"),
		CompanyID:         req.CompanyID,
		DealName:          req.DealName,
		Value:             req.Value,
		Stage:             stage,
		AIHealthScore:     req.HealthScore,
		CloseDateExpected: req.CloseDateExpected,
	}
	if err := h.DB.Create(&deal).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_deal", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, deal)
}
