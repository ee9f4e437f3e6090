package handlers

import (
	"net/http"
	"time"

	"github.com/RedSkyFlow/Goose/httpx"
	"github.com/RedSkyFlow/Goose/internal/models"
	"github.com/RedSkyFlow/Goose/internal/services"
)

type InteractionHandler struct {
	Timeline *services.TimelineService
}

func NewInteractionHandler(tl *services.TimelineService) *InteractionHandler {
	return &InteractionHandler{Timeline: tl}
}

// Create: POST /interactions — records an interaction and its single link
// in one shot. company_id is mandatory; deal_id and contact_id optional.
func (h *InteractionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type             string `json:"type"`
		SourceIdentifier string `json:"source_identifier"`
		Timestamp        string `json:"timestamp"`
		ContentRaw       string `json:"content_raw"`
		CompanyID        string `json:"company_id"`
		DealID           string `json:"deal_id"`
		ContactID        string `json:"contact_id"`
	}
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var ts time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"timestamp": "must_be_rfc3339"})
			return
		}
		ts = parsed
	}
	interaction := models.Interaction{
		InteractionID:    models.NewID("int"),
		Type:             models.InteractionType(req.Type),
		SourceIdentifier: req.SourceIdentifier,
		Timestamp:        ts,
		ContentRaw:       req.ContentRaw,
	}
	if err := h.Timeline.LinkInteraction(&interaction, req.CompanyID, req.DealID, req.ContactID); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, interaction)
}

// GetTimeline: GET /timeline?entity_type=deal&entity_id=...
func (h *InteractionHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	entityType := services.EntityType(r.URL.Query().Get("entity_type"))
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"entity_id": "required"})
		return
	}
	entries, err := h.Timeline.Timeline(entityType, entityID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

// Annotate: POST /interactions/annotate — one-shot AI annotation write.
// Repeat calls return the cached annotation unchanged.
func (h *InteractionHandler) Annotate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InteractionID string `json:"interaction_id"`
		Summary       string `json:"summary"`
		Sentiment     string `json:"sentiment"`
	}
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.InteractionID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"interaction_id": "required"})
		return
	}
	it, err := h.Timeline.Annotate(req.InteractionID, req.Summary, models.Sentiment(req.Sentiment))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}
