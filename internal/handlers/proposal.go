package handlers

import (
	"net/http"

	"github.com/RedSkyFlow/Goose/httpx"
	"github.com/RedSkyFlow/Goose/internal/models"
	"github.com/RedSkyFlow/Goose/internal/services"
)

type ProposalHandler struct {
	Svc *services.ProposalService
}

func NewProposalHandler(svc *services.ProposalService) *ProposalHandler {
	return &ProposalHandler{Svc: svc}
}

// Create: POST /proposals — invoked by the content generator with a draft
// payload.
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DealID  string                 `json:"deal_id"`
		Content models.ProposalContent `json:"content"`
		Items   []models.ProposalItem  `json:"items"`
	}
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	p, err := h.Svc.Create(req.DealID, req.Content, req.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Get: GET /proposals?id=... — returns the full read projection: grouped
// items, per-category subtotals, grand total, deposit.
func (h *ProposalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	p, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.ProjectProposal(p))
}

// Send: POST /proposals/send?id=...
func (h *ProposalHandler) Send(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	p, err := h.Svc.Send(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// View: POST /proposals/view?id=... — recipient opened the proposal.
func (h *ProposalHandler) View(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	p, err := h.Svc.View(id, r.UserAgent())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Accept: POST /proposals/accept?id=... with signature and selection.
func (h *ProposalHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var req struct {
		Signature       string   `json:"signature"`
		SelectedItemIDs []string `json:"selected_item_ids"`
	}
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	p, err := h.Svc.Accept(id, req.Signature, req.SelectedItemIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Pay: POST /proposals/pay?id=... — settles the 50% deposit. Idempotent on
// an already-paid proposal.
func (h *ProposalHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	p, err := h.Svc.Pay(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"proposal":       p,
		"transaction_id": p.PaymentGatewayTxID,
		"deposit":        services.DepositAmount(p),
	})
}

// Expire: POST /proposals/expire?id=... — administrative expiry.
func (h *ProposalHandler) Expire(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	p, err := h.Svc.Expire(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
