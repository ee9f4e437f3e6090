package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/RedSkyFlow/Goose/internal/models"
	"github.com/RedSkyFlow/Goose/internal/payment"
	"github.com/RedSkyFlow/Goose/validation"
)

// DepositRate is the upfront-payable fraction of the final accepted value.
const DepositRate = 0.5

// transitions is the lifecycle table: which states each operation may run
// from. Checked before every mutation so illegal transitions are a single
// exhaustively-tested concern rather than scattered ifs.
var transitions = map[string][]models.ProposalStatus{
	"send":   {models.ProposalStatusDraft},
	"view":   {models.ProposalStatusDraft, models.ProposalStatusSent},
	"accept": {models.ProposalStatusSent, models.ProposalStatusViewed},
	"pay":    {models.ProposalStatusAccepted},
	"expire": {models.ProposalStatusSent, models.ProposalStatusViewed},
}

func allowed(op string, from models.ProposalStatus) bool {
	for _, s := range transitions[op] {
		if s == from {
			return true
		}
	}
	return false
}

// ProposalService owns the proposal lifecycle. Every mutating transition
// is a single read-validate-write unit guarded by the version it read;
// losing that race surfaces as a conflict, never a silent overwrite.
type ProposalService struct {
	DB       *gorm.DB
	Gateway  payment.Gateway
	Timeline *TimelineService
	// TTL applied to ExpiresAt when a proposal is sent.
	TTL time.Duration
}

func NewProposalService(db *gorm.DB, gw payment.Gateway, tl *TimelineService, ttl time.Duration) *ProposalService {
	return &ProposalService{DB: db, Gateway: gw, Timeline: tl, TTL: ttl}
}

// Create persists a DRAFT proposal on behalf of the content generator.
func (s *ProposalService) Create(dealID string, content models.ProposalContent, items []models.ProposalItem) (*models.Proposal, error) {
	v := validation.Violations{}
	validation.Required("deal_id", dealID, v)
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		validation.Required("items.name", it.Name, v)
		validation.NonNegativeFloat("items.price", it.Price, v)
		validation.PositiveInt("items.quantity", it.Quantity, v)
		if it.ID != "" {
			if seen[it.ID] {
				v["items.id"] = "duplicate_item_id"
			}
			seen[it.ID] = true
		}
	}
	if !v.Empty() {
		return nil, validationErr(v)
	}
	var deal models.Deal
	if err := s.DB.Select("deal_id").First(&deal, "deal_id = ?", dealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationErr(validation.Violations{"deal_id": "unknown_deal"})
		}
		return nil, err
	}

	p := &models.Proposal{
		ProposalID:    models.NewID("prop"),
		DealID:        dealID,
		Version:       1,
		Status:        models.ProposalStatusDraft,
		Content:       content,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(p).Error; err != nil {
			return err
		}
		for i := range items {
			if items[i].ID == "" {
				items[i].ID = models.NewID("item")
			}
			items[i].ProposalID = p.ProposalID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.Items = items
	return p, nil
}

// Get loads a proposal with its items.
func (s *ProposalService) Get(id string) (*models.Proposal, error) {
	var p models.Proposal
	if err := s.DB.Preload("Items").First(&p, "proposal_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Send moves a draft to SENT, stamping SentAt and the expiry deadline.
func (s *ProposalService) Send(id string) (*models.Proposal, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !allowed("send", p.Status) {
		return nil, &InvalidStateTransitionError{Op: "send", From: string(p.Status)}
	}
	now := time.Now().UTC()
	expires := now.Add(s.TTL)
	updates := map[string]any{
		"status":     models.ProposalStatusSent,
		"sent_at":    now,
		"expires_at": expires,
		"version":    gorm.Expr("version + 1"),
	}
	res := s.DB.Model(&models.Proposal{}).
		Where("proposal_id = ? AND version = ? AND status = ?", p.ProposalID, p.Version, models.ProposalStatusDraft).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.conflict("send", p.ProposalID)
	}
	return s.Get(id)
}

// View marks a proposal opened by its recipient. Idempotent: a proposal
// already VIEWED or further along keeps its state, never regresses. Every
// call appends a VIEW tracking event and a PROPOSAL_VIEW interaction on
// the deal's timeline.
func (s *ProposalService) View(id, viewerMeta string) (*models.Proposal, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.track(p.ProposalID, models.TrackingView, viewerMeta)
	s.recordViewInteraction(p, viewerMeta)
	if !allowed("view", p.Status) {
		return p, nil
	}
	res := s.DB.Model(&models.Proposal{}).
		Where("proposal_id = ? AND version = ? AND status IN ?", p.ProposalID, p.Version,
			[]models.ProposalStatus{models.ProposalStatusDraft, models.ProposalStatusSent}).
		Updates(map[string]any{
			"status":  models.ProposalStatusViewed,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	// Zero rows means a concurrent transition won; View never errors on
	// state, so return whatever is current.
	return s.Get(id)
}

// Accept captures the signature and the recipient's final item selection,
// freezes the agreed value, and locks the proposal. The caller's selection
// is authoritative: an empty set is a valid zero-value agreement, never
// silently widened back to all items.
func (s *ProposalService) Accept(id, signature string, selectedItemIDs []string) (*models.Proposal, error) {
	v := validation.Violations{}
	validation.Required("signature", signature, v)
	if !v.Empty() {
		return nil, validationErr(v)
	}
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(p.Items))
	for _, it := range p.Items {
		known[it.ID] = true
	}
	for _, sid := range selectedItemIDs {
		if !known[sid] {
			return nil, validationErr(validation.Violations{"selected_item_ids": "unknown_item:" + sid})
		}
	}
	if !allowed("accept", p.Status) {
		s.track(p.ProposalID, models.TrackingSignatureAttempt, "rejected from "+string(p.Status))
		return nil, &InvalidStateTransitionError{Op: "accept", From: string(p.Status)}
	}

	finalValue := ComputeTotal(p.Items, SelectedSet(selectedItemIDs))
	now := time.Now().UTC()
	if selectedItemIDs == nil {
		selectedItemIDs = []string{}
	}
	// Pre-marshal: the serializer only runs on struct assignments, and this
	// update goes through a column map.
	selJSON, err := json.Marshal(selectedItemIDs)
	if err != nil {
		return nil, err
	}
	res := s.DB.Model(&models.Proposal{}).
		Where("proposal_id = ? AND version = ? AND status IN ?", p.ProposalID, p.Version,
			transitions["accept"]).
		Updates(map[string]any{
			"status":               models.ProposalStatusAccepted,
			"signature":            signature,
			"signed_at":            now,
			"final_accepted_value": finalValue,
			"selected_item_ids":    string(selJSON),
			"version":              gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		s.track(p.ProposalID, models.TrackingSignatureAttempt, "lost version race")
		return nil, s.conflict("accept", p.ProposalID)
	}
	s.track(p.ProposalID, models.TrackingSignatureAttempt, "signed by "+signature)
	return s.Get(id)
}

// Pay settles the deposit on an accepted proposal. Paying an already-PAID
// proposal returns the existing transaction unchanged; it never mints a
// second id. A failed gateway call leaves the proposal ACCEPTED so the
// caller can safely retry.
func (s *ProposalService) Pay(ctx context.Context, id string) (*models.Proposal, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if p.Status == models.ProposalStatusPaid {
		return p, nil
	}
	if !allowed("pay", p.Status) {
		s.track(p.ProposalID, models.TrackingPaymentAttempt, "rejected from "+string(p.Status))
		return nil, &InvalidStateTransitionError{Op: "pay", From: string(p.Status)}
	}

	var final float64
	if p.FinalAcceptedValue != nil {
		final = *p.FinalAcceptedValue
	}
	deposit := final * DepositRate

	// The gateway call is at-most-once from our side: no automatic retry.
	txID, gwErr := s.Gateway.Charge(ctx, p.ProposalID, deposit)
	if gwErr != nil {
		s.track(p.ProposalID, models.TrackingPaymentAttempt, "gateway failure")
		return nil, &GatewayError{Err: gwErr}
	}

	res := s.DB.Model(&models.Proposal{}).
		Where("proposal_id = ? AND version = ? AND status = ?", p.ProposalID, p.Version, models.ProposalStatusAccepted).
		Updates(map[string]any{
			"status":                models.ProposalStatusPaid,
			"payment_status":        models.PaymentStatusPaid,
			"payment_gateway_tx_id": txID,
			"version":               gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race. If a concurrent Pay won, honor idempotence and
		// return the settled proposal; anything else is a conflict.
		cur, curErr := s.Get(id)
		if curErr == nil && cur.Status == models.ProposalStatusPaid {
			return cur, nil
		}
		return nil, s.conflict("pay", p.ProposalID)
	}
	s.track(p.ProposalID, models.TrackingPaymentAttempt, "charged "+txID)
	return s.Get(id)
}

// Expire is the administrative transition to EXPIRED. Once expired, Accept
// and Pay both fail.
func (s *ProposalService) Expire(id string) (*models.Proposal, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !allowed("expire", p.Status) {
		return nil, &InvalidStateTransitionError{Op: "expire", From: string(p.Status)}
	}
	res := s.DB.Model(&models.Proposal{}).
		Where("proposal_id = ? AND version = ? AND status IN ?", p.ProposalID, p.Version, transitions["expire"]).
		Updates(map[string]any{
			"status":  models.ProposalStatusExpired,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.conflict("expire", p.ProposalID)
	}
	return s.Get(id)
}

// ExpireStale flips every SENT/VIEWED proposal whose deadline has passed.
// Run from the background sweeper.
func (s *ProposalService) ExpireStale(now time.Time) (int64, error) {
	res := s.DB.Model(&models.Proposal{}).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at <= ?", transitions["expire"], now).
		Updates(map[string]any{
			"status":  models.ProposalStatusExpired,
			"version": gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

// DepositAmount is the 50% deposit presented to the payer. Zero until the
// proposal is accepted.
func DepositAmount(p *models.Proposal) float64 {
	if p.FinalAcceptedValue == nil {
		return 0
	}
	return *p.FinalAcceptedValue * DepositRate
}

// conflict re-reads current status so the error names the state that won.
func (s *ProposalService) conflict(op, id string) error {
	from := "unknown"
	var cur models.Proposal
	if err := s.DB.Select("status").First(&cur, "proposal_id = ?", id).Error; err == nil {
		from = string(cur.Status)
	}
	return &InvalidStateTransitionError{Op: op, From: from}
}

// track appends an audit event. Best-effort: tracking is write-only and
// never feeds back into lifecycle decisions, so failures don't abort the
// transition.
func (s *ProposalService) track(proposalID string, event models.TrackingEvent, meta string) {
	_ = s.DB.Create(&models.ProposalTracking{
		ProposalID: proposalID,
		Event:      event,
		ViewerMeta: meta,
	}).Error
}

// recordViewInteraction logs the open on the deal's company timeline so
// "proposal viewed" shows up alongside emails and calls.
func (s *ProposalService) recordViewInteraction(p *models.Proposal, viewerMeta string) {
	if s.Timeline == nil {
		return
	}
	var deal models.Deal
	if err := s.DB.Select("deal_id", "company_id", "deal_name").First(&deal, "deal_id = ?", p.DealID).Error; err != nil {
		return
	}
	it := models.Interaction{
		InteractionID:    models.NewID("int"),
		Type:             models.InteractionProposalView,
		SourceIdentifier: p.ProposalID,
		Timestamp:        time.Now().UTC(),
		ContentRaw:       "Proposal for " + deal.DealName + " viewed. " + viewerMeta,
	}
	_ = s.Timeline.LinkInteraction(&it, deal.CompanyID, deal.DealID, "")
}
