package models

import "time"

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "DRAFT"
	ProposalStatusSent     ProposalStatus = "SENT"
	ProposalStatusViewed   ProposalStatus = "VIEWED"
	ProposalStatusAccepted ProposalStatus = "ACCEPTED"
	ProposalStatusPaid     ProposalStatus = "PAID"
	ProposalStatusExpired  ProposalStatus = "EXPIRED"
)

// Terminal reports whether no further lifecycle transition is possible.
func (s ProposalStatus) Terminal() bool {
	return s == ProposalStatusPaid || s == ProposalStatusExpired
}

// Locked reports whether item selection may still change. Once a proposal
// is accepted the agreed scope must not drift.
func (s ProposalStatus) Locked() bool {
	switch s {
	case ProposalStatusDraft, ProposalStatusSent, ProposalStatusViewed:
		return false
	}
	return true
}

// PaymentStatus tracks the deposit payment on an accepted proposal.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// ProposalContent is the structured narrative produced by the content
// generator. Stored as a JSON column; the engine never edits it.
type ProposalContent struct {
	Introduction     string `json:"introduction"`
	ClientNeeds      string `json:"client_needs"`
	ProposedSolution string `json:"proposed_solution"`
	Pricing          string `json:"pricing"`
}

// Proposal is a versioned, priced document offered against a deal.
// Version doubles as the optimistic-concurrency token: every mutating
// transition is committed with a guard on the version it read.
type Proposal struct {
	ProposalID string          `gorm:"primaryKey;size:64" json:"proposal_id"`
	DealID     string          `gorm:"size:64;not null;index" json:"deal_id"`
	Version    int             `gorm:"not null;default:1" json:"version"`
	Status     ProposalStatus  `gorm:"size:16;not null" json:"status"`
	Content    ProposalContent `gorm:"serializer:json" json:"content"`
	Items      []ProposalItem  `gorm:"foreignKey:ProposalID" json:"items"`

	SentAt    *time.Time `json:"sent_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Populated only by Accept, immutable afterwards.
	SignedAt           *time.Time `json:"signed_at,omitempty"`
	Signature          string     `gorm:"size:255" json:"signature,omitempty"`
	FinalAcceptedValue *float64   `json:"final_accepted_value,omitempty"`
	SelectedItemIDs    []string   `gorm:"serializer:json" json:"selected_item_ids,omitempty"`

	PaymentStatus      PaymentStatus `gorm:"size:16;not null;default:'UNPAID'" json:"payment_status"`
	PaymentGatewayTxID string        `gorm:"size:128" json:"payment_gateway_tx_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProposalItemType distinguishes one-time from recurring charges.
type ProposalItemType string

const (
	ItemTypeOneTime   ProposalItemType = "one_time"
	ItemTypeRecurring ProposalItemType = "recurring"
)

// ProposalItem is one selectable, priced line within a proposal. Item ids
// are scoped to their proposal: two proposals may both carry an item "a".
type ProposalItem struct {
	ProposalID  string           `gorm:"primaryKey;size:64" json:"-"`
	ID          string           `gorm:"primaryKey;size:64" json:"id"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Description string           `json:"description"`
	Features    []string         `gorm:"serializer:json" json:"features"`
	Price       float64          `gorm:"not null" json:"price"` // per unit, >= 0
	Quantity    int              `gorm:"not null" json:"quantity"`
	Type        ProposalItemType `gorm:"size:16;not null;default:'one_time'" json:"type"`
}

// TrackingEvent enumerates recipient-side audit events.
type TrackingEvent string

const (
	TrackingView             TrackingEvent = "VIEW"
	TrackingComment          TrackingEvent = "COMMENT"
	TrackingForward          TrackingEvent = "FORWARD"
	TrackingSignatureAttempt TrackingEvent = "SIGNATURE_ATTEMPT"
	TrackingPaymentAttempt   TrackingEvent = "PAYMENT_ATTEMPT"
)

// ProposalTracking is an append-only audit trail. The engine writes it and
// never reads it back into lifecycle decisions.
type ProposalTracking struct {
	ID         uint          `gorm:"primaryKey" json:"-"`
	ProposalID string        `gorm:"size:64;not null;index" json:"proposal_id"`
	Event      TrackingEvent `gorm:"size:32;not null" json:"event"`
	ViewerMeta string        `gorm:"size:512" json:"viewer_meta"`
	CreatedAt  time.Time     `json:"created_at"`
}
