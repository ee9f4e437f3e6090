package models

import "time"

// DealStage is the pipeline stage of a deal.
type DealStage string

const (
	DealStageLead        DealStage = "LEAD"
	DealStageQualified   DealStage = "QUALIFIED"
	DealStageProposal    DealStage = "PROPOSAL"
	DealStageNegotiation DealStage = "NEGOTIATION"
	DealStageClosedWon   DealStage = "CLOSED_WON"
	DealStageClosedLost  DealStage = "CLOSED_LOST"
)

// Deal belongs to exactly one company. Value is a positive amount in a
// currency-agnostic unit.
type Deal struct {
	DealID            string    `gorm:"primaryKey;size:64" json:"deal_id"`
	CompanyID         string    `gorm:"size:64;not null;index" json:"company_id"`
	DealName          string    `gorm:"size:255;not null" json:"deal_name"`
	Value             float64   `gorm:"not null" json:"value"`
	Stage             DealStage `gorm:"size:32;not null" json:"stage"`
	AIHealthScore     int       `gorm:"not null;default:50" json:"ai_health_score"` // 0..100
	AINextBestAction  string    `json:"ai_next_best_action"`
	CloseDateExpected string    `gorm:"size:10" json:"close_date_expected"` // YYYY-MM-DD
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// LastInteractionAt is a read-model field: the max timestamp among the
	// deal's linked interactions. Computed on every read, never stored.
	LastInteractionAt *time.Time `gorm:"-" json:"last_interaction_at,omitempty"`
}
