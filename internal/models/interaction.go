package models

import "time"

// InteractionType enumerates the kinds of activity the CRM records.
type InteractionType string

const (
	InteractionEmail        InteractionType = "EMAIL"
	InteractionMeeting      InteractionType = "MEETING"
	InteractionCallLog      InteractionType = "CALL_LOG"
	InteractionNote         InteractionType = "NOTE"
	InteractionProposalView InteractionType = "PROPOSAL_VIEW"
)

// Sentiment is the AI-derived tone annotation on an interaction.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

// Interaction is immutable once created, except for the AI annotation
// fields which are write-once: a summary, once set, is cached forever.
type Interaction struct {
	InteractionID    string          `gorm:"primaryKey;size:64" json:"interaction_id"`
	Type             InteractionType `gorm:"size:32;not null" json:"type"`
	SourceIdentifier string          `gorm:"size:255" json:"source_identifier"`
	Timestamp        time.Time       `gorm:"not null;index" json:"timestamp"`
	ContentRaw       string          `json:"content_raw"`
	AISummary        string          `json:"ai_summary,omitempty"`
	AISentiment      Sentiment       `gorm:"size:16" json:"ai_sentiment,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// InteractionLink is the polymorphic join record. Every interaction has
// exactly one link, and the link always carries a company; deal and
// contact are optional. The indirection makes one interaction discoverable
// from three independent indexes without denormalizing the record itself.
type InteractionLink struct {
	ID            uint   `gorm:"primaryKey" json:"-"`
	InteractionID string `gorm:"size:64;not null;uniqueIndex" json:"interaction_id"`
	CompanyID     string `gorm:"size:64;not null;index" json:"company_id"`
	DealID        string `gorm:"size:64;index" json:"deal_id,omitempty"`
	ContactID     string `gorm:"size:64;index" json:"contact_id,omitempty"`
}

// Author is the display information a timeline entry is decorated with.
type Author struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

// UnknownAuthor is the sentinel used when an interaction has no linked
// contact (system-generated events, untracked senders).
var UnknownAuthor = Author{Name: "System/Unknown", Role: "N/A"}

// TimelineEntry is the derived, per-request join of an interaction with
// its author. Never persisted.
type TimelineEntry struct {
	Interaction
	Author Author `json:"author"`
}
