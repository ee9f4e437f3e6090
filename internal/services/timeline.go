package services

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/RedSkyFlow/Goose/internal/models"
	"github.com/RedSkyFlow/Goose/validation"
)

// EntityType selects which timeline index a query runs against.
type EntityType string

const (
	EntityCompany EntityType = "company"
	EntityDeal    EntityType = "deal"
	EntityContact EntityType = "contact"
)

// TimelineService maintains the interaction/link association and serves
// timeline queries. Links are the only way interactions become visible.
type TimelineService struct {
	DB *gorm.DB
}

func NewTimelineService(db *gorm.DB) *TimelineService { return &TimelineService{DB: db} }

// LinkInteraction persists an interaction together with its single link
// record in one transaction. The company reference is mandatory; dangling
// references are a data-integrity fault surfaced at write time, never
// silently dropped.
func (s *TimelineService) LinkInteraction(interaction *models.Interaction, companyID, dealID, contactID string) error {
	v := validation.Violations{}
	validation.Required("company_id", companyID, v)
	validation.Required("interaction_id", interaction.InteractionID, v)
	if interaction.Type == "" {
		v["type"] = "required"
	}
	if !v.Empty() {
		return validationErr(v)
	}
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now().UTC()
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var company models.Company
		if err := tx.Select("company_id").First(&company, "company_id = ?", companyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationErr(validation.Violations{"company_id": "unknown_company"})
			}
			return err
		}
		if dealID != "" {
			var deal models.Deal
			if err := tx.Select("deal_id", "company_id").First(&deal, "deal_id = ?", dealID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationErr(validation.Violations{"deal_id": "unknown_deal"})
				}
				return err
			}
			if deal.CompanyID != companyID {
				return validationErr(validation.Violations{"deal_id": "company_mismatch"})
			}
		}
		if contactID != "" {
			var contact models.Contact
			if err := tx.Select("contact_id", "company_id").First(&contact, "contact_id = ?", contactID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationErr(validation.Violations{"contact_id": "unknown_contact"})
				}
				return err
			}
			if contact.CompanyID != companyID {
				return validationErr(validation.Violations{"contact_id": "company_mismatch"})
			}
		}
		var existing int64
		if err := tx.Model(&models.InteractionLink{}).Where("interaction_id = ?", interaction.InteractionID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return validationErr(validation.Violations{"interaction_id": "already_linked"})
		}
		if err := tx.Create(interaction).Error; err != nil {
			return err
		}
		link := models.InteractionLink{
			InteractionID: interaction.InteractionID,
			CompanyID:     companyID,
			DealID:        dealID,
			ContactID:     contactID,
		}
		return tx.Create(&link).Error
	})
}

// Timeline returns the entity's interactions, newest first, each decorated
// with author information resolved from the linked contact. Recomputed
// fresh on every call; nothing is cached beyond the request.
func (s *TimelineService) Timeline(entityType EntityType, entityID string) ([]models.TimelineEntry, error) {
	var column string
	switch entityType {
	case EntityCompany:
		column = "company_id"
	case EntityDeal:
		column = "deal_id"
	case EntityContact:
		column = "contact_id"
	default:
		return nil, validationErr(validation.Violations{"entity_type": "unknown_entity_type"})
	}
	if err := s.entityExists(entityType, entityID); err != nil {
		return nil, err
	}

	// Links in insertion order so the later sort is stable on ties.
	var links []models.InteractionLink
	if err := s.DB.Where(column+" = ?", entityID).Order("id asc").Find(&links).Error; err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []models.TimelineEntry{}, nil
	}

	interactionIDs := make([]string, 0, len(links))
	contactIDs := make([]string, 0, len(links))
	contactByInteraction := make(map[string]string, len(links))
	for _, l := range links {
		interactionIDs = append(interactionIDs, l.InteractionID)
		if l.ContactID != "" {
			contactIDs = append(contactIDs, l.ContactID)
			contactByInteraction[l.InteractionID] = l.ContactID
		}
	}

	var interactions []models.Interaction
	if err := s.DB.Where("interaction_id IN ?", interactionIDs).Find(&interactions).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Interaction, len(interactions))
	for _, it := range interactions {
		byID[it.InteractionID] = it
	}

	authors := map[string]models.Author{}
	if len(contactIDs) > 0 {
		var contacts []models.Contact
		if err := s.DB.Where("contact_id IN ?", contactIDs).Find(&contacts).Error; err != nil {
			return nil, err
		}
		for _, c := range contacts {
			authors[c.ContactID] = models.Author{Name: c.FullName(), Role: c.Role, Email: c.Email}
		}
	}

	entries := make([]models.TimelineEntry, 0, len(links))
	for _, l := range links {
		it, ok := byID[l.InteractionID]
		if !ok {
			continue
		}
		author := models.UnknownAuthor
		if cid, ok := contactByInteraction[l.InteractionID]; ok {
			if a, ok := authors[cid]; ok {
				author = a
			}
		}
		entries = append(entries, models.TimelineEntry{Interaction: it, Author: author})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

// LastInteractionAt returns the timestamp of a deal's most recent linked
// interaction, or nil when it has none. Always recomputed.
func (s *TimelineService) LastInteractionAt(dealID string) (*time.Time, error) {
	var latest models.Interaction
	err := s.DB.Model(&models.Interaction{}).
		Select("interactions.*").
		Joins("JOIN interaction_links ON interaction_links.interaction_id = interactions.interaction_id").
		Where("interaction_links.deal_id = ?", dealID).
		Order("interactions.timestamp desc").
		Take(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ts := latest.Timestamp
	return &ts, nil
}

// Annotate sets the AI summary and sentiment on an interaction. Write-once:
// once a summary is cached it is never recomputed, so a second call leaves
// the stored values untouched and returns them.
func (s *TimelineService) Annotate(interactionID, summary string, sentiment models.Sentiment) (*models.Interaction, error) {
	var it models.Interaction
	if err := s.DB.First(&it, "interaction_id = ?", interactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if it.AISummary != "" {
		return &it, nil
	}
	updates := map[string]any{"ai_summary": summary, "ai_sentiment": sentiment}
	if err := s.DB.Model(&models.Interaction{}).Where("interaction_id = ? AND (ai_summary IS NULL OR ai_summary = '')", interactionID).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := s.DB.First(&it, "interaction_id = ?", interactionID).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *TimelineService) entityExists(entityType EntityType, entityID string) error {
	var err error
	switch entityType {
	case EntityCompany:
		err = s.DB.Select("company_id").First(&models.Company{}, "company_id = ?", entityID).Error
	case EntityDeal:
		err = s.DB.Select("deal_id").First(&models.Deal{}, "deal_id = ?", entityID).Error
	case EntityContact:
		err = s.DB.Select("contact_id").First(&models.Contact{}, "contact_id = ?", entityID).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
