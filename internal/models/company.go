package models

import "time"

// Company is the root CRM entity. Contacts, deals, and every interaction
// link back to exactly one company.
type Company struct {
	CompanyID string `gorm:"primaryKey;size:64" json:"company_id"`
	Name      string `gorm:"size:255;not null;index" json:"name"`
	Domain    string `gorm:"size:255" json:"domain"`
	Industry  string `gorm:"size:255" json:"industry"`
	// AISummary is produced by the content-generation collaborator; stored
	// verbatim, never derived here.
	AISummary string    `json:"ai_summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contact belongs to exactly one company. There is no delete path for
// contacts; authorship of past interactions must stay resolvable.
type Contact struct {
	ContactID string    `gorm:"primaryKey;size:64" json:"contact_id"`
	CompanyID string    `gorm:"size:64;not null;index" json:"company_id"`
	FirstName string    `gorm:"size:120;not null" json:"first_name"`
	LastName  string    `gorm:"size:120" json:"last_name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Role      string    `gorm:"size:120" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name for display (author decoration).
func (c Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
