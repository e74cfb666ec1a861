package models

import "time"

// Filing is a regulatory filing belonging to one SPAC.
type Filing struct {
	Base
	OrganizationID  string       `gorm:"type:uuid;not null;index" json:"organization_id"`
	SPACID          string       `gorm:"column:spac_id;type:uuid;not null;uniqueIndex:idx_filing_spac_accession" json:"spac_id"`
	FormType        string       `gorm:"not null" json:"form_type"`
	FiledDate       *time.Time   `json:"filed_date,omitempty"`
	DueDate         *time.Time   `json:"due_date,omitempty"`
	Status          FilingStatus `gorm:"not null;default:DRAFT" json:"status"`
	EdgarURL        string       `json:"edgar_url,omitempty"`
	AccessionNumber *string      `gorm:"uniqueIndex:idx_filing_spac_accession" json:"accession_number,omitempty"`
	Description     string       `json:"description,omitempty"`
}
