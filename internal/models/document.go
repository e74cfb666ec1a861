package models

// Document is a folder or one version of a file in a SPAC's data room.
// Each file version is its own row; versions of one file share RootID and
// exactly one of them has IsLatest set.
type Document struct {
	Base
	OrganizationID string         `gorm:"type:uuid;not null;index" json:"organization_id"`
	SPACID         *string        `gorm:"column:spac_id;type:uuid;index" json:"spac_id,omitempty"`
	ParentID       *string        `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	RootID         string         `gorm:"type:uuid;not null;index" json:"root_id"`
	Name           string         `gorm:"not null" json:"name"`
	Type           DocumentType   `gorm:"not null" json:"type"`
	Status         DocumentStatus `gorm:"not null;default:DRAFT" json:"status"`
	MimeType       string         `json:"mime_type,omitempty"`
	FileSize       int64          `gorm:"default:0" json:"file_size"`
	Version        int            `gorm:"not null;default:1" json:"version"`
	IsLatest       bool           `gorm:"not null;default:true" json:"is_latest"`
	UploadedBy     string         `gorm:"type:uuid" json:"uploaded_by,omitempty"`
}
