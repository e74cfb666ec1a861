package models

import "gorm.io/datatypes"

// AuditLog records sensitive user operations for security and compliance.
type AuditLog struct {
	Base
	OrganizationID string         `gorm:"type:uuid;index" json:"organization_id"`
	UserID         string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Action         string         `gorm:"not null" json:"action"`
	ResourceType   string         `gorm:"not null" json:"resource_type"`
	ResourceID     string         `json:"resource_id"`
	IPAddress      string         `json:"ip_address"`
	Changes        datatypes.JSON `json:"changes,omitempty" swaggertype:"object"`
}
