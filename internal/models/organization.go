package models

import "time"

// Organization is the tenant boundary. Every business row carries its ID.
type Organization struct {
	Base
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`
}

// TeamMember links a user to an organization with a role.
type TeamMember struct {
	Base
	OrganizationID string     `gorm:"type:uuid;not null;uniqueIndex:idx_team_member_org_user" json:"organization_id"`
	UserID         string     `gorm:"type:uuid;not null;uniqueIndex:idx_team_member_org_user" json:"user_id"`
	Role           Role       `gorm:"not null" json:"role"`
	Title          string     `json:"title,omitempty"`
	InvitedBy      *string    `gorm:"type:uuid" json:"invited_by,omitempty"`
	JoinedAt       *time.Time `json:"joined_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
