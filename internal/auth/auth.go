// Package auth carries the caller identity that every service call receives
// explicitly instead of reading it from request-scoped globals.
package auth

import (
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
)

// Context identifies who is acting and on behalf of which organization.
type Context struct {
	UserID string
	OrgID  string
	Roles  []models.Role
}

// New builds a Context.
func New(userID, orgID string, roles ...models.Role) Context {
	return Context{UserID: userID, OrgID: orgID, Roles: roles}
}

// HasRole reports whether any of the caller's roles grants at least min.
func (c Context) HasRole(min models.Role) bool {
	for _, r := range c.Roles {
		if r.AtLeast(min) {
			return true
		}
	}
	return false
}

// Require returns ErrForbidden unless the caller holds at least min, and
// ErrUnauthorized if the context carries no identity at all.
func (c Context) Require(min models.Role) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.HasRole(min) {
		return apperrors.ErrForbidden
	}
	return nil
}

// Validate checks that the context names both a user and an organization.
func (c Context) Validate() error {
	if c.UserID == "" || c.OrgID == "" {
		return apperrors.ErrUnauthorized
	}
	return nil
}

// CanWrite reports whether the caller may create or modify business records.
func (c Context) CanWrite() bool { return c.HasRole(models.RoleAnalyst) }

// CanAdminister reports whether the caller may manage team, billing,
// integrations and API keys.
func (c Context) CanAdminister() bool { return c.HasRole(models.RoleAdmin) }
