// Package repository holds the gorm-backed stores that services reach
// through interfaces: team membership, billing, integrations, API keys,
// EDGAR filing sync and the read-side dashboard queries.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
