// Package repository defines repository interfaces for data access
package repository

import (
	"context"
	"errors"
	"time"

	"attendance-reporter/internal/models"
)

// ErrNotConfigured is returned by repositories whose backend is not set up
var ErrNotConfigured = errors.New("repository not configured")

// EventSource defines the interface for reading pass events
type EventSource interface {
	// FetchEvents returns the pass events of one department for the inclusive
	// date range [start, end], ordered by timestamp
	FetchEvents(ctx context.Context, department string, start, end time.Time) ([]models.RawEvent, error)
}

// RecipientRepository defines the interface for the report recipient directory
type RecipientRepository interface {
	// ListRecipients returns the active department recipients
	ListRecipients(ctx context.Context) ([]models.Recipient, error)
}
