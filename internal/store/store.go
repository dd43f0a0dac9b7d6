// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/wiralabs/chatlink/internal/domain"
)

// Repository persists captured leads from completed campaign conversations.
type Repository interface {
	// SaveLead appends a captured lead and fills in its ID.
	SaveLead(ctx context.Context, lead *domain.Lead) error

	// ListLeads returns the most recent leads, newest first.
	ListLeads(ctx context.Context, limit int) ([]*domain.Lead, error)

	// CountLeads returns the total number of captured leads.
	CountLeads(ctx context.Context) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
