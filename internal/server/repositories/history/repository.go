// Package history persists the audit trail: one immutable row per applied
// delta. Rows reference members by denormalized name; renames cascade here
// in the same transaction that relabels the member row.
package history

import (
	"context"

	"github.com/clubops/pointsledger/internal/server/models"
)

type Repository interface {
	// Insert appends one audit row; created_at is assigned by the store.
	Insert(ctx context.Context, entry *models.HistoryEntry) error

	// ListByMember returns the member's rows ascending by created_at.
	ListByMember(ctx context.Context, name string) ([]*models.HistoryEntry, error)

	// RenameMember relabels every row carrying oldName. Zero rows is not
	// an error: a member may have an empty history.
	RenameMember(ctx context.Context, oldName, newName string) error

	// DeleteByMember removes the member's rows. Deleting an absent
	// member's history is a no-op, keeping removal retries idempotent.
	DeleteByMember(ctx context.Context, name string) error

	// PurgeAll deletes every audit row.
	PurgeAll(ctx context.Context) error
}
