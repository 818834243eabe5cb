// Package members persists the member identity set: one row per distinct
// name, holding the current point total. The unique index on member_name is
// the uniqueness invariant; everything above this package relies on it.
package members

import (
	"context"

	"github.com/clubops/pointsledger/internal/server/models"
)

type Repository interface {
	// Create inserts a member with 0 points. Returns
	// common.ErrAlreadyExists when the name is taken.
	Create(ctx context.Context, name string) (*models.Member, error)

	// GetByName returns common.ErrNotFound when the member is absent.
	GetByName(ctx context.Context, name string) (*models.Member, error)

	// AddPoints applies a signed delta to the member's total and returns
	// the new total. common.ErrNotFound when the member is absent.
	AddPoints(ctx context.Context, name string, delta float64) (float64, error)

	// Rename relabels the member row. common.ErrNotFound when old is
	// absent, common.ErrAlreadyExists when new is taken.
	Rename(ctx context.Context, oldName, newName string) error

	// Delete removes the member row. common.ErrNotFound when absent.
	Delete(ctx context.Context, name string) error

	// List returns all members ascending by name.
	List(ctx context.Context) ([]*models.Member, error)

	// Search returns up to limit names containing the partial string,
	// case-insensitively, ascending.
	Search(ctx context.Context, partial string, limit int) ([]string, error)

	// Count returns the number of members.
	Count(ctx context.Context) (int64, error)

	// PurgeAll deletes every member row.
	PurgeAll(ctx context.Context) error
}
