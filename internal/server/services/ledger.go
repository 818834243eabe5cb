// Package services implements the ledger engine and the bulk-import
// pipeline over the repositories. Every mutation that touches more than one
// row runs inside dbx.WithTx, so a reader can never observe a total without
// its matching history entry or vice versa.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubops/pointsledger/internal/common"
	"github.com/clubops/pointsledger/internal/dbx"
	"github.com/clubops/pointsledger/internal/logging"
	"github.com/clubops/pointsledger/internal/server/models"
	"github.com/clubops/pointsledger/internal/server/repositories/repomanager"
)

type LedgerService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	logger logging.Logger
}

func NewLedgerService(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *LedgerService {
	return &LedgerService{
		db:     db,
		rm:     rm,
		logger: logger.With("module", "ledger"),
	}
}

// AddMember creates a member with 0 points. The name is normalized first;
// common.ErrAlreadyExists when taken.
func (s *LedgerService) AddMember(ctx context.Context, name string) (*models.Member, error) {
	name, err := common.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	m, err := s.rm.Members(s.db).Create(ctx, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "member created", "member", name)
	return m, nil
}

// RemoveMember deletes the member and all their history in one
// transaction, history rows first. A second call for the same name returns
// common.ErrNotFound; the history delete for an absent member is a no-op,
// so interrupted removals retry cleanly.
func (s *LedgerService) RemoveMember(ctx context.Context, name string) error {
	name, err := common.NormalizeName(name)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.History(tx).DeleteByMember(ctx, name); err != nil {
			return err
		}
		return s.rm.Members(tx).Delete(ctx, name)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "member removed", "member", name)
	return nil
}

// ApplyDelta adds the signed amount to the member's total and appends
// exactly one history entry carrying the same delta, atomically. Returns
// the new total. Point removal is a negative delta, not a separate
// operation.
func (s *LedgerService) ApplyDelta(ctx context.Context, name string, amount float64, reason string) (float64, error) {
	name, err := common.NormalizeName(name)
	if err != nil {
		return 0, err
	}

	var newTotal float64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		total, err := s.rm.Members(tx).AddPoints(ctx, name, amount)
		if err != nil {
			return err
		}
		newTotal = total

		entry := &models.HistoryEntry{MemberName: name, Reason: reason, Delta: amount}
		return s.rm.History(tx).Insert(ctx, entry)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "delta applied", "member", name, "delta", amount, "total", newTotal)
	return newTotal, nil
}

// GetTotal returns the member's current point total.
func (s *LedgerService) GetTotal(ctx context.Context, name string) (float64, error) {
	name, err := common.NormalizeName(name)
	if err != nil {
		return 0, err
	}

	m, err := s.rm.Members(s.db).GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return m.Points, nil
}

// GetAll returns every (name, total) pair ascending by name.
func (s *LedgerService) GetAll(ctx context.Context) ([]*models.Member, error) {
	return s.rm.Members(s.db).List(ctx)
}

// GetHistory returns the member's audit trail ascending by creation time.
// common.ErrNotFound when the member is absent, even if stale history rows
// were somehow left behind.
func (s *LedgerService) GetHistory(ctx context.Context, name string) ([]*models.HistoryEntry, error) {
	name, err := common.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	if _, err := s.rm.Members(s.db).GetByName(ctx, name); err != nil {
		return nil, err
	}

	return s.rm.History(s.db).ListByMember(ctx, name)
}

// Count returns the number of members.
func (s *LedgerService) Count(ctx context.Context) (int64, error) {
	return s.rm.Members(s.db).Count(ctx)
}

// Suggest returns up to limit member names containing partial,
// case-insensitively, ascending. The authorization policy around it lives
// in dispatch.
func (s *LedgerService) Suggest(ctx context.Context, partial string, limit int) ([]string, error) {
	return s.rm.Members(s.db).Search(ctx, partial, limit)
}

// Rename relabels a member and cascades the new name over their history
// rows in the same transaction. This is strictly a rename: when the target
// name belongs to a distinct member the call fails with common.ErrConflict
// and neither member changes. Merging totals silently would lose data.
func (s *LedgerService) Rename(ctx context.Context, oldName, newName string) error {
	oldName, err := common.NormalizeName(oldName)
	if err != nil {
		return err
	}
	newName, err = common.NormalizeName(newName)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Members(tx).Rename(ctx, oldName, newName); err != nil {
			if errors.Is(err, common.ErrAlreadyExists) {
				return fmt.Errorf("%w: %q", common.ErrConflict, newName)
			}
			return err
		}
		return s.rm.History(tx).RenameMember(ctx, oldName, newName)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "member renamed", "old", oldName, "new", newName)
	return nil
}

// PurgeAll deletes every history row and every member, atomically.
// Irreversible. Never call this directly from an entry point: the
// confirmation gate is the only caller.
func (s *LedgerService) PurgeAll(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.History(tx).PurgeAll(ctx); err != nil {
			return err
		}
		return s.rm.Members(tx).PurgeAll(ctx)
	})
	if err != nil {
		return err
	}

	s.logger.Warn(ctx, "ledger purged")
	return nil
}
