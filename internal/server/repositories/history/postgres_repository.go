package history

import (
	"context"
	"fmt"

	"github.com/clubops/pointsledger/internal/dbx"
	"github.com/clubops/pointsledger/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, entry *models.HistoryEntry) error {

	query :=
		`INSERT INTO history (member_name, reason, points)
		 VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.MemberName, entry.Reason, entry.Delta).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListByMember(ctx context.Context, name string) ([]*models.HistoryEntry, error) {
	query :=
		`SELECT member_name, reason, points, created_at FROM history
		 WHERE member_name = $1
		 ORDER BY created_at ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.HistoryEntry
	for rows.Next() {
		e := &models.HistoryEntry{}
		if err := rows.Scan(&e.MemberName, &e.Reason, &e.Delta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) RenameMember(ctx context.Context, oldName, newName string) error {
	query :=
		`UPDATE history SET member_name = $2
		 WHERE member_name = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, oldName, newName); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteByMember(ctx context.Context, name string) error {
	query :=
		`DELETE FROM history
		 WHERE member_name = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) PurgeAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
