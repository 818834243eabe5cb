package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubops/pointsledger/internal/common"
	"github.com/clubops/pointsledger/internal/dbx"
	"github.com/clubops/pointsledger/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresRepository) Create(ctx context.Context, name string) (*models.Member, error) {

	query :=
		`INSERT INTO members (member_name, points)
		 VALUES ($1, 0)
		 `

	_, err := r.db.ExecContext(ctx, query, name)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &models.Member{Name: name, Points: 0}, nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Member, error) {
	query :=
		`SELECT member_name, points FROM members
		 WHERE member_name = $1
		 `

	m := &models.Member{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&m.Name, &m.Points)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) AddPoints(ctx context.Context, name string, delta float64) (float64, error) {
	query :=
		`UPDATE members SET points = points + $2
		 WHERE member_name = $1
		 RETURNING points
		 `

	var newTotal float64
	err := r.db.QueryRowContext(ctx, query, name, delta).Scan(&newTotal)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return newTotal, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, oldName, newName string) error {
	query :=
		`UPDATE members SET member_name = $2
		 WHERE member_name = $1
		 `

	res, err := r.db.ExecContext(ctx, query, oldName, newName)

	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	query :=
		`DELETE FROM members
		 WHERE member_name = $1
		 `

	res, err := r.db.ExecContext(ctx, query, name)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Member, error) {
	query :=
		`SELECT member_name, points FROM members
		 ORDER BY member_name ASC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Member
	for rows.Next() {
		m := &models.Member{}
		if err := rows.Scan(&m.Name, &m.Points); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Search(ctx context.Context, partial string, limit int) ([]string, error) {
	query :=
		`SELECT member_name FROM members
		 WHERE member_name ILIKE '%' || $1 || '%'
		 ORDER BY member_name ASC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, partial, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return names, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM members`

	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

func (r *PostgresRepository) PurgeAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM members`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
