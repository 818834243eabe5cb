// Package repomanager wires repositories to their backing store and owns
// store-access concerns: opening the connection, connect retry, and schema
// migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/clubops/pointsledger/internal/dbx"
	"github.com/clubops/pointsledger/internal/server/repositories/history"
	"github.com/clubops/pointsledger/internal/server/repositories/members"
)

// RepositoryManager builds repositories over a handle that may be the
// shared *sql.DB or an in-flight transaction, so services can run the same
// repository code inside dbx.WithTx.
type RepositoryManager interface {
	Members(db dbx.DBTX) members.Repository
	History(db dbx.DBTX) history.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
