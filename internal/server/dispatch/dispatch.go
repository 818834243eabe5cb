// Package dispatch is the command surface the chat-platform glue calls:
// one method per slash command. Each method resolves nothing on its own —
// the caller arrives already parsed from their token — but every mutating
// entry point checks the guard before touching the ledger, and failures
// come back as the shared sentinel errors, never as driver internals.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/clubops/pointsledger/internal/common"
	"github.com/clubops/pointsledger/internal/logging"
	"github.com/clubops/pointsledger/internal/server/authz"
	"github.com/clubops/pointsledger/internal/server/confirm"
	"github.com/clubops/pointsledger/internal/server/models"
	"github.com/clubops/pointsledger/internal/server/roles"
	"github.com/clubops/pointsledger/internal/server/services"
)

// ImportStager lets the glue stage an upload before asking for an import.
// The object store implements it.
type ImportStager interface {
	PresignedPutURL(ctx context.Context, filename string) (key string, url string, err error)
}

type Dispatcher struct {
	ledger       *services.LedgerService
	importer     *services.ImportService
	gate         *confirm.Gate
	guard        *authz.Guard
	toggler      *roles.Toggler
	stager       ImportStager
	tokenSecret  []byte
	suggestLimit int
	purgeEnabled bool
	logger       logging.Logger
}

type Options struct {
	Ledger       *services.LedgerService
	Importer     *services.ImportService
	Gate         *confirm.Gate
	Guard        *authz.Guard
	Toggler      *roles.Toggler
	Stager       ImportStager
	TokenSecret  []byte
	SuggestLimit int
	PurgeEnabled bool
	Logger       logging.Logger
}

func NewDispatcher(opts Options) *Dispatcher {
	return &Dispatcher{
		ledger:       opts.Ledger,
		importer:     opts.Importer,
		gate:         opts.Gate,
		guard:        opts.Guard,
		toggler:      opts.Toggler,
		stager:       opts.Stager,
		tokenSecret:  opts.TokenSecret,
		suggestLimit: opts.SuggestLimit,
		purgeEnabled: opts.PurgeEnabled,
		logger:       opts.Logger.With("module", "dispatch"),
	}
}

// ResolveCaller verifies a caller token from the platform glue. Any parse
// or expiry failure maps to common.ErrUnauthorized; the reason is logged,
// not returned, so nothing about the token leaks to the user.
func (d *Dispatcher) ResolveCaller(ctx context.Context, token string) (*authz.Caller, error) {
	caller, err := authz.ParseCallerToken(token, d.tokenSecret)
	if err != nil {
		d.logger.Warn(ctx, "caller token rejected", "reason", err.Error())
		return nil, common.ErrUnauthorized
	}
	return caller, nil
}

func (d *Dispatcher) requirePrivilege(caller *authz.Caller) error {
	if !d.guard.IsPrivileged(caller) {
		return common.ErrUnauthorized
	}
	return nil
}

func validAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be a finite number", common.ErrInvalidInput)
	}
	return nil
}

// AddMember creates a member with 0 starting points.
func (d *Dispatcher) AddMember(ctx context.Context, caller *authz.Caller, name string) (*models.Member, error) {
	if err := d.requirePrivilege(caller); err != nil {
		return nil, err
	}
	return d.ledger.AddMember(ctx, name)
}

// RemoveMember deletes a member and their entire history.
func (d *Dispatcher) RemoveMember(ctx context.Context, caller *authz.Caller, name string) error {
	if err := d.requirePrivilege(caller); err != nil {
		return err
	}
	return d.ledger.RemoveMember(ctx, name)
}

// AddPoints awards points with a reason and returns the new total.
func (d *Dispatcher) AddPoints(ctx context.Context, caller *authz.Caller, member string, amount float64, reason string) (float64, error) {
	if err := d.requirePrivilege(caller); err != nil {
		return 0, err
	}
	if err := validAmount(amount); err != nil {
		return 0, err
	}
	return d.ledger.ApplyDelta(ctx, member, amount, reason)
}

// RemovePoints is AddPoints with the amount negated; the audit trail keeps
// one uniform sign convention.
func (d *Dispatcher) RemovePoints(ctx context.Context, caller *authz.Caller, member string, amount float64, reason string) (float64, error) {
	if err := d.requirePrivilege(caller); err != nil {
		return 0, err
	}
	if err := validAmount(amount); err != nil {
		return 0, err
	}
	return d.ledger.ApplyDelta(ctx, member, -amount, reason)
}

// ShowPoints returns one member's row, or every row ascending by name when
// member is empty. Read-only, open to any caller.
func (d *Dispatcher) ShowPoints(ctx context.Context, member string) ([]*models.Member, error) {
	if member == "" {
		return d.ledger.GetAll(ctx)
	}

	total, err := d.ledger.GetTotal(ctx, member)
	if err != nil {
		return nil, err
	}
	return []*models.Member{{Name: member, Points: total}}, nil
}

// ShowHistory returns the member's audit trail ascending by creation time.
func (d *Dispatcher) ShowHistory(ctx context.Context, member string) ([]*models.HistoryEntry, error) {
	return d.ledger.GetHistory(ctx, member)
}

// ShowMembers returns every member ascending by name.
func (d *Dispatcher) ShowMembers(ctx context.Context) ([]*models.Member, error) {
	return d.ledger.GetAll(ctx)
}

// MemberCount returns the number of members.
func (d *Dispatcher) MemberCount(ctx context.Context) (int64, error) {
	return d.ledger.Count(ctx)
}

// Suggest backs name autocompletion. Non-privileged callers get an empty
// set rather than an error: suggestions must not leak the member list.
func (d *Dispatcher) Suggest(ctx context.Context, caller *authz.Caller, partial string) ([]string, error) {
	if !d.guard.IsPrivileged(caller) {
		return []string{}, nil
	}
	return d.ledger.Suggest(ctx, partial, d.suggestLimit)
}

// RenameMember relabels a member across the ledger and their history.
func (d *Dispatcher) RenameMember(ctx context.Context, caller *authz.Caller, oldName, newName string) error {
	if err := d.requirePrivilege(caller); err != nil {
		return err
	}
	return d.ledger.Rename(ctx, oldName, newName)
}

// ImportFromFile runs the bulk import over an uploaded spreadsheet.
func (d *Dispatcher) ImportFromFile(ctx context.Context, caller *authz.Caller, r io.Reader, filename string) (*services.ImportResult, error) {
	if err := d.requirePrivilege(caller); err != nil {
		return nil, err
	}
	return d.importer.ImportFile(ctx, r, filename)
}

// ImportFromObjectStore imports a spreadsheet previously staged via
// StageImport.
func (d *Dispatcher) ImportFromObjectStore(ctx context.Context, caller *authz.Caller, key string) (*services.ImportResult, error) {
	if err := d.requirePrivilege(caller); err != nil {
		return nil, err
	}
	return d.importer.ImportFromObjectStore(ctx, key)
}

// StageImport returns a storage key and a presigned URL the glue can PUT
// the upload to.
func (d *Dispatcher) StageImport(ctx context.Context, caller *authz.Caller, filename string) (key string, url string, err error) {
	if err := d.requirePrivilege(caller); err != nil {
		return "", "", err
	}
	return d.stager.PresignedPutURL(ctx, filename)
}

// PurgeInitiate opens a confirmation window for removing every member and
// all history. The purge itself only ever runs from PurgeConfirm.
func (d *Dispatcher) PurgeInitiate(ctx context.Context, caller *authz.Caller) (*confirm.Instance, error) {
	if err := d.requirePrivilege(caller); err != nil {
		return nil, err
	}
	if !d.purgeEnabled {
		return nil, fmt.Errorf("%w: purge commands are disabled", common.ErrInvalidInput)
	}
	return d.gate.Initiate(ctx, caller.Name), nil
}

// PurgeConfirm confirms a pending purge. The gate enforces that only the
// initiator may confirm and that the window has not lapsed.
func (d *Dispatcher) PurgeConfirm(ctx context.Context, caller *authz.Caller, id string) error {
	if err := d.requirePrivilege(caller); err != nil {
		return err
	}
	return d.gate.Confirm(ctx, id, caller.Name)
}

// PurgeCancel cancels a pending purge.
func (d *Dispatcher) PurgeCancel(ctx context.Context, caller *authz.Caller, id string) error {
	if err := d.requirePrivilege(caller); err != nil {
		return err
	}
	return d.gate.Cancel(ctx, id, caller.Name)
}

// ToggleRole flips a committee role on the caller. Deliberately open to
// everyone; reports whether the role ended up added.
func (d *Dispatcher) ToggleRole(ctx context.Context, caller *authz.Caller, role string) (added bool, err error) {
	return d.toggler.Toggle(ctx, caller.Name, role)
}
