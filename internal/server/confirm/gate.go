// Package confirm implements the two-step confirmation gate protecting the
// irreversible ledger purge. Initiation registers a pending instance with a
// deadline; only the original initiator can confirm or cancel it, and the
// purge runs exclusively from the confirm transition.
package confirm

import (
	"context"
	"sync"
	"time"

	"github.com/clubops/pointsledger/internal/common"
	"github.com/clubops/pointsledger/internal/logging"
	"github.com/google/uuid"
)

// State of one confirmation instance. Pending is the only non-terminal
// state.
type State int

const (
	StatePending State = iota
	StateConfirmed
	StateCancelled
	StateExpired
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateCancelled:
		return "cancelled"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Purger is the destructive operation the gate protects.
type Purger interface {
	PurgeAll(ctx context.Context) error
}

// Instance is one initiated confirmation: who started it, when it lapses,
// and where it stands. Concurrent initiations by different callers are
// independent instances.
type Instance struct {
	ID        string
	Initiator string
	Deadline  time.Time
	State     State
}

type Gate struct {
	mu        sync.Mutex
	instances map[string]*Instance
	ttl       time.Duration
	purger    Purger
	logger    logging.Logger

	// now is a test seam for deadline checks.
	now func() time.Time
}

func NewGate(purger Purger, ttl time.Duration, logger logging.Logger) *Gate {
	return &Gate{
		instances: make(map[string]*Instance),
		ttl:       ttl,
		purger:    purger,
		logger:    logger.With("module", "confirm"),
		now:       time.Now,
	}
}

// Initiate registers a new pending instance for the given initiator and
// returns it. The call returns immediately; expiry is enforced lazily on
// the next transition attempt and by the background sweep.
func (g *Gate) Initiate(ctx context.Context, initiator string) *Instance {
	g.mu.Lock()
	defer g.mu.Unlock()

	inst := &Instance{
		ID:        uuid.NewString(),
		Initiator: initiator,
		Deadline:  g.now().Add(g.ttl),
		State:     StatePending,
	}
	g.instances[inst.ID] = inst

	g.logger.Warn(ctx, "purge initiated", "id", inst.ID, "initiator", initiator)
	return &Instance{ID: inst.ID, Initiator: inst.Initiator, Deadline: inst.Deadline, State: inst.State}
}

// take fetches an instance, applying lazy expiry. The gate lock must be
// held.
func (g *Gate) take(id string) (*Instance, error) {
	inst, ok := g.instances[id]
	if !ok {
		return nil, common.ErrStaleConfirmation
	}
	if inst.State == StatePending && g.now().After(inst.Deadline) {
		inst.State = StateExpired
	}
	if inst.State != StatePending {
		return nil, common.ErrStaleConfirmation
	}
	return inst, nil
}

// Confirm transitions the pending instance to Confirmed and runs the
// purge. Only the initiator may confirm; anyone else gets
// common.ErrUnauthorized and the instance stays pending. A terminal or
// expired instance fails with common.ErrStaleConfirmation.
func (g *Gate) Confirm(ctx context.Context, id, actor string) error {
	g.mu.Lock()

	inst, err := g.take(id)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	if inst.Initiator != actor {
		g.mu.Unlock()
		return common.ErrUnauthorized
	}

	inst.State = StateConfirmed
	g.mu.Unlock()

	// The purge runs outside the gate lock; the instance is already
	// terminal, so a concurrent transition attempt is stale either way.
	if err := g.purger.PurgeAll(ctx); err != nil {
		return err
	}

	g.logger.Warn(ctx, "purge confirmed", "id", id, "initiator", actor)
	return nil
}

// Cancel transitions the pending instance to Cancelled. Initiator-only,
// same rules as Confirm; no side effect on the ledger.
func (g *Gate) Cancel(ctx context.Context, id, actor string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	inst, err := g.take(id)
	if err != nil {
		return err
	}
	if inst.Initiator != actor {
		return common.ErrUnauthorized
	}

	inst.State = StateCancelled
	g.logger.Info(ctx, "purge cancelled", "id", id, "initiator", actor)
	return nil
}

// Lookup returns a snapshot of the instance, applying lazy expiry first.
// Unknown IDs fail with common.ErrStaleConfirmation.
func (g *Gate) Lookup(id string) (*Instance, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	inst, ok := g.instances[id]
	if !ok {
		return nil, common.ErrStaleConfirmation
	}
	if inst.State == StatePending && g.now().After(inst.Deadline) {
		inst.State = StateExpired
	}
	return &Instance{ID: inst.ID, Initiator: inst.Initiator, Deadline: inst.Deadline, State: inst.State}, nil
}

// sweep expires overdue pending instances and drops terminal ones, keeping
// the map from growing with abandoned confirmations.
func (g *Gate) sweep(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for id, inst := range g.instances {
		if inst.State == StatePending && now.After(inst.Deadline) {
			inst.State = StateExpired
			g.logger.Info(ctx, "purge confirmation expired", "id", id, "initiator", inst.Initiator)
		}
		// Terminal instances stay queryable for one TTL past their
		// deadline so a late button press still gets a stale answer.
		if inst.State != StatePending && now.After(inst.Deadline.Add(g.ttl)) {
			delete(g.instances, id)
		}
	}
}

// RunSweeper expires abandoned instances once per second until ctx is
// cancelled. Intended to run as a goroutine owned by the app.
func (g *Gate) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep(ctx)
		}
	}
}
