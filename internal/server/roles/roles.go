// Package roles implements the self-service committee-role toggle. The
// actual role assignment lives on the chat platform; the platform glue
// implements RoleManager, and this package only decides add-vs-remove over
// the known committee set. No privilege is required: the toggle is the one
// deliberately open mutating surface.
package roles

import (
	"context"
	"fmt"
	"sync"

	"github.com/clubops/pointsledger/internal/common"
)

// Committees maps each self-assignable role name to its display emoji.
var Committees = map[string]string{
	"Campus and Community Connections Committee": "🌐",
	"Technological Advancements Committee":       "💻",
	"Graduate Affairs Committee":                 "🎓",
	"Academics and Research Committee":           "📚",
}

// RoleManager is the port to the platform's role store.
type RoleManager interface {
	HasRole(ctx context.Context, member, role string) (bool, error)
	AddRole(ctx context.Context, member, role string) error
	RemoveRole(ctx context.Context, member, role string) error
}

type Toggler struct {
	manager RoleManager
}

func NewToggler(manager RoleManager) *Toggler {
	return &Toggler{manager: manager}
}

// Toggle adds the role to the member when absent and removes it when
// present. Returns true when the role ended up added. Unknown roles fail
// with common.ErrInvalidInput before touching the manager.
func (t *Toggler) Toggle(ctx context.Context, member, role string) (added bool, err error) {
	if _, ok := Committees[role]; !ok {
		return false, fmt.Errorf("%w: unknown role %q", common.ErrInvalidInput, role)
	}

	has, err := t.manager.HasRole(ctx, member, role)
	if err != nil {
		return false, err
	}

	if has {
		return false, t.manager.RemoveRole(ctx, member, role)
	}
	return true, t.manager.AddRole(ctx, member, role)
}

// InMemoryManager is a RoleManager for local runs and tests; production
// deployments inject the platform-backed implementation.
type InMemoryManager struct {
	mu    sync.Mutex
	roles map[string]map[string]struct{}
}

func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{roles: make(map[string]map[string]struct{})}
}

func (m *InMemoryManager) HasRole(ctx context.Context, member, role string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.roles[member][role]
	return ok, nil
}

func (m *InMemoryManager) AddRole(ctx context.Context, member, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roles[member] == nil {
		m.roles[member] = make(map[string]struct{})
	}
	m.roles[member][role] = struct{}{}
	return nil
}

func (m *InMemoryManager) RemoveRole(ctx context.Context, member, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roles[member], role)
	return nil
}
