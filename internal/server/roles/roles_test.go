package roles

import (
	"context"
	"testing"

	"github.com/clubops/pointsledger/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRole = "Technological Advancements Committee"

func TestToggle_AddsThenRemoves(t *testing.T) {
	ctx := context.Background()
	tg := NewToggler(NewInMemoryManager())

	added, err := tg.Toggle(ctx, "alice", testRole)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = tg.Toggle(ctx, "alice", testRole)
	require.NoError(t, err)
	assert.False(t, added)

	// removed again, so the third toggle adds once more
	added, err = tg.Toggle(ctx, "alice", testRole)
	require.NoError(t, err)
	assert.True(t, added)
}

func TestToggle_UnknownRole(t *testing.T) {
	tg := NewToggler(NewInMemoryManager())

	_, err := tg.Toggle(context.Background(), "alice", "Supreme Leader")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestToggle_MembersAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryManager()
	tg := NewToggler(m)

	_, err := tg.Toggle(ctx, "alice", testRole)
	require.NoError(t, err)

	has, err := m.HasRole(ctx, "bob", testRole)
	require.NoError(t, err)
	assert.False(t, has)
}
