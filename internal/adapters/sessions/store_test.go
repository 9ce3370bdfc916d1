package sessions

import (
	"context"
	"ride-fare-service/internal/ports"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore checks behaviour shared by every SessionStore implementation.
func exerciseStore(t *testing.T, store ports.SessionStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("token lifecycle", func(t *testing.T) {
		_, ok, err := store.Token(ctx, "s1", "Uber")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, store.SetToken(ctx, "s1", "Uber", "tok-1"))
		tok, ok, err := store.Token(ctx, "s1", "Uber")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok-1", tok)

		_, ok, err = store.Token(ctx, "s2", "Uber")
		require.NoError(t, err)
		assert.False(t, ok, "tokens are scoped to one session")

		require.NoError(t, store.DeleteToken(ctx, "s1", "Uber"))
		_, ok, err = store.Token(ctx, "s1", "Uber")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete missing token", func(t *testing.T) {
		require.NoError(t, store.DeleteToken(ctx, "never-seen", "Uber"))
	})

	t.Run("state is taken once", func(t *testing.T) {
		require.NoError(t, store.SetState(ctx, "s3", "abc"))

		state, ok, err := store.TakeState(ctx, "s3")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc", state)

		_, ok, err = store.TakeState(ctx, "s3")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("flashes are popped in order", func(t *testing.T) {
		require.NoError(t, store.AddFlash(ctx, "s4", "first"))
		require.NoError(t, store.AddFlash(ctx, "s4", "second"))

		got, err := store.Flashes(ctx, "s4")
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, got)

		got, err = store.Flashes(ctx, "s4")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty session id rejected", func(t *testing.T) {
		assert.Error(t, store.SetToken(ctx, "", "Uber", "tok"))
		assert.Error(t, store.AddFlash(ctx, "", "msg"))
	})
}
