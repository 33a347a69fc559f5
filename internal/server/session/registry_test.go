package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterLookupRemove(t *testing.T) {
	r := NewRegistry()

	tok := r.Register("alice")
	require.NotEmpty(t, tok)

	username, ok := r.Lookup(tok)
	require.True(t, ok)
	assert.Equal(t, "alice", username)

	r.Remove(tok)
	_, ok = r.Lookup(tok)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_TokensAreNeverReused(t *testing.T) {
	r := NewRegistry()

	t1 := r.Register("alice")
	t2 := r.Register("alice")
	assert.NotEqual(t, t1, t2)

	// both sessions are live until their connections close
	u1, ok := r.Lookup(t1)
	require.True(t, ok)
	u2, ok := r.Lookup(t2)
	require.True(t, ok)
	assert.Equal(t, u1, u2)
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("no-such-token")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok := r.Register("user")
			_, ok := r.Lookup(tok)
			assert.True(t, ok)
			r.Remove(tok)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}
