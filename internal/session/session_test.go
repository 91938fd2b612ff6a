package session

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateResolveRevoke(t *testing.T) {
	s := NewStore()

	token, err := s.Create("PS", RoleModerator)
	require.NoError(t, err)
	assert.Len(t, token, tokenBytes*2)

	sess, ok := s.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, "PS", sess.Identity)
	assert.True(t, sess.IsModerator())

	s.Revoke(token)
	_, ok = s.Resolve(token)
	assert.False(t, ok)

	// Revoking twice or revoking garbage is harmless.
	s.Revoke(token)
	s.Revoke("nope")
	assert.Equal(t, 0, s.Len())
}

func TestStore_Resolve_empty_token(t *testing.T) {
	_, ok := NewStore().Resolve("")
	assert.False(t, ok)
}

func TestStore_tokens_unique(t *testing.T) {
	s := NewStore()
	seen := make(map[string]bool)
	for range 200 {
		tok, err := s.Create("user", RoleListener)
		require.NoError(t, err)
		require.False(t, seen[tok], "duplicate token %s", tok)
		seen[tok] = true
	}
	assert.Equal(t, 200, s.Len())
}

func TestStore_concurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := s.Create("user", RoleListener)
			if err != nil {
				t.Error(err)
				return
			}
			s.Resolve(tok)
			s.Revoke(tok)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, s.Len())
}

func TestAccounts_defaults(t *testing.T) {
	a, err := ParseAccounts("", "")
	require.NoError(t, err)

	name, role, ok := a.Authenticate("pepe shneyne", "faa")
	require.True(t, ok)
	assert.Equal(t, "Pepe Shneyne", name)
	assert.Equal(t, RoleModerator, role)

	name, role, ok = a.Authenticate(" USER ", "1234")
	require.True(t, ok)
	assert.Equal(t, "user", name)
	assert.Equal(t, RoleListener, role)

	_, _, ok = a.Authenticate("ps", "wrong")
	assert.False(t, ok)
	_, _, ok = a.Authenticate("nobody", "faa")
	assert.False(t, ok)
	_, _, ok = a.Authenticate("ps", "")
	assert.False(t, ok)
}

func TestAccounts_moderator_wins_over_listener(t *testing.T) {
	a, err := ParseAccounts("dj:secret", "dj:secret,fan:pw")
	require.NoError(t, err)

	_, role, ok := a.Authenticate("DJ", "secret")
	require.True(t, ok)
	assert.Equal(t, RoleModerator, role)
}

func TestParseAccounts_rejects_malformed(t *testing.T) {
	_, err := ParseAccounts("nopassword", "")
	assert.Error(t, err)
}

func TestThrottle_Allow(t *testing.T) {
	th := NewThrottle(0.001, 2)

	assert.True(t, th.Allow("1.2.3.4"))
	assert.True(t, th.Allow("1.2.3.4"))
	assert.False(t, th.Allow("1.2.3.4"))
	assert.True(t, th.Allow("5.6.7.8"), "other clients keep their own budget")
}

func TestThrottle_full_map_keeps_draining_limiters(t *testing.T) {
	clock := clockwork.NewFakeClock()
	th := NewThrottle(1, 1)
	th.clock = clock
	th.maxKeys = 2

	require.True(t, th.Allow("idle"))
	clock.Advance(10 * time.Second)

	require.True(t, th.Allow("attacker"))
	require.False(t, th.Allow("attacker"))

	// The map is full; only the refilled "idle" limiter may go.
	assert.True(t, th.Allow("new-1"))
	assert.Equal(t, 2, th.Len())
	assert.False(t, th.Allow("attacker"), "a draining limiter survives eviction")

	// Nothing is idle now, so unknown keys wait instead of resetting anyone.
	assert.False(t, th.Allow("new-2"))
	assert.False(t, th.Allow("attacker"))

	clock.Advance(10 * time.Second)
	assert.True(t, th.Allow("new-2"))
}
