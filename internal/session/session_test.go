package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicemaster/storefront/internal/session"
	"github.com/slicemaster/storefront/pkg/auth"
	"github.com/slicemaster/storefront/pkg/kvstore"
)

func mintToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token, err := auth.GenerateToken("U-1", "u@example.com", ttl)
	require.NoError(t, err)
	return token
}

func TestSetPersistsTokenAndProfileTogether(t *testing.T) {
	kv := kvstore.NewMemory()
	s := session.NewStore(kv)

	profile := session.Profile{ID: "U-1", FirstName: "Ada", Email: "ada@example.com"}
	require.NoError(t, s.Set("tok-1", profile))

	// A fresh store hydrates both halves from the single snapshot.
	s2 := session.NewStore(kv)
	assert.Equal(t, "tok-1", s2.Token())
	got, ok := s2.Profile()
	assert.True(t, ok)
	assert.Equal(t, profile, got)
}

func TestClearRemovesBothHalves(t *testing.T) {
	kv := kvstore.NewMemory()
	s := session.NewStore(kv)

	require.NoError(t, s.Set("tok-1", session.Profile{ID: "U-1"}))
	require.NoError(t, s.Clear())

	assert.Equal(t, "", s.Token())
	_, ok := s.Profile()
	assert.False(t, ok)

	// Clear is idempotent.
	require.NoError(t, s.Clear())

	s2 := session.NewStore(kv)
	assert.Equal(t, "", s2.Token())
}

func TestHydrateFromCorruptSnapshotMeansSignedOut(t *testing.T) {
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Put(session.StateKey, map[string]string{"token": ""}))
	assert.False(t, session.NewStore(kv).IsAuthenticated())

	kv.Corrupt(session.StateKey)
	s := session.NewStore(kv)
	assert.Equal(t, "", s.Token())
	assert.False(t, s.IsAuthenticated())
}

func TestIsAuthenticated(t *testing.T) {
	kv := kvstore.NewMemory()
	s := session.NewStore(kv)

	// Signed out.
	assert.False(t, s.IsAuthenticated())

	// Valid, unexpired token.
	require.NoError(t, s.Set(mintToken(t, time.Hour), session.Profile{ID: "U-1"}))
	assert.True(t, s.IsAuthenticated())

	// Expired token fails closed.
	require.NoError(t, s.Set(mintToken(t, -time.Minute), session.Profile{ID: "U-1"}))
	assert.False(t, s.IsAuthenticated())

	// Garbage that is not a JWT at all fails closed.
	require.NoError(t, s.Set("not-a-jwt", session.Profile{ID: "U-1"}))
	assert.False(t, s.IsAuthenticated())
}
