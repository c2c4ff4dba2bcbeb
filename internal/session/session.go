// Package session owns the authenticated identity of the storefront: a
// bearer token plus the user profile, persisted together in the client state
// store.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slicemaster/storefront/pkg/kvstore"
)

// StateKey is the client state store key holding the session record.
const StateKey = "session"

// Profile is the user profile delivered alongside the token at login.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// record is the single persisted value. Token and profile live in one
// snapshot so they are always written and cleared as a pair.
type record struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

// Store holds the session. Set and Clear are the only mutators; liveness is
// re-evaluated lazily on each IsAuthenticated call, there is no expiry timer.
type Store struct {
	mu  sync.RWMutex
	kv  kvstore.Store
	cur record
	set bool
}

// NewStore hydrates the session from the state store. A missing or corrupt
// record means signed out.
func NewStore(kv kvstore.Store) *Store {
	s := &Store{kv: kv}
	var rec record
	if kv.Get(StateKey, &rec) && rec.Token != "" {
		s.cur = rec
		s.set = true
	}
	return s
}

// Set stores token and profile atomically and persists them as one record.
func (s *Store) Set(token string, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = record{Token: token, Profile: profile}
	s.set = true
	return s.kv.Put(StateKey, s.cur)
}

// Clear removes token and profile together. Safe to call repeatedly.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = record{}
	s.set = false
	return s.kv.Delete(StateKey)
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Token
}

// Profile returns the stored profile and whether a session is present.
func (s *Store) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Profile, s.set
}

// IsAuthenticated reports whether a token is present and its exp claim is
// strictly in the future. The claim is decoded locally without signature
// verification — the backend is the authority, this only avoids sending
// requests that are guaranteed to bounce. Any decode failure fails closed.
func (s *Store) IsAuthenticated() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now())
}
