// Package kvstore is the client-side durable state store: the storefront's
// replacement for browser localStorage. It holds small JSON snapshots under
// string keys — the saved cart, the pending cart carried across a login, and
// the session record.
//
// Three drivers exist: file (default, one JSON file per key), redis (shared
// state across terminals), and memory (tests).
package kvstore

import (
	"github.com/slicemaster/storefront/config"
)

// Store persists JSON-serialisable values under string keys.
//
// Get follows the cache convention: it unmarshals into dest and reports a
// hit. A missing or corrupt value is a miss, never an error — callers fall
// back to zero state, exactly as the browser client treats unparsable
// localStorage.
type Store interface {
	Get(key string, dest interface{}) bool
	Put(key string, value interface{}) error
	Delete(key string) error
}

// Open returns the store selected by STATE_DRIVER.
func Open() (Store, error) {
	switch config.StateDriver() {
	case "redis":
		return openRedis()
	case "memory":
		return NewMemory(), nil
	default:
		return openFile(config.StateDir())
	}
}

// OpenDir returns a file-backed store rooted at an explicit directory,
// bypassing config.
func OpenDir(root string) (Store, error) {
	return openFile(root)
}
