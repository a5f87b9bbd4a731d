// Package consent keeps track of transfers MetaKeep has accepted but the client
// has not yet confirmed, keyed by the lower-cased consent token.
//
// The registry is volatile: it lives for the process lifetime and has no expiry.
package consent

import (
	"sync"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
)

type entry struct {
	record  domain.PendingTransferNotification
	claimed bool
}

// Registry is safe for concurrent use. Every operation holds the same mutex,
// so a check and the write that depends on it can never interleave.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Register stores record under token unless the token is already present.
// It returns false, leaving the existing record untouched, for a duplicate.
func (r *Registry) Register(token domain.ConsentToken, record domain.PendingTransferNotification) bool {
	key := token.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; ok {
		return false
	}
	r.entries[key] = &entry{record: record}
	return true
}

func (r *Registry) Exists(token domain.ConsentToken) bool {
	key := token.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[key]
	return ok
}

// Fetch returns a copy of the record registered for token.
func (r *Registry) Fetch(token domain.ConsentToken) (domain.PendingTransferNotification, bool) {
	key := token.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return domain.PendingTransferNotification{}, false
	}
	return e.record, true
}

// Release removes token and reports whether anything was removed.
func (r *Registry) Release(token domain.ConsentToken) bool {
	key := token.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; !ok {
		return false
	}
	delete(r.entries, key)
	return true
}

// Claim marks token as being confirmed and returns its record. Only one caller
// can hold a claim; the entry stays registered until Release or Unclaim.
func (r *Registry) Claim(token domain.ConsentToken) (domain.PendingTransferNotification, error) {
	key := token.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return domain.PendingTransferNotification{}, domain.ErrTokenNotRegistered
	}
	if e.claimed {
		return domain.PendingTransferNotification{}, domain.ErrConfirmationInProgress
	}
	e.claimed = true
	return e.record, nil
}

// Unclaim hands a claimed token back so a later confirmation can retry it.
func (r *Registry) Unclaim(token domain.ConsentToken) bool {
	key := token.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok || !e.claimed {
		return false
	}
	e.claimed = false
	return true
}

// ResetAll drops every registered token.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[string]*entry)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
