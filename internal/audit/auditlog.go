// Package audit keeps a hash-chained record of security-relevant session
// events (logins, locks, shares, takeovers) so tampering with the local
// history is detectable.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Event names. Kept short and stable; they end up in support bundles.
const (
	EventLoggedIn    = "logged_in"
	EventOfflineAuth = "offline_auth"
	EventLocked      = "locked"
	EventLoggedOut   = "logged_out"
	EventShared      = "shared"
	EventShareStop   = "share_stopped"
	EventTakeover    = "takeover"
	EventHardLock    = "hard_lock"
	EventPassChange  = "password_changed"
)

type Entry struct {
	TS    int64  `json:"ts"`
	Event string `json:"event"`
	Hash  string `json:"hash"`
}

type Log struct {
	mu       sync.Mutex
	lastHash []byte
	entries  []Entry
}

func New() *Log { return &Log{} }

// Append records an event, chaining its hash to the previous entry.
func (l *Log) Append(event string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := sha256.New()
	h.Write(l.lastHash)
	h.Write([]byte(event))
	sum := h.Sum(nil)
	l.lastHash = sum
	e := Entry{TS: time.Now().Unix(), Event: event, Hash: hex.EncodeToString(sum)}
	l.entries = append(l.entries, e)
	return e
}

// Verify recomputes the chain and fails on the first broken link.
func (l *Log) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var prev []byte
	for i, e := range l.entries {
		h := sha256.New()
		h.Write(prev)
		h.Write([]byte(e.Event))
		sum := h.Sum(nil)
		if hex.EncodeToString(sum) != e.Hash {
			return fmt.Errorf("audit: chain broken at entry %d", i)
		}
		prev = sum
	}
	return nil
}

func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}
