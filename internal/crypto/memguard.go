//go:build linux || darwin

package crypto

import "golang.org/x/sys/unix"

// LockMemory pins key material so it is never swapped to disk. Best effort:
// callers ignore the error on platforms with restrictive RLIMIT_MEMLOCK.
func LockMemory(b []byte) error { return unix.Mlock(b) }

// UnlockMemory releases a previous LockMemory pin.
func UnlockMemory(b []byte) error { return unix.Munlock(b) }
