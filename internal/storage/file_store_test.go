package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileKVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secure", "store.json")
	kv := NewFileKV(path)

	if _, err := kv.Get("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := kv.Set("wrappedVaultKey", []byte("2.iv|ct|mac")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := kv.Get("wrappedVaultKey")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "2.iv|ct|mac" {
		t.Fatalf("unexpected value %q", got)
	}

	// Reopen: values survive the process.
	kv2 := NewFileKV(path)
	if got, err = kv2.Get("wrappedVaultKey"); err != nil || string(got) != "2.iv|ct|mac" {
		t.Fatalf("reopen get: %q %v", got, err)
	}

	if err := kv2.Remove("wrappedVaultKey"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := kv2.Get("wrappedVaultKey"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	// Removing an absent key is not an error.
	if err := kv2.Remove("wrappedVaultKey"); err != nil {
		t.Fatalf("double remove: %v", err)
	}
}

func TestFileKVPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	kv := NewFileKV(path)
	if err := kv.Set("k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}
