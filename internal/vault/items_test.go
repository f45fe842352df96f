package vault

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lockpass/internal/crypto"
)

func newKey(t *testing.T) *crypto.SymmetricKey {
	t.Helper()
	k, err := crypto.GenerateSymmetricKey()
	require.NoError(t, err)
	return k
}

func TestReencryptMovesOwnership(t *testing.T) {
	personal := newKey(t)
	orgKey := newKey(t)

	item, err := EncryptItem("it-1", TypeLogin, "folder-1", "github",
		map[string]string{"username": "alice", "password": "hunter2"}, personal)
	require.NoError(t, err)

	moved, err := ReencryptItem(item, personal, orgKey)
	require.NoError(t, err)
	require.Equal(t, item.ID, moved.ID)

	// Decrypts under the new key.
	name, fields, err := DecryptItem(moved, orgKey)
	require.NoError(t, err)
	require.Equal(t, "github", name)
	require.Equal(t, "hunter2", fields["password"])

	// And no longer under the old one: ownership is exclusive.
	_, _, err = DecryptItem(moved, personal)
	require.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestReencryptRequiresOwningKey(t *testing.T) {
	personal := newKey(t)
	wrong := newKey(t)
	item, err := EncryptItem("it-2", TypeNote, "f", "note", map[string]string{"body": "text"}, personal)
	require.NoError(t, err)
	_, err = ReencryptItem(item, wrong, personal)
	require.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestCacheFolderAndOrgScoping(t *testing.T) {
	key := newKey(t)
	c := NewCache()
	for _, spec := range []struct{ id, folder, org string }{
		{"a", "f1", ""},
		{"b", "f1", ""},
		{"c", "f2", "org-1"},
	} {
		item, err := EncryptItem(spec.id, TypeLogin, spec.folder, "n", map[string]string{"password": "p"}, key)
		require.NoError(t, err)
		item.OrganizationID = spec.org
		c.Put(item)
	}

	require.Len(t, c.ListFolder("f1"), 2)
	require.Len(t, c.ListOrganization("org-1"), 1)

	c.EvictOrganization("org-1")
	require.Empty(t, c.ListOrganization("org-1"))
	require.True(t, c.Stale())
	_, ok := c.Get("a")
	require.True(t, ok)
}
