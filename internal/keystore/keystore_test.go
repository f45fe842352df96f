package keystore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lockpass/internal/crypto"
	"lockpass/internal/storage"
)

func newUnlocked(t *testing.T) (*KeyStore, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	ks := New(kv)

	master, err := crypto.DeriveMasterKey([]byte("Tr0ub4dor&3"), []byte("a@b.com"), crypto.KDFPBKDF2SHA256, 5000)
	require.NoError(t, err)
	vaultKey, err := crypto.GenerateSymmetricKey()
	require.NoError(t, err)

	ks.SetMasterKey(master)
	ks.SetVaultKey(vaultKey)
	require.NoError(t, ks.SetLocalHash(crypto.HashMasterPassword(master, []byte("Tr0ub4dor&3"), crypto.LocalAuthorization)))

	stretched, err := crypto.NewSymmetricKey(master)
	require.NoError(t, err)
	wrapped, err := crypto.EncryptSymmetric(vaultKey.Key, stretched)
	require.NoError(t, err)
	require.NoError(t, ks.SaveWrappedVaultKey(wrapped))
	require.NoError(t, ks.SaveKDF(crypto.KDFPBKDF2SHA256, 5000))
	require.NoError(t, ks.SaveTokens("access-tok", "refresh-tok"))
	return ks, kv
}

func TestLockClearsMemoryKeepsPersisted(t *testing.T) {
	ks, _ := newUnlocked(t)

	ks.Lock()

	_, err := ks.MasterKey()
	require.ErrorIs(t, err, ErrLocked)
	_, err = ks.VaultKey()
	require.ErrorIs(t, err, ErrLocked)

	// Offline-unlock material survives.
	hash, err := ks.LocalHash()
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	_, err = ks.WrappedVaultKey()
	require.NoError(t, err)
	kdfType, iters, err := ks.KDF()
	require.NoError(t, err)
	require.Equal(t, crypto.KDFPBKDF2SHA256, kdfType)
	require.Equal(t, 5000, iters)
}

func TestLogoutClearsEverything(t *testing.T) {
	ks, kv := newUnlocked(t)
	require.NoError(t, ks.SaveEmail("a@b.com"))

	// Wrapped org keys from earlier shares must not outlive the account.
	for _, orgID := range []string{"org-1", "org-2"} {
		orgKey, err := crypto.GenerateSymmetricKey()
		require.NoError(t, err)
		ks.SetOrgKey(orgID, orgKey)
		vaultKey, err := ks.VaultKey()
		require.NoError(t, err)
		wrapped, err := crypto.EncryptSymmetric(orgKey.Key, vaultKey)
		require.NoError(t, err)
		require.NoError(t, ks.SaveWrappedOrgKey(orgID, wrapped))
	}

	ks.Logout()

	_, err := ks.LocalHash()
	require.Error(t, err)
	_, err = ks.WrappedVaultKey()
	require.Error(t, err)
	_, _, err = ks.Tokens()
	require.Error(t, err)
	_, err = ks.Email()
	require.Error(t, err)
	for _, key := range []string{
		"masterPasswordHash", "email", "orgKeyIDs", "orgKey:org-1", "orgKey:org-2",
	} {
		_, err = kv.Get(key)
		require.ErrorIs(t, err, storage.ErrNotFound, key)
	}
}

func TestUnlockedWrapRoundTrip(t *testing.T) {
	ks, _ := newUnlocked(t)

	master, err := ks.MasterKey()
	require.NoError(t, err)
	vaultKey, err := ks.VaultKey()
	require.NoError(t, err)

	stretched, err := crypto.NewSymmetricKey(master)
	require.NoError(t, err)
	wrapped, err := ks.WrappedVaultKey()
	require.NoError(t, err)
	raw, err := crypto.DecryptSymmetric(wrapped, stretched)
	require.NoError(t, err)
	require.Equal(t, vaultKey.Key, raw)
}

func TestOrgKeyLifecycle(t *testing.T) {
	ks, _ := newUnlocked(t)

	orgKey, err := crypto.GenerateSymmetricKey()
	require.NoError(t, err)
	ks.SetOrgKey("org-1", orgKey)

	got, err := ks.OrgKey("org-1")
	require.NoError(t, err)
	require.Equal(t, orgKey.Key, got.Key)

	vaultKey, err := ks.VaultKey()
	require.NoError(t, err)
	wrapped, err := crypto.EncryptSymmetric(orgKey.Key, vaultKey)
	require.NoError(t, err)
	require.NoError(t, ks.SaveWrappedOrgKey("org-1", wrapped))

	ks.RemoveOrgKey("org-1")
	_, err = ks.OrgKey("org-1")
	require.ErrorIs(t, err, ErrLocked)
	_, err = ks.WrappedOrgKey("org-1")
	require.Error(t, err)
	require.Empty(t, ks.orgKeyIDs())
}
