package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lockpass/internal/api"
	"lockpass/internal/crypto"
	"lockpass/internal/keystore"
	"lockpass/internal/storage"
)

// fakeClient scripts per-endpoint responses. Zero values behave as a dead
// network so tests opt in to each endpoint explicitly.
type fakeClient struct {
	prelogin api.Response[api.PreloginData]
	login    func(req api.LoginRequest) api.Response[api.LoginData]
	refresh  api.Response[api.RefreshData]
	change   api.Response[api.EmptyData]
	register api.Response[api.EmptyData]
	token    string
	logins   []api.LoginRequest
}

func (f *fakeClient) Prelogin(_ context.Context, _ api.PreloginRequest) api.Response[api.PreloginData] {
	return f.prelogin
}

func (f *fakeClient) Register(_ context.Context, _ api.RegisterRequest) api.Response[api.EmptyData] {
	return f.register
}

func (f *fakeClient) Login(_ context.Context, req api.LoginRequest) api.Response[api.LoginData] {
	f.logins = append(f.logins, req)
	if f.login == nil {
		return api.Response[api.LoginData]{Kind: api.KindCannotConn, Err: errors.New("no route")}
	}
	return f.login(req)
}

func (f *fakeClient) ChangePassword(_ context.Context, _ api.ChangePasswordRequest) api.Response[api.EmptyData] {
	return f.change
}

func (f *fakeClient) RefreshToken(_ context.Context, _ string) api.Response[api.RefreshData] {
	return f.refresh
}

func (f *fakeClient) Revoke(_ context.Context) api.Response[api.EmptyData] {
	return api.Response[api.EmptyData]{Kind: api.KindOK, Data: &api.EmptyData{}}
}

func (f *fakeClient) PublicKey(_ context.Context, _ string) api.Response[api.PublicKeyData] {
	return api.Response[api.PublicKeyData]{Kind: api.KindNotFound}
}

func (f *fakeClient) GroupMembers(_ context.Context, _ string) api.Response[api.GroupMembersData] {
	return api.Response[api.GroupMembersData]{Kind: api.KindNotFound}
}

func (f *fakeClient) ShareFolder(_ context.Context, _ api.ShareFolderRequest) api.Response[api.ShareFolderData] {
	return api.Response[api.ShareFolderData]{Kind: api.KindNotFound}
}

func (f *fakeClient) UpdateShareMembers(_ context.Context, _ api.ShareMemberRequest) api.Response[api.EmptyData] {
	return api.Response[api.EmptyData]{Kind: api.KindNotFound}
}

func (f *fakeClient) StopShare(_ context.Context, _ api.StopShareRequest) api.Response[api.EmptyData] {
	return api.Response[api.EmptyData]{Kind: api.KindNotFound}
}

func (f *fakeClient) RemoveShareItem(_ context.Context, _ api.RemoveShareItemRequest) api.Response[api.EmptyData] {
	return api.Response[api.EmptyData]{Kind: api.KindNotFound}
}

func (f *fakeClient) Sync(_ context.Context) api.Response[api.SyncData] {
	return api.Response[api.SyncData]{Kind: api.KindNotFound}
}

func (f *fakeClient) Takeover(_ context.Context, _ string) api.Response[api.TakeoverData] {
	return api.Response[api.TakeoverData]{Kind: api.KindNotFound}
}

func (f *fakeClient) TakeoverPassword(_ context.Context, _ string, _ api.TakeoverPasswordRequest) api.Response[api.EmptyData] {
	return api.Response[api.EmptyData]{Kind: api.KindNotFound}
}

func (f *fakeClient) ResetLockerPassword(_ context.Context, _ string, _ api.ResetPasswordRequest) api.Response[api.EmptyData] {
	return api.Response[api.EmptyData]{Kind: api.KindNotFound}
}

func (f *fakeClient) SetAccessToken(token string) { f.token = token }

// account is a server-side fixture: everything the real backend would hold
// for one registered user.
type account struct {
	email      string
	password   string
	kdfType    crypto.KDFType
	iterations int
	master     []byte
	serverHash string
	vaultKey   *crypto.SymmetricKey
	wrapped    crypto.EncString
	pair       crypto.KeyPair
}

func newAccount(t *testing.T) *account {
	t.Helper()
	a := &account{
		email:      "user@example.com",
		password:   "correct horse battery staple",
		kdfType:    crypto.KDFPBKDF2SHA256,
		iterations: 5000,
	}
	var err error
	a.master, err = crypto.DeriveMasterKey([]byte(a.password), []byte(a.email), a.kdfType, a.iterations)
	require.NoError(t, err)
	a.serverHash = crypto.HashMasterPassword(a.master, []byte(a.password), crypto.ServerAuthorization)
	a.vaultKey, err = crypto.GenerateSymmetricKey()
	require.NoError(t, err)
	a.wrapped, err = crypto.WrapKey(a.vaultKey, a.master)
	require.NoError(t, err)
	a.pair, err = crypto.GenerateKeyPair(a.vaultKey)
	require.NoError(t, err)
	return a
}

func (a *account) loginHandler(t *testing.T) func(api.LoginRequest) api.Response[api.LoginData] {
	return func(req api.LoginRequest) api.Response[api.LoginData] {
		if req.MasterPasswordHash != a.serverHash {
			return api.Response[api.LoginData]{Kind: api.KindUnauthorized, Err: errors.New("bad credentials")}
		}
		return api.Response[api.LoginData]{Kind: api.KindOK, Data: &api.LoginData{
			AccessToken:       testJWT(t, time.Now().Add(15*time.Minute)),
			RefreshToken:      "refresh-1",
			WrappedVaultKey:   a.wrapped.String(),
			WrappedPrivateKey: a.pair.EncryptedPrivateKey.String(),
		}}
	}
}

func testJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := enc(map[string]any{"sub": "user", "exp": exp.Unix()})
	return header + "." + claims + "." + base64.RawURLEncoding.EncodeToString([]byte("sig"))
}

func newAuthenticator(client api.Client) (*Authenticator, *keystore.KeyStore) {
	ks := keystore.New(storage.NewMemoryKV())
	a := New(client, ks, Config{})
	return a, ks
}

func TestSessionLoginOnline(t *testing.T) {
	acct := newAccount(t)
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login: acct.loginHandler(t),
	}
	a, ks := newAuthenticator(fc)

	r := a.SessionLogin(context.Background(), "User@Example.COM ", acct.password)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	require.Equal(t, StateUnlocked, a.State())

	vk, err := ks.VaultKey()
	require.NoError(t, err)
	require.Equal(t, acct.vaultKey.Key, vk.Key)
	_, err = ks.PrivateKey()
	require.NoError(t, err)

	access, refresh, err := ks.Tokens()
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.Equal(t, "refresh-1", refresh)
	require.Equal(t, access, fc.token)

	exp, err := a.Session().ExpiresAt()
	require.NoError(t, err)
	require.False(t, a.Session().Expired(time.Now()))
	require.True(t, a.Session().Expired(exp.Add(time.Second)))
}

func TestSessionLoginWrongPassword(t *testing.T) {
	acct := newAccount(t)
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login: acct.loginHandler(t),
	}
	a, _ := newAuthenticator(fc)

	r := a.SessionLogin(context.Background(), acct.email, "wrong password")
	require.Equal(t, api.KindUnauthorized, r.Kind)
	require.Equal(t, StateLoggedOut, a.State())
	require.Empty(t, fc.token)
}

func TestOfflineLoginFallback(t *testing.T) {
	acct := newAccount(t)
	online := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login: acct.loginHandler(t),
	}
	a, ks := newAuthenticator(online)
	require.Equal(t, api.KindOK, a.SessionLogin(context.Background(), acct.email, acct.password).Kind)
	a.Lock()
	require.Equal(t, StateLocked, a.State())

	// Same keystore, dead network.
	offline := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindCannotConn, Err: errors.New("down")},
	}
	b := New(offline, ks, Config{})

	r := b.SessionLogin(context.Background(), acct.email, "not the password")
	require.Equal(t, api.KindUnauthorized, r.Kind)
	require.Equal(t, StateLoggedOut, b.State())

	r = b.SessionLogin(context.Background(), acct.email, acct.password)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	require.Equal(t, StateUnlocked, b.State())
	require.Empty(t, b.Session().AccessToken, "offline login must not mint a session")

	vk, err := ks.VaultKey()
	require.NoError(t, err)
	require.Equal(t, acct.vaultKey.Key, vk.Key)
	require.Empty(t, offline.logins, "offline login must not contact the server")
}

func TestOfflineLoginWithoutCachedStateSurfacesTransient(t *testing.T) {
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindTimeout, Err: errors.New("slow")},
	}
	a, _ := newAuthenticator(fc)
	r := a.SessionLogin(context.Background(), "fresh@example.com", "pw")
	require.Equal(t, api.KindTimeout, r.Kind)
}

func TestRateLimitedSurfacesWait(t *testing.T) {
	acct := newAccount(t)
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login: func(api.LoginRequest) api.Response[api.LoginData] {
			return api.Response[api.LoginData]{Kind: api.KindRateLimited, WaitSeconds: 90, Err: errors.New("slow down")}
		},
	}
	a, _ := newAuthenticator(fc)
	r := a.SessionLogin(context.Background(), acct.email, acct.password)
	require.Equal(t, api.KindRateLimited, r.Kind)
	require.Equal(t, 90, r.WaitSeconds)
}

func TestHardLockAfterSixFailures(t *testing.T) {
	acct := newAccount(t)
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login: acct.loginHandler(t),
	}
	a, _ := newAuthenticator(fc)
	a.attempts = newAttemptLimiter(1000, 1000, 6, time.Hour)

	var r Result
	for i := 0; i < 6; i++ {
		r = a.SessionLogin(context.Background(), acct.email, "wrong")
		require.Equal(t, api.KindUnauthorized, r.Kind)
	}
	require.True(t, r.HardLocked, "sixth failure must trip the hard lock")
	require.Equal(t, StateLocked, a.State())

	// Even the correct password is blocked now.
	r = a.SessionLogin(context.Background(), acct.email, acct.password)
	require.Equal(t, api.KindRateLimited, r.Kind)
	require.True(t, r.HardLocked)
}

func TestOnPremise2FAContinuation(t *testing.T) {
	acct := newAccount(t)
	handler := acct.loginHandler(t)
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
	}
	fc.login = func(req api.LoginRequest) api.Response[api.LoginData] {
		if req.MasterPasswordHash != acct.serverHash {
			return api.Response[api.LoginData]{Kind: api.KindUnauthorized}
		}
		if req.OTP == "" {
			return api.Response[api.LoginData]{Kind: api.KindOnPremise2FA, Data: &api.LoginData{
				Methods: []string{"mail", "smart_otp"},
			}}
		}
		if req.OTP != "424242" || req.Method != "smart_otp" {
			return api.Response[api.LoginData]{Kind: api.KindBadData, Err: errors.New("bad otp")}
		}
		return handler(req)
	}
	a, ks := newAuthenticator(fc)

	r := a.SessionLogin(context.Background(), acct.email, acct.password)
	require.Equal(t, api.KindOnPremise2FA, r.Kind)
	require.Equal(t, []string{"mail", "smart_otp"}, r.Methods)
	require.Equal(t, StateAwaitingMethodSelection, a.State())

	require.Equal(t, api.KindOK, a.SelectMethod("smart_otp").Kind)
	require.Equal(t, StateAwaitingSecondFactor, a.State())

	r = a.SessionOTPLogin(context.Background(), "424242", true)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	require.Equal(t, StateUnlocked, a.State())
	last := fc.logins[len(fc.logins)-1]
	require.True(t, last.RememberDevice)

	_, err := ks.MasterKey()
	require.NoError(t, err)
}

func TestSessionQRLogin(t *testing.T) {
	acct := newAccount(t)
	fc := &fakeClient{login: acct.loginHandler(t)}
	a, ks := newAuthenticator(fc)

	otp := "123456"
	plaintext := acct.serverHash + "." + base64.StdEncoding.EncodeToString(acct.vaultKey.Key) + ".2"
	payload, err := crypto.EncryptQRPayload(plaintext, otp)
	require.NoError(t, err)

	r := a.SessionQRLogin(context.Background(), acct.email, payload, otp)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	require.Equal(t, StateUnlocked, a.State())

	vk, err := ks.VaultKey()
	require.NoError(t, err)
	require.Equal(t, acct.vaultKey.Key, vk.Key)

	// No password was typed, so no master key exists for this session.
	_, err = ks.MasterKey()
	require.ErrorIs(t, err, keystore.ErrLocked)
}

func TestSessionQRLoginGarbagePayload(t *testing.T) {
	fc := &fakeClient{}
	a, _ := newAuthenticator(fc)
	r := a.SessionQRLogin(context.Background(), "user@example.com", "notb64.either", "123456")
	require.Equal(t, api.KindBadData, r.Kind)
	require.Empty(t, fc.logins)
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	acct := newAccount(t)
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login: acct.loginHandler(t),
	}
	a, ks := newAuthenticator(fc)
	require.Equal(t, api.KindOK, a.SessionLogin(context.Background(), acct.email, acct.password).Kind)

	fc.refresh = api.Response[api.RefreshData]{Kind: api.KindUnauthorized, Err: errors.New("expired")}
	r := a.Refresh(context.Background())
	require.Equal(t, api.KindUnauthorized, r.Kind)
	require.Equal(t, StateLoggedOut, a.State())
	require.Empty(t, fc.token)

	access, refresh, err := ks.Tokens()
	require.NoError(t, err)
	require.Empty(t, access)
	require.Empty(t, refresh)

	// Wrapped material survives for offline unlock.
	_, err = ks.WrappedVaultKey()
	require.NoError(t, err)
}

func TestLogoutClearsEverything(t *testing.T) {
	acct := newAccount(t)
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login: acct.loginHandler(t),
	}
	a, ks := newAuthenticator(fc)
	require.Equal(t, api.KindOK, a.SessionLogin(context.Background(), acct.email, acct.password).Kind)

	require.Equal(t, api.KindOK, a.Logout(context.Background()).Kind)
	require.Equal(t, StateLoggedOut, a.State())
	_, err := ks.WrappedVaultKey()
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = ks.VaultKey()
	require.ErrorIs(t, err, keystore.ErrLocked)
}

func TestChangeMasterPassword(t *testing.T) {
	acct := newAccount(t)
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login:  acct.loginHandler(t),
		change: api.Response[api.EmptyData]{Kind: api.KindOK, Data: &api.EmptyData{}},
	}
	a, ks := newAuthenticator(fc)
	require.Equal(t, api.KindOK, a.SessionLogin(context.Background(), acct.email, acct.password).Kind)

	r := a.ChangeMasterPassword(context.Background(), "nope", "new password 123")
	require.Equal(t, api.KindUnauthorized, r.Kind)

	r = a.ChangeMasterPassword(context.Background(), acct.password, "new password 123")
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)

	// The persisted wrapper now opens under the new password's master key
	// and holds the same vault key.
	newMaster, err := crypto.DeriveMasterKey([]byte("new password 123"), []byte(acct.email), acct.kdfType, acct.iterations)
	require.NoError(t, err)
	wrapped, err := ks.WrappedVaultKey()
	require.NoError(t, err)
	vk, err := crypto.UnwrapKey(wrapped, newMaster)
	require.NoError(t, err)
	require.Equal(t, acct.vaultKey.Key, vk.Key)
}

func TestRegisterLocker(t *testing.T) {
	fc := &fakeClient{register: api.Response[api.EmptyData]{Kind: api.KindOK, Data: &api.EmptyData{}}}
	a, _ := newAuthenticator(fc)
	r := a.RegisterLocker(context.Background(), "new@example.com", "a strong passphrase", crypto.KDFPBKDF2SHA256, 5000)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
}

// fakeGate scripts the OS biometric sensor.
type fakeGate struct {
	available bool
	confirm   bool
	err       error
}

func (g *fakeGate) Available() bool { return g.available }

func (g *fakeGate) Prompt(_ context.Context) (bool, error) { return g.confirm, g.err }

// fakeKeychain is an in-memory platform.Keychain.
type fakeKeychain struct {
	entries map[string][]byte
}

func newFakeKeychain() *fakeKeychain { return &fakeKeychain{entries: map[string][]byte{}} }

func (k *fakeKeychain) Store(keyID string, secret []byte) error {
	k.entries[keyID] = append([]byte(nil), secret...)
	return nil
}

func (k *fakeKeychain) Load(keyID string) ([]byte, error) {
	b, ok := k.entries[keyID]
	if !ok {
		return nil, errors.New("keychain: no entry")
	}
	return b, nil
}

func (k *fakeKeychain) Delete(keyID string) error {
	delete(k.entries, keyID)
	return nil
}

func newBiometricAuthenticator(t *testing.T, acct *account) (*Authenticator, *keystore.KeyStore, *fakeClient, *fakeKeychain) {
	t.Helper()
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login: acct.loginHandler(t),
	}
	ks := keystore.New(storage.NewMemoryKV())
	kc := newFakeKeychain()
	a := New(fc, ks, Config{Gate: &fakeGate{available: true, confirm: true}, Keychain: kc})
	return a, ks, fc, kc
}

func TestBiometricLoginAfterPasswordLogin(t *testing.T) {
	acct := newAccount(t)
	a, ks, _, kc := newBiometricAuthenticator(t, acct)

	r := a.SessionLogin(context.Background(), acct.email, acct.password)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	deviceID, err := ks.DeviceID()
	require.NoError(t, err)
	require.Contains(t, kc.entries, deviceID)

	a.Lock()
	require.Equal(t, StateLocked, a.State())

	r = a.BiometricLogin(context.Background())
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	require.Equal(t, StateUnlocked, a.State())
	vk, err := ks.VaultKey()
	require.NoError(t, err)
	require.Equal(t, acct.vaultKey.Key, vk.Key)
}

func TestBiometricLoginRejectedPrompt(t *testing.T) {
	acct := newAccount(t)
	a, _, _, _ := newBiometricAuthenticator(t, acct)

	r := a.SessionLogin(context.Background(), acct.email, acct.password)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	a.Lock()

	a.gate = &fakeGate{available: true, confirm: false}
	r = a.BiometricLogin(context.Background())
	require.Equal(t, api.KindUnauthorized, r.Kind)
	require.Equal(t, StateLocked, a.State())
}

func TestBiometricLoginCorruptKeychainEntry(t *testing.T) {
	acct := newAccount(t)
	a, ks, _, kc := newBiometricAuthenticator(t, acct)

	r := a.SessionLogin(context.Background(), acct.email, acct.password)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	a.Lock()

	deviceID, err := ks.DeviceID()
	require.NoError(t, err)
	kc.entries[deviceID] = []byte("not a cached key entry")

	r = a.BiometricLogin(context.Background())
	require.Equal(t, api.KindBadData, r.Kind)
	require.NotEqual(t, StateUnlocked, a.State())
}

func TestBiometricLoginOfflineFallback(t *testing.T) {
	acct := newAccount(t)
	a, ks, fc, _ := newBiometricAuthenticator(t, acct)

	r := a.SessionLogin(context.Background(), acct.email, acct.password)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	a.Lock()

	// Server unreachable; the keychain-released key alone re-enters Unlocked.
	fc.login = nil
	r = a.BiometricLogin(context.Background())
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	require.Equal(t, StateUnlocked, a.State())
	vk, err := ks.VaultKey()
	require.NoError(t, err)
	require.Equal(t, acct.vaultKey.Key, vk.Key)
}

func TestUnlockFromLocked(t *testing.T) {
	acct := newAccount(t)
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login: acct.loginHandler(t),
	}
	a, ks := newAuthenticator(fc)

	r := a.SessionLogin(context.Background(), acct.email, acct.password)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	a.Lock()
	_, err := ks.VaultKey()
	require.ErrorIs(t, err, keystore.ErrLocked)

	r = a.Unlock(context.Background(), "wrong password")
	require.Equal(t, api.KindUnauthorized, r.Kind)
	_, err = ks.VaultKey()
	require.ErrorIs(t, err, keystore.ErrLocked)

	r = a.Unlock(context.Background(), acct.password)
	require.Equal(t, api.KindOK, r.Kind, "%v", r.Err)
	require.Equal(t, StateUnlocked, a.State())
	vk, err := ks.VaultKey()
	require.NoError(t, err)
	require.Equal(t, acct.vaultKey.Key, vk.Key)
}

func TestLoginWithCorruptPrivateKeyReturnsLoggedOut(t *testing.T) {
	acct := newAccount(t)
	fc := &fakeClient{
		prelogin: api.Response[api.PreloginData]{Kind: api.KindOK, Data: &api.PreloginData{
			KDFType: int(acct.kdfType), KDFIterations: acct.iterations,
		}},
		login: func(req api.LoginRequest) api.Response[api.LoginData] {
			return api.Response[api.LoginData]{Kind: api.KindOK, Data: &api.LoginData{
				AccessToken:       testJWT(t, time.Now().Add(15*time.Minute)),
				RefreshToken:      "refresh-1",
				WrappedVaultKey:   acct.wrapped.String(),
				WrappedPrivateKey: "garbage",
			}}
		},
	}
	a, ks := newAuthenticator(fc)

	r := a.SessionLogin(context.Background(), acct.email, acct.password)
	require.Equal(t, api.KindBadData, r.Kind)
	require.Equal(t, StateLoggedOut, a.State())
	_, err := ks.VaultKey()
	require.ErrorIs(t, err, keystore.ErrLocked)
	_, err = ks.MasterKey()
	require.ErrorIs(t, err, keystore.ErrLocked)
}
