// Package auth drives the login state machine: online and offline password
// login, biometric re-entry, passwordless QR login, on-premise second
// factors, and the lock/logout lifecycle. It is the only writer of master
// and vault keys in the key store.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"lockpass/internal/api"
	"lockpass/internal/audit"
	"lockpass/internal/crypto"
	"lockpass/internal/keystore"
	"lockpass/internal/logging"
	"lockpass/internal/platform"
)

// Result is the uniform outcome handed to the UI layer. Branching happens
// on Kind alone; Err carries detail for logs, never key material.
type Result struct {
	Kind        api.Kind
	WaitSeconds int
	Methods     []string
	HardLocked  bool
	Err         error
}

func okResult() Result { return Result{Kind: api.KindOK} }

func failResult(kind api.Kind, err error) Result { return Result{Kind: kind, Err: err} }

var (
	ErrNotUnlocked  = errors.New("auth: session is not unlocked")
	ErrNoPending2FA = errors.New("auth: no pending second-factor login")
	ErrBadQRPayload = errors.New("auth: malformed qr payload")
)

type Config struct {
	Device   DeviceProvider
	Gate     BiometricGate
	Keychain platform.Keychain
	Audit    *audit.Log
	Logger   *slog.Logger

	AttemptThreshold int
	AttemptRate      rate.Limit
	AttemptBurst     int
	AttemptTTL       time.Duration
}

func (c *Config) setDefaults() {
	if c.Device == nil {
		c.Device = NewStaticDevice("lockerctl", "cli")
	}
	if c.Audit == nil {
		c.Audit = audit.New()
	}
	if c.Logger == nil {
		c.Logger = logging.New(nil, false)
	}
	if c.AttemptThreshold <= 0 {
		c.AttemptThreshold = 6
	}
	if c.AttemptRate <= 0 {
		c.AttemptRate = rate.Every(time.Second)
	}
	if c.AttemptBurst <= 0 {
		c.AttemptBurst = 3
	}
	if c.AttemptTTL <= 0 {
		c.AttemptTTL = 15 * time.Minute
	}
}

// pendingLogin holds the first-leg material of an on-premise 2FA login
// until the second factor arrives.
type pendingLogin struct {
	email      string
	serverHash string
	masterKey  []byte
	localHash  string
	kdfType    crypto.KDFType
	iterations int
	method     string
}

type Authenticator struct {
	client   api.Client
	keys     *keystore.KeyStore
	device   DeviceProvider
	gate     BiometricGate
	keychain platform.Keychain
	auditLog *audit.Log
	log      *slog.Logger
	attempts *attemptLimiter

	// state transitions are driven by one caller at a time; the key store
	// carries its own lock for the material it holds.
	state   State
	session Session
	pending *pendingLogin
}

func New(client api.Client, keys *keystore.KeyStore, cfg Config) *Authenticator {
	cfg.setDefaults()
	return &Authenticator{
		client:   client,
		keys:     keys,
		device:   cfg.Device,
		gate:     cfg.Gate,
		keychain: cfg.Keychain,
		auditLog: cfg.Audit,
		log:      logging.For(cfg.Logger, "auth"),
		attempts: newAttemptLimiter(cfg.AttemptRate, cfg.AttemptBurst, cfg.AttemptThreshold, cfg.AttemptTTL),
		state:    StateLoggedOut,
	}
}

func (a *Authenticator) State() State { return a.state }

func (a *Authenticator) Session() Session { return a.session }

// SessionLogin runs the online password flow, falling back to offline
// verification when the server is unreachable.
func (a *Authenticator) SessionLogin(ctx context.Context, email, password string) Result {
	email = normalizeEmail(email)
	if r, blocked := a.checkAttempts(email); blocked {
		return r
	}
	a.state = StateAuthenticating

	pre := a.client.Prelogin(ctx, api.PreloginRequest{Email: email})
	if pre.Kind.Transient() {
		return a.offlineLogin(email, password, pre.Kind)
	}
	if pre.Kind != api.KindOK {
		return a.loginFailed(email, Result{Kind: pre.Kind, WaitSeconds: pre.WaitSeconds, Err: pre.Err})
	}

	kdfType := crypto.KDFType(pre.Data.KDFType)
	iterations := pre.Data.KDFIterations
	master, err := crypto.DeriveMasterKey([]byte(password), []byte(email), kdfType, iterations)
	if err != nil {
		a.state = StateLoggedOut
		return failResult(api.KindBadData, err)
	}
	serverHash := crypto.HashMasterPassword(master, []byte(password), crypto.ServerAuthorization)
	localHash := crypto.HashMasterPassword(master, []byte(password), crypto.LocalAuthorization)

	resp := a.client.Login(ctx, api.LoginRequest{
		Email:              email,
		MasterPasswordHash: serverHash,
		Device:             a.device.Device(),
	})
	switch resp.Kind {
	case api.KindOK:
		return a.completeLogin(email, master, localHash, serverHash, kdfType, iterations, resp.Data)
	case api.KindOnPremise2FA:
		a.pending = &pendingLogin{
			email: email, serverHash: serverHash, masterKey: master,
			localHash: localHash, kdfType: kdfType, iterations: iterations,
		}
		a.state = StateAwaitingMethodSelection
		return Result{Kind: api.KindOnPremise2FA, Methods: resp.Data.Methods}
	default:
		if resp.Kind.Transient() {
			crypto.Zero(master)
			return a.offlineLogin(email, password, resp.Kind)
		}
		crypto.Zero(master)
		return a.handleLoginError(email, resp.Kind, resp.WaitSeconds, resp.Err)
	}
}

// SelectMethod chooses the second-factor channel after the server reported
// an on-premise 2FA requirement.
func (a *Authenticator) SelectMethod(method string) Result {
	if a.pending == nil || a.state != StateAwaitingMethodSelection {
		return failResult(api.KindBadData, ErrNoPending2FA)
	}
	a.pending.method = method
	a.state = StateAwaitingSecondFactor
	return okResult()
}

// SessionOTPLogin submits the second-factor code and completes the pending
// login.
func (a *Authenticator) SessionOTPLogin(ctx context.Context, code string, rememberDevice bool) Result {
	p := a.pending
	if p == nil || a.state != StateAwaitingSecondFactor {
		return failResult(api.KindBadData, ErrNoPending2FA)
	}
	resp := a.client.Login(ctx, api.LoginRequest{
		Email:              p.email,
		MasterPasswordHash: p.serverHash,
		Device:             a.device.Device(),
		Method:             p.method,
		OTP:                strings.TrimSpace(code),
		RememberDevice:     rememberDevice,
	})
	if resp.Kind != api.KindOK {
		return a.handleLoginError(p.email, resp.Kind, resp.WaitSeconds, resp.Err)
	}
	master, localHash, serverHash := p.masterKey, p.localHash, p.serverHash
	kdfType, iterations := p.kdfType, p.iterations
	a.pending = nil
	return a.completeLogin(p.email, master, localHash, serverHash, kdfType, iterations, resp.Data)
}

// SessionQRLogin performs passwordless login from a scanned QR payload. The
// displayed OTP decrypts the payload; its plaintext carries the server hash
// and the raw vault key, so no master key exists for this session.
func (a *Authenticator) SessionQRLogin(ctx context.Context, email, payload, otp string) Result {
	email = normalizeEmail(email)
	if r, blocked := a.checkAttempts(email); blocked {
		return r
	}
	a.state = StateAuthenticating

	plaintext, err := crypto.DecryptQRPayload(payload, otp)
	if err != nil {
		return a.loginFailed(email, failResult(api.KindBadData, err))
	}
	parts := strings.SplitN(plaintext, ".", 3)
	if len(parts) != 3 {
		return a.loginFailed(email, failResult(api.KindBadData, ErrBadQRPayload))
	}
	serverHash, vaultKeyB64 := parts[0], parts[1]

	rawKey, err := base64.StdEncoding.DecodeString(vaultKeyB64)
	if err != nil {
		return a.loginFailed(email, failResult(api.KindBadData, ErrBadQRPayload))
	}
	vaultKey, err := crypto.NewSymmetricKey(rawKey)
	if err != nil {
		return a.loginFailed(email, failResult(api.KindBadData, err))
	}

	resp := a.client.Login(ctx, api.LoginRequest{
		Email:              email,
		MasterPasswordHash: serverHash,
		Device:             a.device.Device(),
	})
	if resp.Kind != api.KindOK {
		vaultKey.Wipe()
		return a.handleLoginError(email, resp.Kind, resp.WaitSeconds, resp.Err)
	}
	return a.installSession(email, nil, serverHash, vaultKey, resp.Data)
}

// BiometricLogin re-enters an unlocked state using the vault key released
// by the OS keychain after a successful sensor prompt. It requires a prior
// password login on this device.
func (a *Authenticator) BiometricLogin(ctx context.Context) Result {
	if a.gate == nil || !a.gate.Available() {
		return failResult(api.KindBadData, errors.New("auth: biometric sensor unavailable"))
	}
	okPrompt, err := a.gate.Prompt(ctx)
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	if !okPrompt {
		return failResult(api.KindUnauthorized, errors.New("auth: biometric prompt rejected"))
	}
	if a.keychain == nil {
		return failResult(api.KindBadData, errors.New("auth: no keychain configured"))
	}
	deviceID, err := a.keys.DeviceID()
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	cached, err := a.keychain.Load(deviceID)
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	parts := strings.SplitN(string(cached), ".", 2)
	if len(parts) != 2 {
		return failResult(api.KindBadData, errors.New("auth: corrupt keychain entry"))
	}
	serverHash := parts[0]
	rawKey, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	vaultKey, err := crypto.NewSymmetricKey(rawKey)
	if err != nil {
		return failResult(api.KindBadData, err)
	}

	email, err := a.keys.Email()
	if err != nil {
		vaultKey.Wipe()
		return failResult(api.KindBadData, err)
	}

	resp := a.client.Login(ctx, api.LoginRequest{
		Email:              email,
		MasterPasswordHash: serverHash,
		Device:             a.device.Device(),
	})
	if resp.Kind.Transient() {
		// Offline biometric re-entry: trust the keychain-released key.
		return a.installOffline(email, vaultKey)
	}
	if resp.Kind != api.KindOK {
		vaultKey.Wipe()
		return a.handleLoginError(email, resp.Kind, resp.WaitSeconds, resp.Err)
	}
	return a.installSession(email, nil, serverHash, vaultKey, resp.Data)
}

// Unlock re-enters Unlocked from Locked by verifying the master password
// locally and unwrapping the persisted vault key. No server contact.
func (a *Authenticator) Unlock(ctx context.Context, password string) Result {
	email, err := a.keys.Email()
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	return a.offlineLogin(email, password, api.KindBadData)
}

// Lock clears unwrapped keys but keeps the session's refresh capability and
// the persisted wrapped material.
func (a *Authenticator) Lock() {
	a.keys.Lock()
	a.state = StateLocked
	a.auditLog.Append(audit.EventLocked)
	a.log.Info("session locked")
}

// Logout revokes the session server-side and wipes all local state, keys
// and tokens included.
func (a *Authenticator) Logout(ctx context.Context) Result {
	resp := a.client.Revoke(ctx)
	if deviceID, err := a.keys.DeviceID(); err == nil && a.keychain != nil {
		_ = a.keychain.Delete(deviceID)
	}
	a.keys.Logout()
	a.client.SetAccessToken("")
	a.session = Session{}
	a.pending = nil
	a.state = StateLoggedOut
	a.auditLog.Append(audit.EventLoggedOut)
	a.log.Info("logged out")
	if resp.Kind != api.KindOK && !resp.Kind.Transient() {
		return Result{Kind: resp.Kind, Err: resp.Err}
	}
	return okResult()
}

// RegisterLocker creates a new account: fresh vault key and key pair, both
// wrapped before anything leaves the process.
func (a *Authenticator) RegisterLocker(ctx context.Context, email, password string, kdfType crypto.KDFType, iterations int) Result {
	email = normalizeEmail(email)
	master, err := crypto.DeriveMasterKey([]byte(password), []byte(email), kdfType, iterations)
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	defer crypto.Zero(master)
	serverHash := crypto.HashMasterPassword(master, []byte(password), crypto.ServerAuthorization)

	vaultKey, err := crypto.GenerateSymmetricKey()
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	defer vaultKey.Wipe()
	wrapped, err := crypto.WrapKey(vaultKey, master)
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	pair, err := crypto.GenerateKeyPair(vaultKey)
	if err != nil {
		return failResult(api.KindBadData, err)
	}

	resp := a.client.Register(ctx, api.RegisterRequest{
		Email:              email,
		MasterPasswordHash: serverHash,
		KDFType:            int(kdfType),
		KDFIterations:      iterations,
		WrappedVaultKey:    wrapped.String(),
		PublicKey:          pair.PublicKey,
		WrappedPrivateKey:  pair.EncryptedPrivateKey.String(),
	})
	if resp.Kind != api.KindOK {
		return Result{Kind: resp.Kind, WaitSeconds: resp.WaitSeconds, Err: resp.Err}
	}
	a.log.Info("account registered", "email", email)
	return okResult()
}

// ChangeMasterPassword re-wraps the vault key under a master key derived
// from the new password. The vault key plaintext is unchanged, so no item
// re-encryption happens.
func (a *Authenticator) ChangeMasterPassword(ctx context.Context, currentPassword, newPassword string) Result {
	if a.state != StateUnlocked {
		return failResult(api.KindUnauthorized, ErrNotUnlocked)
	}
	vaultKey, err := a.keys.VaultKey()
	if err != nil {
		return failResult(api.KindUnauthorized, err)
	}
	email, err := a.keys.Email()
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	kdfType, iterations, err := a.keys.KDF()
	if err != nil {
		return failResult(api.KindBadData, err)
	}

	currentMaster, err := crypto.DeriveMasterKey([]byte(currentPassword), []byte(email), kdfType, iterations)
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	defer crypto.Zero(currentMaster)
	currentLocal := crypto.HashMasterPassword(currentMaster, []byte(currentPassword), crypto.LocalAuthorization)
	storedLocal, err := a.keys.LocalHash()
	if err != nil || subtle.ConstantTimeCompare([]byte(currentLocal), []byte(storedLocal)) != 1 {
		return failResult(api.KindUnauthorized, errors.New("auth: current password mismatch"))
	}

	newMaster, err := crypto.DeriveMasterKey([]byte(newPassword), []byte(email), kdfType, iterations)
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	newServerHash := crypto.HashMasterPassword(newMaster, []byte(newPassword), crypto.ServerAuthorization)
	newLocalHash := crypto.HashMasterPassword(newMaster, []byte(newPassword), crypto.LocalAuthorization)
	newWrapped, err := crypto.RemakeEncKey(newMaster, vaultKey)
	if err != nil {
		crypto.Zero(newMaster)
		return failResult(api.KindBadData, err)
	}

	resp := a.client.ChangePassword(ctx, api.ChangePasswordRequest{
		MasterPasswordHash:    crypto.HashMasterPassword(currentMaster, []byte(currentPassword), crypto.ServerAuthorization),
		NewMasterPasswordHash: newServerHash,
		WrappedVaultKey:       newWrapped.String(),
	})
	if resp.Kind != api.KindOK {
		crypto.Zero(newMaster)
		return Result{Kind: resp.Kind, WaitSeconds: resp.WaitSeconds, Err: resp.Err}
	}

	a.keys.SetMasterKey(newMaster)
	crypto.Zero(newMaster)
	if err := a.keys.SetLocalHash(newLocalHash); err != nil {
		return failResult(api.KindBadData, err)
	}
	if err := a.keys.SaveWrappedVaultKey(newWrapped); err != nil {
		return failResult(api.KindBadData, err)
	}
	a.auditLog.Append(audit.EventPassChange)
	a.log.Info("master password changed")
	return okResult()
}

// Refresh exchanges the refresh token for a new access token. A 401 forces
// logout per the session contract.
func (a *Authenticator) Refresh(ctx context.Context) Result {
	if a.session.RefreshToken == "" {
		return failResult(api.KindUnauthorized, ErrNotUnlocked)
	}
	resp := a.client.RefreshToken(ctx, a.session.RefreshToken)
	if resp.Kind == api.KindUnauthorized {
		return a.forceLogout(resp.Err)
	}
	if resp.Kind != api.KindOK {
		return Result{Kind: resp.Kind, WaitSeconds: resp.WaitSeconds, Err: resp.Err}
	}
	a.session.AccessToken = resp.Data.AccessToken
	a.client.SetAccessToken(resp.Data.AccessToken)
	_ = a.keys.SaveTokens(a.session.AccessToken, a.session.RefreshToken)
	return okResult()
}

func (a *Authenticator) offlineLogin(email, password string, transientKind api.Kind) Result {
	kdfType, iterations, err := a.keys.KDF()
	if err != nil {
		// Nothing cached on this device; surface the original failure.
		a.state = StateLoggedOut
		return failResult(transientKind, err)
	}
	master, err := crypto.DeriveMasterKey([]byte(password), []byte(email), kdfType, iterations)
	if err != nil {
		a.state = StateLoggedOut
		return failResult(api.KindBadData, err)
	}
	localHash := crypto.HashMasterPassword(master, []byte(password), crypto.LocalAuthorization)
	stored, err := a.keys.LocalHash()
	if err != nil {
		crypto.Zero(master)
		a.state = StateLoggedOut
		return failResult(transientKind, err)
	}
	if subtle.ConstantTimeCompare([]byte(localHash), []byte(stored)) != 1 {
		crypto.Zero(master)
		return a.loginFailed(email, failResult(api.KindUnauthorized, errors.New("auth: offline password mismatch")))
	}

	wrapped, err := a.keys.WrappedVaultKey()
	if err != nil {
		crypto.Zero(master)
		a.state = StateLoggedOut
		return failResult(api.KindBadData, err)
	}
	vaultKey, err := crypto.UnwrapKey(wrapped, master)
	if err != nil {
		crypto.Zero(master)
		a.state = StateLoggedOut
		return failResult(api.KindBadData, err)
	}
	a.keys.SetMasterKey(master)
	crypto.Zero(master)
	r := a.installOffline(email, vaultKey)
	if r.Kind == api.KindOK {
		a.auditLog.Append(audit.EventOfflineAuth)
		a.log.Info("offline login", "email", email)
	}
	return r
}

// installOffline populates the key store from locally held material. No
// session refresh happens on this path.
func (a *Authenticator) installOffline(email string, vaultKey *crypto.SymmetricKey) Result {
	a.keys.SetVaultKey(vaultKey)
	if wrappedPriv, err := a.keys.WrappedPrivateKey(); err == nil {
		if der, err := crypto.DecryptSymmetric(wrappedPriv, vaultKey); err == nil {
			if priv, err := crypto.ParsePrivateKey(der); err == nil {
				pub, _ := crypto.EncodePublicKey(&priv.PublicKey)
				a.keys.SetKeyPair(pub, priv)
			}
			crypto.Zero(der)
		}
	}
	a.attempts.reset(email)
	a.state = StateUnlocked
	return okResult()
}

func (a *Authenticator) completeLogin(email string, master []byte, localHash, serverHash string, kdfType crypto.KDFType, iterations int, data *api.LoginData) Result {
	wrapped, err := crypto.ParseEncString(data.WrappedVaultKey)
	if err != nil {
		crypto.Zero(master)
		a.state = StateLoggedOut
		return failResult(api.KindBadData, err)
	}
	vaultKey, err := crypto.UnwrapKey(wrapped, master)
	if err != nil {
		crypto.Zero(master)
		a.state = StateLoggedOut
		return failResult(api.KindBadData, err)
	}
	if err := a.keys.SaveWrappedVaultKey(wrapped); err != nil {
		crypto.Zero(master)
		vaultKey.Wipe()
		return a.installFailed(err)
	}
	if err := a.keys.SaveKDF(kdfType, iterations); err != nil {
		crypto.Zero(master)
		vaultKey.Wipe()
		return a.installFailed(err)
	}
	if err := a.keys.SetLocalHash(localHash); err != nil {
		crypto.Zero(master)
		vaultKey.Wipe()
		return a.installFailed(err)
	}
	return a.installSession(email, master, serverHash, vaultKey, data)
}

// installSession finishes any successful online login variant: unwraps the
// private key, persists tokens and wrapped material, and moves to Unlocked.
// master may be nil on passwordless paths.
func (a *Authenticator) installSession(email string, master []byte, serverHash string, vaultKey *crypto.SymmetricKey, data *api.LoginData) Result {
	if master != nil {
		a.keys.SetMasterKey(master)
		crypto.Zero(master)
	}
	a.keys.SetVaultKey(vaultKey)

	if data.WrappedPrivateKey != "" {
		wrappedPriv, err := crypto.ParseEncString(data.WrappedPrivateKey)
		if err != nil {
			return a.installFailed(err)
		}
		der, err := crypto.DecryptSymmetric(wrappedPriv, vaultKey)
		if err != nil {
			return a.installFailed(err)
		}
		priv, err := crypto.ParsePrivateKey(der)
		crypto.Zero(der)
		if err != nil {
			return a.installFailed(err)
		}
		pub, err := crypto.EncodePublicKey(&priv.PublicKey)
		if err != nil {
			return a.installFailed(err)
		}
		a.keys.SetKeyPair(pub, priv)
		if err := a.keys.SaveWrappedPrivateKey(wrappedPriv); err != nil {
			return a.installFailed(err)
		}
	}

	device := a.device.Device()
	a.session = Session{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		DeviceID:     device.DeviceID,
	}
	a.client.SetAccessToken(data.AccessToken)
	if err := a.keys.SaveTokens(data.AccessToken, data.RefreshToken); err != nil {
		return a.installFailed(err)
	}
	if err := a.keys.SaveEmail(email); err != nil {
		return a.installFailed(err)
	}
	if err := a.keys.SaveDeviceID(device.DeviceID); err != nil {
		return a.installFailed(err)
	}

	// Cache the biometric re-entry material when a sensor exists.
	if a.keychain != nil && a.gate != nil && a.gate.Available() {
		entry := serverHash + "." + base64.StdEncoding.EncodeToString(vaultKey.Key)
		_ = a.keychain.Store(device.DeviceID, []byte(entry))
	}

	a.attempts.reset(email)
	a.pending = nil
	a.state = StateUnlocked
	a.auditLog.Append(audit.EventLoggedIn)
	a.log.Info("logged in", "email", email)
	return okResult()
}

func (a *Authenticator) handleLoginError(email string, kind api.Kind, wait int, err error) Result {
	switch kind {
	case api.KindUnauthorized:
		r := a.forceLogout(err)
		return a.loginFailed(email, r)
	case api.KindRateLimited:
		a.state = StateLoggedOut
		return Result{Kind: kind, WaitSeconds: wait, Err: err}
	case api.KindEnterpriseLock, api.KindEnterpriseSystemLock:
		a.state = StateLoggedOut
		return Result{Kind: kind, Err: err}
	default:
		return a.loginFailed(email, Result{Kind: kind, WaitSeconds: wait, Err: err})
	}
}

// installFailed unwinds a half-installed login: any keys already set are
// cleared and the machine returns to LoggedOut rather than parking in
// Authenticating.
func (a *Authenticator) installFailed(err error) Result {
	a.keys.Lock()
	a.session = Session{}
	a.client.SetAccessToken("")
	a.state = StateLoggedOut
	return failResult(api.KindBadData, err)
}

// forceLogout clears tokens after a 401 without touching wrapped material,
// so an offline unlock remains possible.
func (a *Authenticator) forceLogout(err error) Result {
	a.client.SetAccessToken("")
	a.session = Session{}
	_ = a.keys.SaveTokens("", "")
	a.keys.Lock()
	a.state = StateLoggedOut
	return failResult(api.KindUnauthorized, err)
}

func (a *Authenticator) checkAttempts(email string) (Result, bool) {
	if a.attempts.allow(email) {
		return Result{}, false
	}
	a.hardLock()
	return Result{Kind: api.KindRateLimited, HardLocked: true,
		Err: errors.New("auth: too many failed attempts")}, true
}

func (a *Authenticator) loginFailed(email string, r Result) Result {
	if a.attempts.fail(email) {
		a.hardLock()
		r.HardLocked = true
		return r
	}
	if a.state == StateAuthenticating {
		a.state = StateLoggedOut
	}
	return r
}

func (a *Authenticator) hardLock() {
	a.keys.Lock()
	a.state = StateLocked
	a.auditLog.Append(audit.EventHardLock)
	a.log.Warn("hard lock after repeated failed attempts")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
