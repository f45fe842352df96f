// Package emergency implements trusted-contact takeover: the server
// releases the account owner's vault key wrapped under the requesting
// contact's RSA public key, and the contact sets a new master password by
// re-wrapping that same vault key. No item is re-encrypted; only the
// wrapper changes.
package emergency

import (
	"context"
	"errors"
	"log/slog"

	"lockpass/internal/api"
	"lockpass/internal/audit"
	"lockpass/internal/crypto"
	"lockpass/internal/keystore"
	"lockpass/internal/logging"
)

type Result struct {
	Kind api.Kind
	Err  error
}

var ErrNotUnlocked = errors.New("emergency: session is not unlocked")

type Config struct {
	Audit  *audit.Log
	Logger *slog.Logger
}

type Module struct {
	client api.Client
	keys   *keystore.KeyStore
	audit  *audit.Log
	log    *slog.Logger
}

func New(client api.Client, keys *keystore.KeyStore, cfg Config) *Module {
	if cfg.Audit == nil {
		cfg.Audit = audit.New()
	}
	return &Module{
		client: client,
		keys:   keys,
		audit:  cfg.Audit,
		log:    logging.For(cfg.Logger, "emergency"),
	}
}

// UpdateNewMasterPasswordEA is the UI-facing takeover operation.
func (m *Module) UpdateNewMasterPasswordEA(ctx context.Context, contactID, ownerEmail, newPassword string) Result {
	return m.Takeover(ctx, contactID, ownerEmail, newPassword)
}

// Takeover recovers the owner's account under a new master password. The
// released vault key is RSA-unwrapped with this session's private key,
// then re-wrapped under a master key derived from the new password with
// the owner's stored KDF parameters.
func (m *Module) Takeover(ctx context.Context, contactID, ownerEmail, newPassword string) Result {
	priv, err := m.keys.PrivateKey()
	if err != nil {
		return Result{Kind: api.KindUnauthorized, Err: ErrNotUnlocked}
	}

	resp := m.client.Takeover(ctx, contactID)
	if resp.Kind != api.KindOK {
		return Result{Kind: resp.Kind, Err: resp.Err}
	}

	wrapped, err := crypto.ParseEncString(resp.Data.KeyEncrypted)
	if err != nil {
		return Result{Kind: api.KindBadData, Err: err}
	}
	raw, err := crypto.DecryptRSA(wrapped, priv)
	if err != nil {
		return Result{Kind: api.KindBadData, Err: err}
	}
	vaultKey, err := crypto.NewSymmetricKey(raw)
	crypto.Zero(raw)
	if err != nil {
		return Result{Kind: api.KindBadData, Err: err}
	}
	defer vaultKey.Wipe()

	newMaster, err := crypto.DeriveMasterKey(
		[]byte(newPassword), []byte(ownerEmail),
		crypto.KDFType(resp.Data.KDFType), resp.Data.KDFIterations,
	)
	if err != nil {
		return Result{Kind: api.KindBadData, Err: err}
	}
	defer crypto.Zero(newMaster)

	newWrapped, err := crypto.RemakeEncKey(newMaster, vaultKey)
	if err != nil {
		return Result{Kind: api.KindBadData, Err: err}
	}
	newHash := crypto.HashMasterPassword(newMaster, []byte(newPassword), crypto.ServerAuthorization)

	submit := m.client.TakeoverPassword(ctx, contactID, api.TakeoverPasswordRequest{
		WrappedVaultKey:    newWrapped.String(),
		MasterPasswordHash: newHash,
	})
	if submit.Kind != api.KindOK {
		return Result{Kind: submit.Kind, Err: submit.Err}
	}

	m.audit.Append(audit.EventTakeover)
	m.log.Info("takeover completed", "contact", contactID)
	return Result{Kind: api.KindOK}
}

// ResetLockerPassword resets the owner's login password only. The vault
// cryptography is untouched, so this path never sees key material.
func (m *Module) ResetLockerPassword(ctx context.Context, contactID, newPassword string) Result {
	resp := m.client.ResetLockerPassword(ctx, contactID, api.ResetPasswordRequest{NewPassword: newPassword})
	if resp.Kind != api.KindOK {
		return Result{Kind: resp.Kind, Err: resp.Err}
	}
	m.log.Info("locker password reset", "contact", contactID)
	return Result{Kind: api.KindOK}
}
