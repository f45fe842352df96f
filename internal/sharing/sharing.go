// Package sharing implements folder sharing: a fresh organization key per
// share, wrapped for every recipient under their RSA public key, with the
// folder's items re-encrypted from the personal vault key to the
// organization key. Membership changes reuse the existing organization key;
// revocation does not rotate it (the protocol accepts that a removed member
// could still read ciphertext captured earlier).
package sharing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"lockpass/internal/api"
	"lockpass/internal/audit"
	"lockpass/internal/crypto"
	"lockpass/internal/keystore"
	"lockpass/internal/logging"
	"lockpass/internal/policy"
	"lockpass/internal/vault"
)

var (
	ErrEmptyFolder  = errors.New("sharing: folder has no items")
	ErrNoPublicKey  = errors.New("sharing: recipient public key unavailable")
	ErrPolicyDenied = errors.New("sharing: organization password policy violated")
)

// Member is a share recipient as named by the caller.
type Member struct {
	Email         string
	Role          string
	HidePasswords bool
}

// Group names a directory group whose membership the server resolves.
type Group struct {
	ID   string
	Role string
}

// Result is the uniform outcome for the UI layer. Violations is populated
// only when the organization password policy blocked the operation.
type Result struct {
	Kind           api.Kind
	OrganizationID string
	Violations     []policy.Violation
	Err            error
}

func okResult(orgID string) Result { return Result{Kind: api.KindOK, OrganizationID: orgID} }

func failResult(kind api.Kind, err error) Result { return Result{Kind: kind, Err: err} }

type Config struct {
	Policy *policy.PasswordPolicy
	Audit  *audit.Log
	Logger *slog.Logger
}

type Engine struct {
	client api.Client
	keys   *keystore.KeyStore
	cache  *vault.Cache
	policy *policy.PasswordPolicy
	audit  *audit.Log
	log    *slog.Logger

	// share and rotate operations never overlap.
	mu      sync.Mutex
	invites map[string][]*Invitation
}

func New(client api.Client, keys *keystore.KeyStore, cache *vault.Cache, cfg Config) *Engine {
	if cfg.Audit == nil {
		cfg.Audit = audit.New()
	}
	return &Engine{
		client: client,
		keys:   keys,
		cache:  cache,
		policy: cfg.Policy,
		audit:  cfg.Audit,
		log:    logging.For(cfg.Logger, "sharing"),
	}
}

// ShareFolder converts a personal folder into an organization: fresh org
// key, per-recipient wraps, group expansion, concurrent item re-encryption,
// one atomic submission. There is no rollback; if submission fails the
// re-encrypted copies are discarded and the personal items stand.
func (e *Engine) ShareFolder(ctx context.Context, folderID, folderName string, members []Member, groups []Group) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	vaultKey, err := e.keys.VaultKey()
	if err != nil {
		return failResult(api.KindUnauthorized, err)
	}

	items := e.cache.ListFolder(folderID)
	if len(items) == 0 {
		return failResult(api.KindBadData, ErrEmptyFolder)
	}
	for _, item := range items {
		if item.OrganizationID != "" {
			return failResult(api.KindBadData, vault.ErrOrgOwned)
		}
	}

	if r, blocked := e.policyGate(items, vaultKey); blocked {
		return r
	}

	orgKey, err := crypto.GenerateSymmetricKey()
	if err != nil {
		return failResult(api.KindBadData, err)
	}

	selfWrap, err := e.wrapForSelf(orgKey)
	if err != nil {
		orgKey.Wipe()
		return failResult(api.KindBadData, err)
	}

	wireMembers, r := e.wrapForMembers(ctx, orgKey, members)
	if r.Kind != api.KindOK {
		orgKey.Wipe()
		return r
	}
	wireGroups, r := e.expandGroups(ctx, orgKey, groups)
	if r.Kind != api.KindOK {
		orgKey.Wipe()
		return r
	}

	reencrypted, err := reencryptAll(ctx, items, vaultKey, orgKey)
	if err != nil {
		orgKey.Wipe()
		return failResult(api.KindBadData, err)
	}

	encName, err := crypto.EncryptSymmetric([]byte(folderName), orgKey)
	if err != nil {
		orgKey.Wipe()
		return failResult(api.KindBadData, err)
	}

	resp := e.client.ShareFolder(ctx, api.ShareFolderRequest{
		FolderID:   folderID,
		FolderName: encName.String(),
		SelfKey:    selfWrap.String(),
		Members:    wireMembers,
		Groups:     wireGroups,
		Ciphers:    toBundles(reencrypted),
	})
	if resp.Kind != api.KindOK {
		orgKey.Wipe()
		return Result{Kind: resp.Kind, Err: resp.Err}
	}

	orgID := resp.Data.OrganizationID
	e.keys.SetOrgKey(orgID, orgKey)
	if err := e.keys.SaveWrappedOrgKey(orgID, selfWrap); err != nil {
		return failResult(api.KindBadData, err)
	}
	for _, item := range reencrypted {
		item.OrganizationID = orgID
		e.cache.Put(item)
	}
	for _, m := range wireMembers {
		if m.Key == nil {
			e.recordInvitation(orgID, m.Email, m.Role)
		}
	}
	e.cache.Invalidate()
	e.audit.Append(audit.EventShared)
	e.log.Info("folder shared", "folder", folderID, "org", orgID, "items", len(reencrypted))
	return okResult(orgID)
}

// ShareFolderAddMember grants an additional member access using the
// existing organization key.
func (e *Engine) ShareFolderAddMember(ctx context.Context, orgID string, member Member) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	orgKey, err := e.keys.OrgKey(orgID)
	if err != nil {
		return failResult(api.KindUnauthorized, err)
	}
	wireMembers, r := e.wrapForMembers(ctx, orgKey, []Member{member})
	if r.Kind != api.KindOK {
		return r
	}
	resp := e.client.UpdateShareMembers(ctx, api.ShareMemberRequest{
		OrganizationID: orgID,
		Members:        wireMembers,
	})
	if resp.Kind != api.KindOK {
		return Result{Kind: resp.Kind, Err: resp.Err}
	}
	for _, m := range wireMembers {
		if m.Key == nil {
			e.recordInvitation(orgID, m.Email, m.Role)
		} else {
			// A real key delivered for a previously invited email means
			// the pending grant completed.
			_ = e.settleInvitation(orgID, m.Email, InviteAccepted)
		}
	}
	e.log.Info("member added", "org", orgID)
	return okResult(orgID)
}

// ShareFolderRemoveMember revokes a member. The organization key is NOT
// rotated and the items are not re-encrypted; see RotateOrganizationKey.
func (e *Engine) ShareFolderRemoveMember(ctx context.Context, orgID, email string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.keys.OrgKey(orgID); err != nil {
		return failResult(api.KindUnauthorized, err)
	}
	resp := e.client.UpdateShareMembers(ctx, api.ShareMemberRequest{
		OrganizationID: orgID,
		Members:        []api.ShareMember{{Email: email, Role: "revoked", Key: nil}},
	})
	if resp.Kind != api.KindOK {
		return Result{Kind: resp.Kind, Err: resp.Err}
	}
	_ = e.settleInvitation(orgID, email, InviteRevoked)
	e.log.Info("member removed", "org", orgID)
	return okResult(orgID)
}

// ShareFolderRemoveItem pulls one item out of the organization: it is
// re-encrypted back under the personal vault key and removed server-side.
// The organization key is not rotated.
func (e *Engine) ShareFolderRemoveItem(ctx context.Context, orgID, itemID string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	vaultKey, err := e.keys.VaultKey()
	if err != nil {
		return failResult(api.KindUnauthorized, err)
	}
	orgKey, err := e.keys.OrgKey(orgID)
	if err != nil {
		return failResult(api.KindUnauthorized, err)
	}
	item, ok := e.cache.Get(itemID)
	if !ok || item.OrganizationID != orgID {
		return failResult(api.KindNotFound, errors.New("sharing: item not in organization"))
	}

	restored, err := vault.ReencryptItem(item, orgKey, vaultKey)
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	restored.OrganizationID = ""

	resp := e.client.RemoveShareItem(ctx, api.RemoveShareItemRequest{
		OrganizationID: orgID,
		Cipher:         toBundles([]vault.CipherItem{restored})[0],
	})
	if resp.Kind != api.KindOK {
		return Result{Kind: resp.Kind, Err: resp.Err}
	}
	e.cache.Put(restored)
	e.log.Info("item unshared", "org", orgID, "item", itemID)
	return okResult(orgID)
}

// StopShareFolder dissolves the organization: items are re-encrypted back
// under the personal vault key and the organization's cache entries and key
// are dropped.
func (e *Engine) StopShareFolder(ctx context.Context, orgID, folderName string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	vaultKey, err := e.keys.VaultKey()
	if err != nil {
		return failResult(api.KindUnauthorized, err)
	}
	orgKey, err := e.keys.OrgKey(orgID)
	if err != nil {
		return failResult(api.KindUnauthorized, err)
	}
	items := e.cache.ListOrganization(orgID)

	restored, err := reencryptAll(ctx, items, orgKey, vaultKey)
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	encName, err := crypto.EncryptSymmetric([]byte(folderName), vaultKey)
	if err != nil {
		return failResult(api.KindBadData, err)
	}

	resp := e.client.StopShare(ctx, api.StopShareRequest{
		OrganizationID: orgID,
		FolderName:     encName.String(),
		Ciphers:        toBundles(restored),
	})
	if resp.Kind != api.KindOK {
		return Result{Kind: resp.Kind, Err: resp.Err}
	}

	e.cache.EvictOrganization(orgID)
	for _, item := range restored {
		item.OrganizationID = ""
		e.cache.Put(item)
	}
	e.keys.RemoveOrgKey(orgID)
	for _, inv := range e.invites[orgID] {
		if inv.Status == InvitePending {
			inv.Status = InviteRevoked
		}
	}
	e.audit.Append(audit.EventShareStop)
	e.log.Info("share stopped", "org", orgID, "items", len(restored))
	return okResult(orgID)
}

// RotateOrganizationKey replaces an organization key and re-wraps it for
// the given members. Revocation paths do not call this; it exists as the
// hook for a future forward-secrecy pass.
func (e *Engine) RotateOrganizationKey(ctx context.Context, orgID string, members []Member) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	oldKey, err := e.keys.OrgKey(orgID)
	if err != nil {
		return failResult(api.KindUnauthorized, err)
	}
	newKey, err := crypto.GenerateSymmetricKey()
	if err != nil {
		return failResult(api.KindBadData, err)
	}
	selfWrap, err := e.wrapForSelf(newKey)
	if err != nil {
		newKey.Wipe()
		return failResult(api.KindBadData, err)
	}
	wireMembers, r := e.wrapForMembers(ctx, newKey, members)
	if r.Kind != api.KindOK {
		newKey.Wipe()
		return r
	}

	items := e.cache.ListOrganization(orgID)
	reencrypted, err := reencryptAll(ctx, items, oldKey, newKey)
	if err != nil {
		newKey.Wipe()
		return failResult(api.KindBadData, err)
	}

	resp := e.client.UpdateShareMembers(ctx, api.ShareMemberRequest{
		OrganizationID: orgID,
		Members:        wireMembers,
	})
	if resp.Kind != api.KindOK {
		newKey.Wipe()
		return Result{Kind: resp.Kind, Err: resp.Err}
	}

	e.keys.SetOrgKey(orgID, newKey)
	if err := e.keys.SaveWrappedOrgKey(orgID, selfWrap); err != nil {
		return failResult(api.KindBadData, err)
	}
	for _, item := range reencrypted {
		e.cache.Put(item)
	}
	e.log.Info("organization key rotated", "org", orgID)
	return okResult(orgID)
}

// policyGate decrypts the password field of every login item and checks it
// against the organization policy. All violations are reported at once.
func (e *Engine) policyGate(items []vault.CipherItem, key *crypto.SymmetricKey) (Result, bool) {
	if e.policy == nil {
		return Result{}, false
	}
	var violations []policy.Violation
	for _, item := range items {
		if item.Type != vault.TypeLogin {
			continue
		}
		enc, ok := item.Fields["password"]
		if !ok {
			continue
		}
		pt, err := crypto.DecryptSymmetric(enc, key)
		if err != nil {
			return failResult(api.KindBadData, err), true
		}
		violations = append(violations, e.policy.Evaluate(string(pt))...)
		crypto.Zero(pt)
	}
	if len(violations) > 0 {
		return Result{Kind: api.KindBadData, Violations: violations, Err: ErrPolicyDenied}, true
	}
	return Result{}, false
}

func (e *Engine) wrapForSelf(orgKey *crypto.SymmetricKey) (crypto.EncString, error) {
	pub, err := crypto.ParsePublicKey(e.keys.PublicKey())
	if err != nil {
		return crypto.EncString{}, err
	}
	return crypto.EncryptRSA(orgKey.Key, pub)
}

// wrapForMembers wraps the organization key for each recipient. A member
// without a registered account gets a nil key; the server holds their
// invitation until registration.
func (e *Engine) wrapForMembers(ctx context.Context, orgKey *crypto.SymmetricKey, members []Member) ([]api.ShareMember, Result) {
	out := make([]api.ShareMember, 0, len(members))
	for _, m := range members {
		wire := api.ShareMember{Email: m.Email, Role: m.Role, HidePasswords: m.HidePasswords}
		resp := e.client.PublicKey(ctx, m.Email)
		switch resp.Kind {
		case api.KindOK:
			pub, err := crypto.ParsePublicKey(resp.Data.PublicKey)
			if err != nil {
				return nil, failResult(api.KindBadData, err)
			}
			wrapped, err := crypto.EncryptRSA(orgKey.Key, pub)
			if err != nil {
				return nil, failResult(api.KindBadData, err)
			}
			s := wrapped.String()
			wire.Key = &s
		case api.KindNotFound:
			wire.Key = nil
		default:
			return nil, Result{Kind: resp.Kind, Err: resp.Err}
		}
		out = append(out, wire)
	}
	return out, okResult("")
}

// expandGroups resolves each group to its concrete member list and wraps
// the organization key for every resolved member.
func (e *Engine) expandGroups(ctx context.Context, orgKey *crypto.SymmetricKey, groups []Group) ([]api.ShareGroup, Result) {
	out := make([]api.ShareGroup, 0, len(groups))
	for _, g := range groups {
		members, r := e.ExpandGroupToMembers(ctx, g.ID)
		if r.Kind != api.KindOK {
			return nil, r
		}
		wireMembers, r := e.wrapForMembers(ctx, orgKey, members)
		if r.Kind != api.KindOK {
			return nil, r
		}
		for i := range wireMembers {
			wireMembers[i].Role = g.Role
		}
		out = append(out, api.ShareGroup{ID: g.ID, Role: g.Role, Members: wireMembers})
	}
	return out, okResult("")
}

// ExpandGroupToMembers fetches the concrete membership of a group from the
// server. Kept as an explicit, named step rather than an inline fetch.
func (e *Engine) ExpandGroupToMembers(ctx context.Context, groupID string) ([]Member, Result) {
	resp := e.client.GroupMembers(ctx, groupID)
	if resp.Kind != api.KindOK {
		return nil, Result{Kind: resp.Kind, Err: resp.Err}
	}
	members := make([]Member, 0, len(resp.Data.Members))
	for _, m := range resp.Data.Members {
		members = append(members, Member{Email: m.Email})
	}
	return members, okResult("")
}

// reencryptAll re-wraps every item under newKey concurrently. One failure
// aborts the whole batch.
func reencryptAll(ctx context.Context, items []vault.CipherItem, oldKey, newKey *crypto.SymmetricKey) ([]vault.CipherItem, error) {
	out := make([]vault.CipherItem, len(items))
	g, _ := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			re, err := vault.ReencryptItem(item, oldKey, newKey)
			if err != nil {
				return err
			}
			out[i] = re
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func toBundles(items []vault.CipherItem) []api.CipherBundle {
	bundles := make([]api.CipherBundle, 0, len(items))
	for _, item := range items {
		b := api.CipherBundle{
			ID:     item.ID,
			Type:   string(item.Type),
			Name:   item.Name.String(),
			Fields: make(map[string]string, len(item.Fields)),
		}
		for k, v := range item.Fields {
			b.Fields[k] = v.String()
		}
		bundles = append(bundles, b)
	}
	return bundles
}
