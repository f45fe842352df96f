package api

import "context"

// Client is the transport collaborator consumed by the auth, sharing and
// emergency-access engines. Implementations must map every failure into a
// Kind; no raw transport errors cross this boundary.
type Client interface {
	Prelogin(ctx context.Context, req PreloginRequest) Response[PreloginData]
	Register(ctx context.Context, req RegisterRequest) Response[EmptyData]
	Login(ctx context.Context, req LoginRequest) Response[LoginData]
	ChangePassword(ctx context.Context, req ChangePasswordRequest) Response[EmptyData]
	RefreshToken(ctx context.Context, refreshToken string) Response[RefreshData]
	Revoke(ctx context.Context) Response[EmptyData]

	Sync(ctx context.Context) Response[SyncData]

	PublicKey(ctx context.Context, email string) Response[PublicKeyData]
	GroupMembers(ctx context.Context, groupID string) Response[GroupMembersData]

	ShareFolder(ctx context.Context, req ShareFolderRequest) Response[ShareFolderData]
	UpdateShareMembers(ctx context.Context, req ShareMemberRequest) Response[EmptyData]
	StopShare(ctx context.Context, req StopShareRequest) Response[EmptyData]
	RemoveShareItem(ctx context.Context, req RemoveShareItemRequest) Response[EmptyData]

	Takeover(ctx context.Context, contactID string) Response[TakeoverData]
	TakeoverPassword(ctx context.Context, contactID string, req TakeoverPasswordRequest) Response[EmptyData]
	ResetLockerPassword(ctx context.Context, contactID string, req ResetPasswordRequest) Response[EmptyData]

	// SetAccessToken installs the bearer token used by authenticated calls.
	SetAccessToken(token string)
}
