package api

// Wire DTOs. Field names follow the server's snake_case JSON.

type PreloginRequest struct {
	Email string `json:"email"`
}

type PreloginData struct {
	KDFType       int `json:"kdf"`
	KDFIterations int `json:"kdf_iterations"`
}

type DeviceInfo struct {
	DeviceID   string `json:"device_identifier"`
	DeviceName string `json:"device_name"`
	DeviceType string `json:"device_type"`
}

type RegisterRequest struct {
	Email              string `json:"email"`
	MasterPasswordHash string `json:"master_password_hash"`
	KDFType            int    `json:"kdf"`
	KDFIterations      int    `json:"kdf_iterations"`
	WrappedVaultKey    string `json:"key"`
	PublicKey          string `json:"public_key"`
	WrappedPrivateKey  string `json:"private_key"`
}

type ChangePasswordRequest struct {
	MasterPasswordHash    string `json:"master_password_hash"`
	NewMasterPasswordHash string `json:"new_master_password_hash"`
	WrappedVaultKey       string `json:"key"`
}

type LoginRequest struct {
	Email              string     `json:"email"`
	MasterPasswordHash string     `json:"password"`
	Device             DeviceInfo `json:"device"`

	// Second-factor continuation fields, empty on the first attempt.
	Method         string `json:"method,omitempty"`
	OTP            string `json:"otp,omitempty"`
	RememberDevice bool   `json:"save_device,omitempty"`
}

type LoginData struct {
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token"`
	WrappedVaultKey   string `json:"key"`
	WrappedPrivateKey string `json:"private_key"`

	// Populated when Kind is KindOnPremise2FA.
	Methods []string `json:"methods,omitempty"`
}

type RefreshData struct {
	AccessToken string `json:"access_token"`
}

type PublicKeyData struct {
	PublicKey string `json:"public_key"`
}

type GroupMember struct {
	Email     string `json:"email"`
	PublicKey string `json:"public_key"`
}

type GroupMembersData struct {
	Members []GroupMember `json:"members"`
}

// ShareMember is one per-member grant inside a share submission. Key is nil
// for an unregistered email: the server keeps the invitation pending until
// the recipient registers and a key can be wrapped for them.
type ShareMember struct {
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	Key           *string `json:"key"`
	HidePasswords bool    `json:"hide_passwords,omitempty"`
}

type ShareGroup struct {
	ID      string        `json:"id"`
	Role    string        `json:"role"`
	Members []ShareMember `json:"members"`
}

type CipherBundle struct {
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	Name   string            `json:"name"`
	Fields map[string]string `json:"fields"`
}

// SyncCipher is one vault entry as served by the sync endpoint; all value
// fields are EncString ciphertext.
type SyncCipher struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	FolderID       string            `json:"folder_id"`
	OrganizationID string            `json:"organization_id"`
	Name           string            `json:"name"`
	Fields         map[string]string `json:"fields"`
}

type SyncData struct {
	Ciphers []SyncCipher `json:"ciphers"`
}

type ShareFolderRequest struct {
	FolderID   string         `json:"folder_id"`
	FolderName string         `json:"folder_name"` // ciphertext
	SelfKey    string         `json:"key"`         // org key wrapped for self
	Members    []ShareMember  `json:"members"`
	Groups     []ShareGroup   `json:"groups"`
	Ciphers    []CipherBundle `json:"ciphers"`
}

type ShareFolderData struct {
	OrganizationID string `json:"organization_id"`
}

type ShareMemberRequest struct {
	OrganizationID string        `json:"organization_id"`
	Members        []ShareMember `json:"members"`
	Groups         []ShareGroup  `json:"groups"`
}

type StopShareRequest struct {
	OrganizationID string         `json:"organization_id"`
	FolderName     string         `json:"folder_name"`
	Ciphers        []CipherBundle `json:"ciphers"`
}

// RemoveShareItemRequest pulls one item out of an organization; Cipher is
// the item already re-encrypted back under the owner's personal key.
type RemoveShareItemRequest struct {
	OrganizationID string       `json:"organization_id"`
	Cipher         CipherBundle `json:"cipher"`
}

type EmptyData struct{}

type TakeoverData struct {
	KeyEncrypted  string `json:"key_encrypted"`
	KDFType       int    `json:"kdf"`
	KDFIterations int    `json:"kdf_iterations"`
}

type TakeoverPasswordRequest struct {
	WrappedVaultKey    string `json:"key"`
	MasterPasswordHash string `json:"new_master_password_hash"`
	MasterPasswordItem string `json:"master_password_cipher,omitempty"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ServerError is the error body shape shared by all endpoints.
type ServerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Wait    int    `json:"wait"`
}
