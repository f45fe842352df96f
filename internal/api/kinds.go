// Package api is the transport boundary of the client core. Every call
// returns a tagged Response whose Kind is the sole dispatch discriminator;
// callers never inspect HTTP status codes or error strings.
package api

// Kind enumerates every outcome an operation can surface to the UI layer.
type Kind string

const (
	KindOK           Kind = "ok"
	KindBadData      Kind = "bad-data"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not-found"
	KindTimeout      Kind = "timeout"
	KindServer       Kind = "server"
	KindNetworkError Kind = "network-error"
	KindCannotConn   Kind = "cannot-connect"

	// Policy-imposed outcomes mapped from the server's numeric error codes.
	KindRateLimited          Kind = "rate-limited"           // code 1008
	KindEnterpriseLock       Kind = "enterprise-lock"        // code 1009
	KindEnterpriseSystemLock Kind = "enterprise-system-lock" // code 1010

	// Not an error: the login state machine pauses for a second factor.
	KindOnPremise2FA Kind = "on-premise-2fa"
)

// Transient reports whether the caller may retry without changing anything.
func (k Kind) Transient() bool {
	switch k {
	case KindTimeout, KindNetworkError, KindCannotConn:
		return true
	}
	return false
}

// Response is the tagged variant returned by every transport call. Data is
// set only when Kind is KindOK (or KindOnPremise2FA for login, where the
// 2FA continuation payload rides along).
type Response[T any] struct {
	Kind Kind
	Data *T

	// WaitSeconds accompanies KindRateLimited.
	WaitSeconds int

	// Err is the underlying cause, carried for logging; callers branch on
	// Kind, never on Err.
	Err error
}

func ok[T any](data *T) Response[T] { return Response[T]{Kind: KindOK, Data: data} }

func fail[T any](kind Kind, err error) Response[T] { return Response[T]{Kind: kind, Err: err} }
