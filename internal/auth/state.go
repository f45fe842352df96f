package auth

// State tracks where a session sits in the login lifecycle. Transitions are
// driven only by the Authenticator; callers observe the state, they never
// set it.
type State int

const (
	StateLoggedOut State = iota
	StateAuthenticating
	StateAwaitingMethodSelection
	StateAwaitingSecondFactor
	StateUnlocked
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged-out"
	case StateAuthenticating:
		return "authenticating"
	case StateAwaitingMethodSelection:
		return "awaiting-method-selection"
	case StateAwaitingSecondFactor:
		return "awaiting-second-factor"
	case StateUnlocked:
		return "unlocked"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}
