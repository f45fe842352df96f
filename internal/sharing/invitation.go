package sharing

import "fmt"

// InvitationStatus is the lifecycle of a pending share grant. The only
// legal transitions are Pending to Accepted, Rejected or Revoked; a
// settled invitation never moves again.
type InvitationStatus int

const (
	InvitePending InvitationStatus = iota
	InviteAccepted
	InviteRejected
	InviteRevoked
)

func (s InvitationStatus) String() string {
	switch s {
	case InvitePending:
		return "pending"
	case InviteAccepted:
		return "accepted"
	case InviteRejected:
		return "rejected"
	case InviteRevoked:
		return "revoked"
	default:
		return fmt.Sprintf("invitation(%d)", int(s))
	}
}

// Invitation records a share grant to a member who had no registered
// public key at share time. The server holds the wrapped-key delivery
// until the member registers; this record mirrors that state locally.
type Invitation struct {
	OrganizationID string
	Email          string
	Role           string
	Status         InvitationStatus
}

func (i *Invitation) settle(to InvitationStatus) error {
	if i.Status != InvitePending {
		return fmt.Errorf("sharing: invitation for %s already %s", i.Email, i.Status)
	}
	if to == InvitePending {
		return fmt.Errorf("sharing: invitation cannot return to pending")
	}
	i.Status = to
	return nil
}

// Invitations returns the recorded invitations for an organization.
func (e *Engine) Invitations(orgID string) []Invitation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Invitation, 0, len(e.invites[orgID]))
	for _, inv := range e.invites[orgID] {
		out = append(out, *inv)
	}
	return out
}

// AcceptInvitation marks a pending invitation accepted, typically after a
// sync reports the member registered and took delivery of the wrapped key.
func (e *Engine) AcceptInvitation(orgID, email string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settleInvitation(orgID, email, InviteAccepted)
}

// RejectInvitation marks a pending invitation rejected by the recipient.
func (e *Engine) RejectInvitation(orgID, email string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settleInvitation(orgID, email, InviteRejected)
}

// recordInvitation is called with the engine lock held.
func (e *Engine) recordInvitation(orgID, email, role string) {
	if e.invites == nil {
		e.invites = make(map[string][]*Invitation)
	}
	e.invites[orgID] = append(e.invites[orgID], &Invitation{
		OrganizationID: orgID,
		Email:          email,
		Role:           role,
		Status:         InvitePending,
	})
}

// settleInvitation is called with the engine lock held.
func (e *Engine) settleInvitation(orgID, email string, to InvitationStatus) error {
	for _, inv := range e.invites[orgID] {
		if inv.Email == email && inv.Status == InvitePending {
			return inv.settle(to)
		}
	}
	return fmt.Errorf("sharing: no pending invitation for %s in %s", email, orgID)
}
