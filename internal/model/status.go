package model

// Tenant status constants. Transitions are driven by billing events, not
// computed by this service.
const (
	StatusTrial     = "trial"
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusExpired   = "expired"
	StatusDeleted   = "deleted"
)

// Invitation status constants.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)
