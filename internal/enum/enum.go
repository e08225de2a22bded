package enum

// ── Roles (CHECK constrained in DB, strict hierarchy) ──

const (
	RoleRegularUser   = "regular_user"
	RoleAdministrator = "administrator"
	RoleSuperAdmin    = "super_admin"
)

// ── Record status (CHECK constrained in DB) ──

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ── Sales entry lifecycle ──

// Submitted is the only status normal flow produces; amendments
// do not change it.
const (
	EntryStatusSubmitted = "submitted"
)

// ── Tracker projection status (derived, never stored) ──

const (
	TrackerSubmitted    = "submitted"
	TrackerNotSubmitted = "not_submitted"
)
