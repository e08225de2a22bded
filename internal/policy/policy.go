// Package policy is the access control table: a capability maps to the
// minimum role allowed to exercise it. Roles form a strict hierarchy
// (regular_user < administrator < super_admin), so evaluation is a
// single lookup plus a rank comparison. There are no per-resource ACLs
// here; the POS-assignment check lives in the sales entry flow.
package policy

import "github.com/salesledger/api/internal/enum"

type Capability string

const (
	CapSubmit              Capability = "submit"
	CapAmend               Capability = "amend"
	CapViewOthers          Capability = "view-others"
	CapViewReports         Capability = "view-reports"
	CapManageReferenceData Capability = "manage-reference-data"
)

var roleRank = map[string]int{
	enum.RoleRegularUser:   0,
	enum.RoleAdministrator: 1,
	enum.RoleSuperAdmin:    2,
}

var minRole = map[Capability]string{
	CapSubmit:              enum.RoleRegularUser,
	CapViewOthers:          enum.RoleAdministrator,
	CapViewReports:         enum.RoleAdministrator,
	CapAmend:               enum.RoleSuperAdmin,
	CapManageReferenceData: enum.RoleSuperAdmin,
}

// Allowed reports whether role may exercise cap. Unknown roles and
// unknown capabilities are denied.
func Allowed(role string, cap Capability) bool {
	rank, ok := roleRank[role]
	if !ok {
		return false
	}
	min, ok := minRole[cap]
	if !ok {
		return false
	}
	return rank >= roleRank[min]
}

// DataScope restricts read queries to the caller's own records or opens
// them to everyone's.
type DataScope int

const (
	ScopeSelf DataScope = iota
	ScopeAll
)

// ScopeFor returns the data scope a role reads with: the base tier sees
// only its own entries, elevated tiers see all.
func ScopeFor(role string) DataScope {
	if roleRank[role] > roleRank[enum.RoleRegularUser] {
		return ScopeAll
	}
	return ScopeSelf
}
