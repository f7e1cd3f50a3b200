package auth

import "errors"

// ErrForbidden is the generic authorization denial. The message never
// reveals what the check was or whether the target resource exists.
var ErrForbidden = errors.New("insufficient permissions")

// Authorize allows the principal if its role meets or exceeds the required
// role. Monotonic over the role order: whatever a Member may do, an Admin
// may do.
func Authorize(principal *Principal, required Role) error {
	if principal == nil || !principal.Role.AtLeast(required) {
		return ErrForbidden
	}
	return nil
}

// Ownership-aware rules below are evaluated by handlers, which know the
// resource's owner; the role gate alone cannot decide them.

// CanModifyProject allows any Member or Admin in the tenant. Projects use a
// collaborative editing model, so ownership does not matter for edits.
func CanModifyProject(principal *Principal) bool {
	return principal != nil && principal.Role.AtLeast(RoleMember)
}

// CanDeleteProject allows Admins unconditionally and the project's owner if
// the owner holds at least Member. A Viewer cannot delete even their own
// project.
func CanDeleteProject(principal *Principal, ownerID string) bool {
	if principal == nil {
		return false
	}
	if principal.Role == RoleAdmin {
		return true
	}
	return principal.UserID == ownerID && principal.Role.AtLeast(RoleMember)
}

// CanModifyUser allows Admins to modify any user in the tenant and users to
// modify themselves. Changing the role field requires Admin even on a
// self-modification.
func CanModifyUser(principal *Principal, targetUserID string, changesRole bool) bool {
	if principal == nil {
		return false
	}
	if principal.Role == RoleAdmin {
		return true
	}
	if changesRole {
		return false
	}
	return principal.UserID == targetUserID
}
