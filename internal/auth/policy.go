package auth

import "github.com/taskstack/todo-service/internal/model"

// Policy functions. All of them are pure: they consume an explicit
// Identity and decide, with no side effects and no store access. An
// anonymous identity denies every check; there is no guest permission
// for any gated operation.

// IsAdmin reports whether the identity carries the ADMIN role.
func IsAdmin(id Identity) bool {
	return id.HasRole(model.RoleAdmin)
}

// IsOwner reports whether the identity belongs to the given user.
func IsOwner(id Identity, userID uint64) bool {
	return id.IsAuthenticated() && id.UserID() == userID
}

// IsAdminOrOwner allows admins and the resource owner.
func IsAdminOrOwner(id Identity, userID uint64) bool {
	return IsAdmin(id) || IsOwner(id, userID)
}

// CanUpdateUser decides profile updates: admins may change anything
// for anyone; an owner may update their own profile as long as the
// request does not touch the role set. A roles field present in the
// request counts as touching it even when the value matches the
// current roles.
func CanUpdateUser(id Identity, userID uint64, touchesRoles bool) bool {
	if IsAdmin(id) {
		return true
	}
	return IsOwner(id, userID) && !touchesRoles
}
