// internal/app/policy/entitypolicy/entitypolicy.go
package entitypolicy

import (
	"github.com/msajedian/topedu/internal/domain/models"
)

// CanView reports whether a tier can read the entity detail. Any tier
// can; only outsiders are turned away.
func CanView(role models.Role) bool {
	return role != models.RoleNone
}

// CanUpdate reports whether a tier can edit the entity's name and
// description. Admins and instructors can.
func CanUpdate(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleInstructor
}

// CanInvite reports whether a tier can send invitations. Admins and
// instructors can.
func CanInvite(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleInstructor
}

// CanCreateCourse reports whether a tier in an institution can create
// courses under it. Admins and instructors can.
func CanCreateCourse(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleInstructor
}

// CanDelete reports whether a tier can delete the entity. Only admins
// can.
func CanDelete(role models.Role) bool {
	return role == models.RoleAdmin
}
