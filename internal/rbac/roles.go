// Package rbac implements the static role and capability model. Permission
// checks are pure functions over fixed tables; unresolvable roles and
// malformed capability strings always deny.
package rbac

import "strings"

// Role is one of the fixed canonical staff roles
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleReceptionist Role = "receptionist"
	RoleLabTech      Role = "lab_tech"
	RolePharmacist   Role = "pharmacist"
	RoleAccountant   Role = "accountant"
)

// legacyLabels maps role spellings seen in older data to canonical roles.
// Keys are normalized (lower-case, spaces collapsed to underscores) before
// lookup.
var legacyLabels = map[string]Role{
	"super_admin":  RoleSuperAdmin,
	"superadmin":   RoleSuperAdmin,
	"admin":        RoleAdmin,
	"doctor":       RoleDoctor,
	"nurse":        RoleNurse,
	"receptionist": RoleReceptionist,
	"lab_tech":     RoleLabTech,
	"labtech":      RoleLabTech,
	"lab":          RoleLabTech,
	"pharmacist":   RolePharmacist,
	"pharmacy":     RolePharmacist,
	"accountant":   RoleAccountant,
	"accounts":     RoleAccountant,
}

// Resolve maps a user-facing role label to its canonical role. Unknown
// labels fail closed: the second return is false and the caller must treat
// the actor as holding no permissions.
func Resolve(label string) (Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	role, ok := legacyLabels[normalized]
	return role, ok
}

// MustResolveOrDeny resolves a label, returning the zero Role when unknown.
// The zero Role holds no grants, so downstream checks deny.
func MustResolveOrDeny(label string) Role {
	role, ok := Resolve(label)
	if !ok {
		return Role("")
	}
	return role
}
