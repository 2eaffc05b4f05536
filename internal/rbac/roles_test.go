package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCanonicalLabels(t *testing.T) {
	cases := map[string]Role{
		"super_admin":  RoleSuperAdmin,
		"SuperAdmin":   RoleSuperAdmin,
		"Admin":        RoleAdmin,
		"doctor":       RoleDoctor,
		"Nurse":        RoleNurse,
		"RECEPTIONIST": RoleReceptionist,
		"Lab Tech":     RoleLabTech,
		"lab-tech":     RoleLabTech,
		"lab_tech":     RoleLabTech,
		"Pharmacist":   RolePharmacist,
		"pharmacy":     RolePharmacist,
		"Accountant":   RoleAccountant,
		" accounts ":   RoleAccountant,
	}
	for label, want := range cases {
		got, ok := Resolve(label)
		assert.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}
}

func TestResolveUnknownFailsClosed(t *testing.T) {
	for _, label := range []string{"", "janitor", "doc tor", "admin2"} {
		_, ok := Resolve(label)
		assert.False(t, ok, label)
	}
}

func TestMustResolveOrDeny(t *testing.T) {
	assert.Equal(t, RoleDoctor, MustResolveOrDeny("Doctor"))

	unknown := MustResolveOrDeny("janitor")
	assert.Equal(t, Role(""), unknown)
	// The zero role must carry no permissions at all
	assert.False(t, Allowed(unknown, CapPatientsView))
	assert.False(t, Allowed(unknown, CapabilityAll))
}
