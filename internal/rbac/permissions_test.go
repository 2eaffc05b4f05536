package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedExactGrant(t *testing.T) {
	assert.True(t, Allowed(RoleAccountant, CapBillingManage))
	assert.True(t, Allowed(RoleReceptionist, CapBillingManage))
	assert.True(t, Allowed(RoleNurse, CapVitalsRecord))
	assert.False(t, Allowed(RoleNurse, CapBillingManage))
	assert.False(t, Allowed(RoleLabTech, CapBillingManage))
}

func TestAllowedResourceWildcard(t *testing.T) {
	// Receptionist holds appointments.*
	assert.True(t, Allowed(RoleReceptionist, CapAppointmentsManage))
	assert.True(t, Allowed(RoleReceptionist, "appointments.cancel"))
	assert.True(t, Allowed(RoleReceptionist, "appointments.anything"))

	// But a wildcard on one resource never leaks to another
	assert.False(t, Allowed(RoleReceptionist, "inventory.anything"))
	assert.False(t, Allowed(RoleReceptionist, CapTeamManage))
}

func TestSuperAdminGlobalWildcard(t *testing.T) {
	caps := []string{
		CapBillingManage,
		CapVisitsComplete,
		CapTeamManage,
		"anything.at_all",
	}
	for _, c := range caps {
		assert.True(t, Allowed(RoleSuperAdmin, c), c)
	}
}

func TestUnknownRoleDenies(t *testing.T) {
	assert.False(t, Allowed(Role(""), CapPatientsView))
	assert.False(t, Allowed(Role("intern"), CapPatientsView))
}

func TestMalformedCapabilityDenies(t *testing.T) {
	assert.False(t, Allowed(RoleAdmin, "billing"))
	assert.False(t, Allowed(RoleAdmin, ""))
	assert.False(t, Allowed(RoleAdmin, ".manage"))
	// Even the super admin wildcard cannot authorize an unparseable string
	assert.False(t, Allowed(RoleSuperAdmin, "billing"))
}

func TestAllowedIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.True(t, Allowed(RoleDoctor, CapConsultationManage))
		assert.False(t, Allowed(RoleDoctor, CapBillingManage))
	}
}

func TestVisitsCompleteGrants(t *testing.T) {
	// visits.complete is carried by accountant, admin (visits.*), doctor
	// (visits.*) and super admin; clinical support staff do not complete
	// visits.
	assert.True(t, Allowed(RoleAccountant, CapVisitsComplete))
	assert.True(t, Allowed(RoleAdmin, CapVisitsComplete))
	assert.True(t, Allowed(RoleDoctor, CapVisitsComplete))
	assert.False(t, Allowed(RoleNurse, CapVisitsComplete))
	assert.False(t, Allowed(RoleLabTech, CapVisitsComplete))
	assert.False(t, Allowed(RolePharmacist, CapVisitsComplete))
}

func TestLabelAllowed(t *testing.T) {
	assert.True(t, LabelAllowed("Accountant", CapBillingManage))
	assert.True(t, LabelAllowed("Lab Tech", CapLabManage))
	assert.False(t, LabelAllowed("visitor", CapPatientsView))
}

func TestGrantsCopies(t *testing.T) {
	g := Grants(RoleNurse)
	assert.NotEmpty(t, g)
	g[0] = "tampered.grant"
	assert.NotContains(t, Grants(RoleNurse), "tampered.grant")

	assert.Nil(t, Grants(Role("unknown")))
}
