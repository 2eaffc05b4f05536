package rbac

import "strings"

// Capability constants used across services. A capability string is
// "<resource>.<action>"; a grant ending in ".*" covers every action under
// that resource.
const (
	CapabilityAll = "super_admin.*"

	CapPatientsView   = "patients.view"
	CapPatientsManage = "patients.manage"
	CapPatientsDelete = "patients.delete"

	CapVisitsView     = "visits.view"
	CapVisitsManage   = "visits.manage"
	CapVisitsComplete = "visits.complete"

	CapVitalsRecord = "vitals.record"

	CapConsultationManage = "consultation.manage"

	CapLabManage = "lab.manage"

	CapBillingManage = "billing.manage"

	CapPharmacyDispense = "pharmacy.dispense"

	CapInventoryView   = "inventory.view"
	CapInventoryManage = "inventory.manage"

	CapAppointmentsView   = "appointments.view"
	CapAppointmentsManage = "appointments.manage"

	CapReportsView = "reports.view"

	CapTeamManage = "team.manage"
)

// matrix maps each canonical role to its grant set
var matrix = map[Role][]string{
	RoleSuperAdmin: {CapabilityAll},
	RoleAdmin: {
		"patients.*",
		"visits.*",
		"vitals.*",
		"consultation.*",
		"lab.*",
		"billing.*",
		"pharmacy.*",
		"inventory.*",
		"appointments.*",
		"reports.*",
		"team.*",
	},
	RoleDoctor: {
		CapPatientsView,
		CapPatientsManage,
		"visits.*",
		CapConsultationManage,
		CapLabManage,
		CapAppointmentsView,
		CapReportsView,
	},
	RoleNurse: {
		CapPatientsView,
		CapPatientsManage,
		CapVisitsView,
		CapVisitsManage,
		CapVitalsRecord,
		CapAppointmentsView,
	},
	RoleReceptionist: {
		CapPatientsView,
		CapPatientsManage,
		CapVisitsView,
		CapVisitsManage,
		CapBillingManage,
		"appointments.*",
	},
	RoleLabTech: {
		CapPatientsView,
		CapVisitsView,
		CapVisitsManage,
		CapLabManage,
	},
	RolePharmacist: {
		CapPatientsView,
		CapVisitsView,
		CapVisitsManage,
		CapPharmacyDispense,
		"inventory.*",
	},
	RoleAccountant: {
		CapPatientsView,
		CapVisitsView,
		CapVisitsManage,
		CapVisitsComplete,
		CapBillingManage,
		CapReportsView,
	},
}

// Allowed reports whether the role is authorized for the given capability
// string. Resolution order: global wildcard, exact match, resource
// wildcard. Malformed capability strings (no dot) and unknown roles deny.
func Allowed(role Role, capability string) bool {
	grants, ok := matrix[role]
	if !ok {
		return false
	}

	idx := strings.Index(capability, ".")
	if idx <= 0 {
		return false
	}

	resourceWildcard := capability[:idx] + ".*"

	for _, grant := range grants {
		if grant == CapabilityAll {
			return true
		}
	}
	for _, grant := range grants {
		if grant == capability {
			return true
		}
	}
	for _, grant := range grants {
		if grant == resourceWildcard {
			return true
		}
	}
	return false
}

// LabelAllowed resolves a possibly legacy role label and checks the
// capability in one step. Unresolvable labels deny.
func LabelAllowed(label, capability string) bool {
	role, ok := Resolve(label)
	if !ok {
		return false
	}
	return Allowed(role, capability)
}

// Grants returns a copy of the role's grant set, for embedding into tokens
// or UI hints. Unknown roles get an empty set.
func Grants(role Role) []string {
	grants, ok := matrix[role]
	if !ok {
		return nil
	}
	out := make([]string, len(grants))
	copy(out, grants)
	return out
}
