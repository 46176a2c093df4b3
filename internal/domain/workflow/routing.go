package workflow

import "github.com/arslant84/syntra.production-sub009/internal/domain/entity"

// Route is one row of the routing table: the approval stage a request sits in,
// the role and capability required to act on it, and where approval leads.
// Reject and Cancel always lead to their absorbing statuses, so only the
// approve target is carried per row.
type Route struct {
	Status        string
	StepRole      string
	StepName      string
	Capability    string
	NextOnApprove string
}

// AdminOverrideCapability lets its holder act on any step regardless of the
// step's required role.
const AdminOverrideCapability = "workflow_admin"

// Canonical step roles. The original data had inconsistent spellings
// ("Line Manager" vs "Line Manager/HOD"); the table below is authoritative.
const (
	RoleDepartmentFocal = "Department Focal"
	RoleLineManager     = "Line Manager/HOD"
	RoleClerk           = "Clerk/Approver"
	RoleVisaClerk       = "Visa Clerk"
)

// routingTable maps each request type to its ordered approval chain. Adding a
// request type means adding a row set here, not new control flow.
var routingTable = map[entity.RequestType][]Route{
	entity.TypeTransport: {
		{StatusPendingFocal, RoleDepartmentFocal, "Department Focal Review", "approve_transport_focal", StatusPendingLineManager},
		{StatusPendingLineManager, RoleLineManager, "Line Manager/HOD Review", "approve_transport_manager", StatusPendingClerk},
		{StatusPendingClerk, RoleClerk, "Transport Clerk Processing", "approve_transport_clerk", StatusApproved},
	},
	entity.TypeAccommodation: {
		{StatusPendingFocal, RoleDepartmentFocal, "Department Focal Review", "approve_accommodation_focal", StatusPendingLineManager},
		{StatusPendingLineManager, RoleLineManager, "Line Manager/HOD Review", "approve_accommodation_manager", StatusPendingClerk},
		{StatusPendingClerk, RoleClerk, "Accommodation Clerk Processing", "approve_accommodation_clerk", StatusApproved},
	},
	entity.TypeVisa: {
		{StatusPendingFocal, RoleDepartmentFocal, "Department Focal Review", "approve_visa_focal", StatusPendingLineManager},
		{StatusPendingLineManager, RoleLineManager, "Line Manager/HOD Review", "approve_visa_manager", StatusPendingVisaClerk},
		{StatusPendingVisaClerk, RoleVisaClerk, "Visa Clerk Processing", "approve_visa_clerk", StatusProcessingEmbassy},
		{StatusProcessingEmbassy, RoleVisaClerk, "Embassy Processing", "approve_visa_embassy", StatusApproved},
	},
	entity.TypeClaim: {
		{StatusPendingFocal, RoleDepartmentFocal, "Department Focal Review", "approve_trf_focal", StatusPendingLineManager},
		{StatusPendingLineManager, RoleLineManager, "Line Manager/HOD Review", "approve_trf_manager", StatusPendingClerk},
		{StatusPendingClerk, RoleClerk, "Claim Clerk Processing", "approve_trf_clerk", StatusApproved},
	},
}

// RouteFor returns the routing entry for a request type at the given status.
// The second return is false when the status is terminal, Draft, or unknown
// for that type.
func RouteFor(t entity.RequestType, status string) (Route, bool) {
	for _, r := range routingTable[t] {
		if r.Status == status {
			return r, true
		}
	}
	return Route{}, false
}

// FirstRoute returns the entry stage a freshly submitted request enters.
func FirstRoute(t entity.RequestType) (Route, bool) {
	routes := routingTable[t]
	if len(routes) == 0 {
		return Route{}, false
	}
	return routes[0], true
}

// Chain returns the full ordered route set for a request type.
func Chain(t entity.RequestType) []Route {
	routes := routingTable[t]
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}
