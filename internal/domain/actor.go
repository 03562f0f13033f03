package domain

import "context"

type Role string

const (
	RoleCompanyAdmin  Role = "CompanyAdmin"
	RoleReviewer      Role = "Reviewer"
	RoleStaff         Role = "Staff"
	RoleStaffReadOnly Role = "StaffReadOnly"
)

// Actor identifies the authenticated caller. Authentication itself is owned
// by the transport layer; workflow code trusts these fields.
type Actor struct {
	UserID    string
	CompanyID string
	Role      Role
}

// AssignmentSet is the capability scope of a restricted user: the sites and
// participants they are explicitly assigned to via join tables.
type AssignmentSet struct {
	SiteIDs        []string
	ParticipantIDs []string
}

func (s AssignmentSet) HasSite(id string) bool {
	for _, v := range s.SiteIDs {
		if v == id {
			return true
		}
	}
	return false
}

func (s AssignmentSet) HasParticipant(id string) bool {
	for _, v := range s.ParticipantIDs {
		if v == id {
			return true
		}
	}
	return false
}

// Capability actions evaluated by the access policy.
type CapabilityAction string

const (
	CapFindingClose        CapabilityAction = "finding:close"
	CapComplianceRunCreate CapabilityAction = "compliance_run:create"
	CapComplianceActClose  CapabilityAction = "compliance_action:close"
	CapReportGenerate      CapabilityAction = "report:generate"
)

// CapabilityInput is the full context for an access decision: who, what,
// and the resource's scope within the tenant.
type CapabilityInput struct {
	Role          Role             `json:"role"`
	Action        CapabilityAction `json:"action"`
	ScopeType     ScopeType        `json:"scope_type,omitempty"`
	ScopeID       string           `json:"scope_id,omitempty"`
	AssigneeID    string           `json:"assignee_id,omitempty"`
	ActorID       string           `json:"actor_id"`
	Assignments   AssignmentSet    `json:"-"`
	AssignedScope []string         `json:"assigned_scope,omitempty"`
}

type CapabilityDecision struct {
	Allow  bool     `json:"allow"`
	Denies []string `json:"denies,omitempty"`
}

// CapabilityChecker decides role-based access decoupled from transport
// routing. Implemented by the embedded rego policy engine.
type CapabilityChecker interface {
	Check(ctx context.Context, input CapabilityInput) (CapabilityDecision, error)
}
