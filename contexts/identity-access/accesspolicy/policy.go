package accesspolicy

// Role is the closed set of actor roles.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// IsValidRole reports whether v is one of the known roles.
func IsValidRole(v string) bool {
	return v == string(RoleTeacher) || v == string(RoleStudent)
}

// Actor is the resolved caller of an operation.
type Actor struct {
	ID            int64
	Role          Role
	Authenticated bool
}

// Resource is the closed set of protected resource kinds.
type Resource string

const (
	ResourcePost       Resource = "post"
	ResourceComment    Resource = "comment"
	ResourceCohort     Resource = "cohort"
	ResourceEnrollment Resource = "enrollment"
)

// Action is the closed set of evaluated actions.
type Action string

const (
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Decision is the outcome of one policy evaluation.
type Decision struct {
	Allowed bool
	Reason  string
}

type ruleKind int

const (
	anyAuthenticated ruleKind = iota
	teacherOnly
	ownerOrTeacher
)

type rule struct {
	kind       ruleKind
	denyReason string
}

// The full (resource, action) table. Pairs absent from the table are denied,
// so a new operation must be enumerated here before any engine can allow it.
var rules = map[Resource]map[Action]rule{
	ResourcePost: {
		ActionRead:   {kind: anyAuthenticated},
		ActionList:   {kind: anyAuthenticated},
		ActionCreate: {kind: anyAuthenticated},
		ActionUpdate: {kind: ownerOrTeacher, denyReason: "You are not authorized to edit this post."},
		ActionDelete: {kind: ownerOrTeacher, denyReason: "You are not authorized to delete this post."},
	},
	ResourceComment: {
		ActionRead:   {kind: anyAuthenticated},
		ActionList:   {kind: anyAuthenticated},
		ActionCreate: {kind: anyAuthenticated},
		ActionUpdate: {kind: ownerOrTeacher, denyReason: "You are not authorized to edit this comment."},
		ActionDelete: {kind: ownerOrTeacher, denyReason: "You are not authorized to delete this comment."},
	},
	ResourceCohort: {
		// Reads by id or by member are open to any authenticated actor while
		// the full listing is staff-only. Observed product behavior; keep the
		// asymmetry until product says otherwise.
		ActionRead:   {kind: anyAuthenticated},
		ActionList:   {kind: teacherOnly, denyReason: "You are not authorized to list all cohorts."},
		ActionCreate: {kind: teacherOnly, denyReason: "You are not authorized to create a new cohort."},
	},
	ResourceEnrollment: {
		ActionCreate: {kind: teacherOnly, denyReason: "You are not authorized to add a user to a cohort."},
		ActionDelete: {kind: teacherOnly, denyReason: "You are not authorized to delete a user from a cohort."},
	},
}

const reasonUnauthenticated = "You must be logged in to perform this action."

// Decide evaluates one (actor, resource, action) triple. ownerID is the
// resource owner's user id for ownership-gated actions and nil for resource
// kinds with no single owner.
func Decide(actor Actor, resource Resource, action Action, ownerID *int64) Decision {
	if !actor.Authenticated {
		return Decision{Reason: reasonUnauthenticated}
	}

	r, ok := rules[resource][action]
	if !ok {
		return Decision{Reason: "You are not authorized to perform this action."}
	}

	switch r.kind {
	case anyAuthenticated:
		return Decision{Allowed: true}
	case teacherOnly:
		if actor.Role == RoleTeacher {
			return Decision{Allowed: true}
		}
		return Decision{Reason: r.denyReason}
	case ownerOrTeacher:
		if actor.Role == RoleTeacher {
			return Decision{Allowed: true}
		}
		if ownerID != nil && actor.ID == *ownerID {
			return Decision{Allowed: true}
		}
		return Decision{Reason: r.denyReason}
	default:
		return Decision{Reason: "You are not authorized to perform this action."}
	}
}
