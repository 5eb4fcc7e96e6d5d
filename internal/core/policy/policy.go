// Package policy decides whether an actor may perform an action on a
// resource. Decisions are pure: the same request always yields the same
// decision, and nothing here touches storage.
package policy

import (
	"slices"

	"github.com/recordhub/records-system/internal/core/domain"
)

type Resource string

const (
	ResourceUser     Resource = "user"
	ResourceEmployee Resource = "employee"
	ResourceClient   Resource = "client"
	ResourceProject  Resource = "project"
	ResourceDocument Resource = "document"
)

type Action string

const (
	ActionList    Action = "list"
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionArchive Action = "archive"
	ActionAddTeam Action = "add-team"
	ActionExport  Action = "export"
)

// Field paths used in scope conditions. They match the stored document layout.
const (
	FieldID           = "_id"
	FieldEmployeeUser = "user"
	FieldStatus       = "status"
	FieldManager      = "manager"
	FieldTeamUser     = "teamMembers.user"
	FieldACLView      = "accessControl.view"
	FieldACLEdit      = "accessControl.edit"
)

type Effect int

const (
	Deny Effect = iota
	Allow
	AllowWithScope
)

func (e Effect) String() string {
	switch e {
	case Allow:
		return "allow"
	case AllowWithScope:
		return "allow_with_scope"
	default:
		return "deny"
	}
}

// Condition is a single field = value match.
type Condition struct {
	Field string
	Value any
}

// Scope restricts a listing. Every condition in All must hold and, when Any
// is non-empty, at least one condition in Any must hold.
type Scope struct {
	All []Condition
	Any []Condition
}

func (s Scope) IsEmpty() bool { return len(s.All) == 0 && len(s.Any) == 0 }

// Target carries the attributes of an already fetched record.
type Target struct {
	OwnerID   string
	MemberIDs []string
	Status    string
	ACL       *domain.AccessControl
}

type Request struct {
	Actor    domain.Actor
	Resource Resource
	Action   Action
	Target   *Target
}

type Decision struct {
	Effect Effect
	Scope  Scope
}

func (d Decision) Allowed() bool { return d.Effect != Deny }

type rule int

const (
	deny rule = iota
	allow
	self
	activeOnly
	managerOrMember
	managerOnly
	viewACL
	editACL
)

type grants map[domain.Role]rule

func every(r rule) grants {
	return grants{
		domain.RoleAdmin:         r,
		domain.RoleHR:            r,
		domain.RoleClientManager: r,
		domain.RoleEmployee:      r,
	}
}

var (
	adminOnly     = grants{domain.RoleAdmin: allow}
	adminOrSelf   = grants{domain.RoleAdmin: allow, domain.RoleEmployee: self}
	adminHR       = grants{domain.RoleAdmin: allow, domain.RoleHR: allow}
	adminCM       = grants{domain.RoleAdmin: allow, domain.RoleClientManager: allow}
	staff         = grants{domain.RoleAdmin: allow, domain.RoleHR: allow, domain.RoleClientManager: allow}
	projectViewer = grants{
		domain.RoleAdmin:         allow,
		domain.RoleHR:            allow,
		domain.RoleClientManager: allow,
		domain.RoleEmployee:      managerOrMember,
	}
	projectEditor = grants{
		domain.RoleAdmin:         allow,
		domain.RoleClientManager: allow,
		domain.RoleEmployee:      managerOnly,
	}
)

var table = map[Resource]map[Action]grants{
	ResourceUser: {
		ActionList:   adminOnly,
		ActionDelete: adminOnly,
		ActionCreate: adminOnly,
		ActionRead:   adminOrSelf,
		ActionUpdate: adminOrSelf,
	},
	ResourceEmployee: {
		ActionList: grants{
			domain.RoleAdmin:         allow,
			domain.RoleHR:            allow,
			domain.RoleClientManager: allow,
			domain.RoleEmployee:      activeOnly,
		},
		ActionRead: grants{
			domain.RoleAdmin:         allow,
			domain.RoleHR:            allow,
			domain.RoleClientManager: allow,
			domain.RoleEmployee:      self,
		},
		ActionCreate: adminHR,
		ActionUpdate: adminHR,
		ActionDelete: adminOnly,
		ActionExport: adminHR,
	},
	ResourceClient: {
		ActionList:   staff,
		ActionRead:   staff,
		ActionUpdate: staff,
		ActionCreate: adminCM,
		ActionExport: staff,
	},
	ResourceProject: {
		ActionList:    projectViewer,
		ActionRead:    projectViewer,
		ActionExport:  projectViewer,
		ActionCreate:  adminCM,
		ActionUpdate:  projectEditor,
		ActionAddTeam: projectEditor,
	},
	ResourceDocument: {
		ActionList:    every(viewACL),
		ActionRead:    every(viewACL),
		ActionExport:  every(viewACL),
		ActionUpdate:  every(editACL),
		ActionCreate:  every(allow),
		ActionArchive: adminHR,
	},
}

// ownerField names the field that links a record to its owning user.
var ownerField = map[Resource]string{
	ResourceUser:     FieldID,
	ResourceEmployee: FieldEmployeeUser,
	ResourceProject:  FieldManager,
}

// Evaluate resolves a request against the policy table. Roles and
// combinations missing from the table are denied.
func Evaluate(req Request) Decision {
	if !req.Actor.Role.Valid() {
		return Decision{Effect: Deny}
	}
	r := table[req.Resource][req.Action][req.Actor.Role]
	if r == allow {
		return Decision{Effect: Allow}
	}
	if r == deny {
		return Decision{Effect: Deny}
	}
	if req.Target != nil {
		return decide(matchTarget(r, req))
	}
	return Decision{Effect: AllowWithScope, Scope: scopeFor(r, req)}
}

func decide(ok bool) Decision {
	if ok {
		return Decision{Effect: Allow}
	}
	return Decision{Effect: Deny}
}

func matchTarget(r rule, req Request) bool {
	uid, t := req.Actor.UserID, req.Target
	switch r {
	case self, managerOnly:
		return uid != "" && t.OwnerID == uid
	case activeOnly:
		return t.Status == domain.EmployeeActive
	case managerOrMember:
		return uid != "" && (t.OwnerID == uid || slices.Contains(t.MemberIDs, uid))
	case viewACL:
		return t.ACL != nil && t.ACL.CanView(req.Actor.Role)
	case editACL:
		return t.ACL != nil && t.ACL.CanEdit(req.Actor.Role)
	}
	return false
}

func scopeFor(r rule, req Request) Scope {
	uid, role := req.Actor.UserID, string(req.Actor.Role)
	switch r {
	case self:
		return Scope{All: []Condition{{Field: ownerField[req.Resource], Value: uid}}}
	case managerOnly:
		return Scope{All: []Condition{{Field: FieldManager, Value: uid}}}
	case activeOnly:
		return Scope{All: []Condition{{Field: FieldStatus, Value: domain.EmployeeActive}}}
	case managerOrMember:
		return Scope{Any: []Condition{
			{Field: FieldManager, Value: uid},
			{Field: FieldTeamUser, Value: uid},
		}}
	case viewACL:
		return Scope{All: []Condition{{Field: FieldACLView, Value: role}}}
	case editACL:
		return Scope{All: []Condition{{Field: FieldACLEdit, Value: role}}}
	}
	return Scope{}
}

// Check is Evaluate for callers that hold a fetched record and only need a
// yes or no. A scoped grant without a target is refused: the scope has no
// record to match against.
func Check(actor domain.Actor, res Resource, act Action, target *Target) error {
	if Evaluate(Request{Actor: actor, Resource: res, Action: act, Target: target}).Effect == Allow {
		return nil
	}
	return domain.ErrForbidden
}

// Permits reports whether a role has any grant for the action, scoped or not.
// Route guards use it before the record or listing is resolved.
func Permits(role domain.Role, res Resource, act Action) bool {
	if !role.Valid() {
		return false
	}
	return table[res][act][role] != deny
}
