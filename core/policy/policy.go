// Package policy decides who may do what on which resource.
//
// Decisions are pure functions of a Principal, an Action and a Resource (plus, for object-level checks, a
// few Facts about the object). Precedence is first-match-wins:
//  1. public rules (registration) allow everyone, anonymous callers included;
//  2. anonymous or role-less principals are denied with ReasonNoAccess;
//  3. the principal's role must be in the rule's role set, otherwise ReasonInsufficient.
// Row scoping for list/retrieve queries is given by ScopeFor.
package policy

import (
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

type Action string

// Actions
const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDelete        Action = "delete"
)

type Resource string

// Resources
const (
	ResourceCourse        Resource = "course"
	ResourceModule        Resource = "module"
	ResourceLesson        Resource = "lesson"
	ResourceTest          Resource = "test"
	ResourceQuestion      Resource = "question"
	ResourceAnswer        Resource = "answer"
	ResourceEnrollment    Resource = "enrollment"
	ResourceStudentAnswer Resource = "student_answer"
	ResourceTestResult    Resource = "test_result"
	ResourceUser          Resource = "user"
)

// ContentResources are the owned, teacher-authored kinds.
var ContentResources = []Resource{
	ResourceCourse, ResourceModule, ResourceLesson, ResourceTest, ResourceQuestion, ResourceAnswer,
}

// Principal is the caller of an operation.
type Principal struct {
	ID            int
	Role          user.Role
	Authenticated bool
}

func Anonymous() Principal { return Principal{} }

func PrincipalOf(usr user.User) Principal {
	return Principal{ID: usr.ID, Role: usr.Role, Authenticated: true}
}

func (p Principal) IsAdmin() bool   { return p.Authenticated && p.Role == user.RoleAdmin }
func (p Principal) IsTeacher() bool { return p.Authenticated && p.Role == user.RoleTeacher }
func (p Principal) IsStudent() bool { return p.Authenticated && p.Role == user.RoleStudent }

type Reason int

// Deny reasons
const (
	ReasonNone Reason = iota
	ReasonNoAccess
	ReasonInsufficient
	ReasonNoObjectAccess
)

func (r Reason) Message() string {
	switch r {
	case ReasonNoAccess:
		return "you have no access to this resource"
	case ReasonInsufficient:
		return "you do not have permission to perform this action"
	case ReasonNoObjectAccess:
		return "you have no access to this result"
	}
	return ""
}

// DeniedError is returned by Decision.Err for denied decisions.
type DeniedError struct {
	Reason Reason
}

func (err *DeniedError) Error() string { return err.Reason.Message() }

type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision { return Decision{Allowed: true} }
func deny(reason Reason) Decision { return Decision{Reason: reason} }

func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}

// Facts describe the object an object-level check is made against. Zero values mean "unknown / none".
type Facts struct {
	OwnerID   int // owning user: account owner for users, test owner for test results
	StudentID int // attempting student for test results
}

type rule struct {
	roles  []user.Role
	public bool // allowed to anyone, anonymous included
	self   bool // additionally allowed on the principal's own user account
	object bool // needs an object-level check
}

func (r rule) hasRole(role user.Role) bool {
	for _, rl := range r.roles {
		if rl == role {
			return true
		}
	}
	return false
}

var (
	staff   = []user.Role{user.RoleAdmin, user.RoleTeacher}
	members = []user.Role{user.RoleAdmin, user.RoleTeacher, user.RoleStudent}
	admins  = []user.Role{user.RoleAdmin}
	pupils  = []user.Role{user.RoleStudent}

	rules = buildRules()
)

func buildRules() map[Resource]map[Action]rule {
	table := make(map[Resource]map[Action]rule)

	for _, res := range ContentResources {
		table[res] = map[Action]rule{
			ActionList:          {roles: members},
			ActionRetrieve:      {roles: members},
			ActionCreate:        {roles: staff},
			ActionUpdate:        {roles: staff},
			ActionPartialUpdate: {roles: staff},
			ActionDelete:        {roles: staff},
		}
	}

	table[ResourceEnrollment] = map[Action]rule{
		ActionList:   {roles: members},
		ActionCreate: {roles: pupils}, // toggle
	}

	table[ResourceStudentAnswer] = map[Action]rule{
		ActionList:     {roles: members},
		ActionRetrieve: {roles: members},
		ActionCreate:   {roles: pupils},
	}

	table[ResourceTestResult] = map[Action]rule{
		ActionList:     {roles: members},
		ActionRetrieve: {roles: members, object: true},
		ActionCreate:   {roles: pupils},
	}

	table[ResourceUser] = map[Action]rule{
		ActionCreate:        {public: true},
		ActionList:          {roles: admins},
		ActionRetrieve:      {roles: admins, self: true, object: true},
		ActionUpdate:        {roles: admins, self: true, object: true},
		ActionPartialUpdate: {roles: admins, self: true, object: true},
		ActionDelete:        {roles: admins},
	}
	return table
}

func lookup(a Action, r Resource) (rule, bool) {
	actions, ok := rules[r]
	if !ok {
		return rule{}, false
	}
	rl, ok := actions[a]
	return rl, ok
}

// Evaluate gates `a` on `r` for `p`, before any object is known.
// Rules allowing a principal on their own account pass here and are settled by EvaluateObject.
func Evaluate(p Principal, a Action, r Resource) Decision {
	rl, ok := lookup(a, r)
	if ok && rl.public {
		return allow()
	}
	if !p.Authenticated || p.Role == user.RoleNone {
		return deny(ReasonNoAccess)
	}
	if !ok {
		return deny(ReasonInsufficient)
	}
	if rl.hasRole(p.Role) || rl.self {
		return allow()
	}
	return deny(ReasonInsufficient)
}

// EvaluateObject gates `a` on a single object of kind `r` described by `facts`.
func EvaluateObject(p Principal, a Action, r Resource, facts Facts) Decision {
	if d := Evaluate(p, a, r); !d.Allowed {
		return d
	}
	rl, ok := lookup(a, r)
	if !ok || rl.public || !rl.object {
		return allow()
	}

	switch r {
	case ResourceUser:
		if rl.hasRole(p.Role) || (rl.self && facts.OwnerID == p.ID) {
			return allow()
		}
		return deny(ReasonInsufficient)
	case ResourceTestResult:
		switch {
		case p.IsAdmin():
			return allow()
		case p.IsStudent() && facts.StudentID == p.ID:
			return allow()
		case p.IsTeacher() && facts.OwnerID == p.ID:
			return allow()
		}
		return deny(ReasonNoObjectAccess)
	}
	return allow()
}
