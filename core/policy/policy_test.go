package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

var (
	anon     = Anonymous()
	noRole   = Principal{ID: 1, Authenticated: true}
	admin    = Principal{ID: 2, Role: user.RoleAdmin, Authenticated: true}
	teacher  = Principal{ID: 3, Role: user.RoleTeacher, Authenticated: true}
	teacher2 = Principal{ID: 4, Role: user.RoleTeacher, Authenticated: true}
	student  = Principal{ID: 5, Role: user.RoleStudent, Authenticated: true}
	student2 = Principal{ID: 6, Role: user.RoleStudent, Authenticated: true}
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		p      Principal
		a      Action
		r      Resource
		want   bool
		reason Reason
	}{
		// public
		{name: "anonymous registers", p: anon, a: ActionCreate, r: ResourceUser, want: true},
		{name: "no role registers", p: noRole, a: ActionCreate, r: ResourceUser, want: true},

		// no access
		{name: "anonymous lists courses", p: anon, a: ActionList, r: ResourceCourse, reason: ReasonNoAccess},
		{name: "no role lists courses", p: noRole, a: ActionList, r: ResourceCourse, reason: ReasonNoAccess},
		{name: "no role creates course", p: noRole, a: ActionCreate, r: ResourceCourse, reason: ReasonNoAccess},
		{name: "no role toggles enrollment", p: noRole, a: ActionCreate, r: ResourceEnrollment, reason: ReasonNoAccess},
		{name: "anonymous retrieves own account", p: anon, a: ActionRetrieve, r: ResourceUser, reason: ReasonNoAccess},

		// content creation
		{name: "admin creates course", p: admin, a: ActionCreate, r: ResourceCourse, want: true},
		{name: "teacher creates module", p: teacher, a: ActionCreate, r: ResourceModule, want: true},
		{name: "student creates course", p: student, a: ActionCreate, r: ResourceCourse, reason: ReasonInsufficient},
		{name: "student creates question", p: student, a: ActionCreate, r: ResourceQuestion, reason: ReasonInsufficient},

		// content modification
		{name: "teacher updates lesson", p: teacher, a: ActionUpdate, r: ResourceLesson, want: true},
		{name: "admin partially updates test", p: admin, a: ActionPartialUpdate, r: ResourceTest, want: true},
		{name: "student deletes answer", p: student, a: ActionDelete, r: ResourceAnswer, reason: ReasonInsufficient},

		// content reads
		{name: "student lists courses", p: student, a: ActionList, r: ResourceCourse, want: true},
		{name: "teacher retrieves test", p: teacher, a: ActionRetrieve, r: ResourceTest, want: true},
		{name: "admin lists answers", p: admin, a: ActionList, r: ResourceAnswer, want: true},

		// enrollment
		{name: "student toggles enrollment", p: student, a: ActionCreate, r: ResourceEnrollment, want: true},
		{name: "teacher toggles enrollment", p: teacher, a: ActionCreate, r: ResourceEnrollment, reason: ReasonInsufficient},
		{name: "admin toggles enrollment", p: admin, a: ActionCreate, r: ResourceEnrollment, reason: ReasonInsufficient},
		{name: "teacher lists enrollments", p: teacher, a: ActionList, r: ResourceEnrollment, want: true},
		{name: "student deletes enrollment", p: student, a: ActionDelete, r: ResourceEnrollment, reason: ReasonInsufficient},

		// student answers & results
		{name: "student answers", p: student, a: ActionCreate, r: ResourceStudentAnswer, want: true},
		{name: "teacher answers", p: teacher, a: ActionCreate, r: ResourceStudentAnswer, reason: ReasonInsufficient},
		{name: "student submits result", p: student, a: ActionCreate, r: ResourceTestResult, want: true},
		{name: "admin submits result", p: admin, a: ActionCreate, r: ResourceTestResult, reason: ReasonInsufficient},
		{name: "student updates result", p: student, a: ActionUpdate, r: ResourceTestResult, reason: ReasonInsufficient},

		// users
		{name: "admin lists users", p: admin, a: ActionList, r: ResourceUser, want: true},
		{name: "teacher lists users", p: teacher, a: ActionList, r: ResourceUser, reason: ReasonInsufficient},
		{name: "student retrieves account", p: student, a: ActionRetrieve, r: ResourceUser, want: true},
		{name: "student deletes account", p: student, a: ActionDelete, r: ResourceUser, reason: ReasonInsufficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.p, tt.a, tt.r)
			assert.Equal(t, tt.want, got.Allowed)
			if !tt.want {
				assert.Equal(t, tt.reason, got.Reason)
				if assert.Error(t, got.Err()) {
					assert.Equal(t, tt.reason.Message(), got.Err().Error())
				}
			} else {
				assert.NoError(t, got.Err())
			}
		})
	}
}

func TestEvaluateObject(t *testing.T) {
	result := Facts{StudentID: student.ID, OwnerID: teacher.ID}

	tests := []struct {
		name   string
		p      Principal
		a      Action
		r      Resource
		facts  Facts
		want   bool
		reason Reason
	}{
		{name: "admin retrieves any result", p: admin, a: ActionRetrieve, r: ResourceTestResult, facts: result, want: true},
		{name: "student retrieves own result", p: student, a: ActionRetrieve, r: ResourceTestResult, facts: result, want: true},
		{name: "student retrieves other's result", p: student2, a: ActionRetrieve, r: ResourceTestResult, facts: result, reason: ReasonNoObjectAccess},
		{name: "test owner retrieves result", p: teacher, a: ActionRetrieve, r: ResourceTestResult, facts: result, want: true},
		{name: "other teacher retrieves result", p: teacher2, a: ActionRetrieve, r: ResourceTestResult, facts: result, reason: ReasonNoObjectAccess},
		{name: "result of ownerless test", p: teacher, a: ActionRetrieve, r: ResourceTestResult, facts: Facts{StudentID: student.ID}, reason: ReasonNoObjectAccess},
		{name: "no role retrieves result", p: noRole, a: ActionRetrieve, r: ResourceTestResult, facts: result, reason: ReasonNoAccess},

		{name: "admin retrieves account", p: admin, a: ActionRetrieve, r: ResourceUser, facts: Facts{OwnerID: student.ID}, want: true},
		{name: "student retrieves own account", p: student, a: ActionRetrieve, r: ResourceUser, facts: Facts{OwnerID: student.ID}, want: true},
		{name: "student updates own account", p: student, a: ActionPartialUpdate, r: ResourceUser, facts: Facts{OwnerID: student.ID}, want: true},
		{name: "student retrieves other account", p: student, a: ActionRetrieve, r: ResourceUser, facts: Facts{OwnerID: teacher.ID}, reason: ReasonInsufficient},
		{name: "teacher updates other account", p: teacher, a: ActionUpdate, r: ResourceUser, facts: Facts{OwnerID: student.ID}, reason: ReasonInsufficient},
		{name: "admin deletes account", p: admin, a: ActionDelete, r: ResourceUser, facts: Facts{OwnerID: student.ID}, want: true},
		{name: "student deletes own account", p: student, a: ActionDelete, r: ResourceUser, facts: Facts{OwnerID: student.ID}, reason: ReasonInsufficient},

		{name: "no object rule", p: teacher, a: ActionRetrieve, r: ResourceCourse, facts: Facts{OwnerID: teacher2.ID}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateObject(tt.p, tt.a, tt.r, tt.facts)
			assert.Equal(t, tt.want, got.Allowed)
			if !tt.want {
				assert.Equal(t, tt.reason, got.Reason)
			}
		})
	}
}

func TestScopeFor(t *testing.T) {
	tests := []struct {
		name string
		p    Principal
		r    Resource
		want Scope
	}{
		{name: "anonymous", p: anon, r: ResourceCourse, want: Scope{Kind: ScopeNone}},
		{name: "no role", p: noRole, r: ResourceCourse, want: Scope{Kind: ScopeNone}},
		{name: "admin courses", p: admin, r: ResourceCourse, want: Scope{Kind: ScopeAll, PrincipalID: admin.ID}},
		{name: "student courses", p: student, r: ResourceCourse, want: Scope{Kind: ScopeAll, PrincipalID: student.ID}},
		{name: "teacher courses", p: teacher, r: ResourceCourse, want: Scope{Kind: ScopeOwned, PrincipalID: teacher.ID}},
		{name: "teacher answers", p: teacher, r: ResourceAnswer, want: Scope{Kind: ScopeOwned, PrincipalID: teacher.ID}},
		{name: "admin enrollments", p: admin, r: ResourceEnrollment, want: Scope{Kind: ScopeAll, PrincipalID: admin.ID}},
		{name: "student enrollments", p: student, r: ResourceEnrollment, want: Scope{Kind: ScopeOwn, PrincipalID: student.ID}},
		{name: "teacher enrollments", p: teacher, r: ResourceEnrollment, want: Scope{Kind: ScopeOwnedCourse, PrincipalID: teacher.ID}},
		{name: "student results", p: student, r: ResourceTestResult, want: Scope{Kind: ScopeOwn, PrincipalID: student.ID}},
		{name: "teacher results", p: teacher, r: ResourceTestResult, want: Scope{Kind: ScopeOwnedTest, PrincipalID: teacher.ID}},
		{name: "teacher student answers", p: teacher, r: ResourceStudentAnswer, want: Scope{Kind: ScopeOwnedTest, PrincipalID: teacher.ID}},
		{name: "admin users", p: admin, r: ResourceUser, want: Scope{Kind: ScopeAll, PrincipalID: admin.ID}},
		{name: "student users", p: student, r: ResourceUser, want: Scope{Kind: ScopeSelf, PrincipalID: student.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScopeFor(tt.p, tt.r))
		})
	}
}

func TestScope_Permits(t *testing.T) {
	tests := []struct {
		name      string
		scope     Scope
		ownerID   int
		studentID int
		want      bool
	}{
		{name: "none", scope: Scope{Kind: ScopeNone}, ownerID: 1, studentID: 1},
		{name: "all", scope: Scope{Kind: ScopeAll}, want: true},
		{name: "owned (match)", scope: Scope{Kind: ScopeOwned, PrincipalID: 3}, ownerID: 3, want: true},
		{name: "owned (other)", scope: Scope{Kind: ScopeOwned, PrincipalID: 3}, ownerID: 4},
		{name: "owned (ownerless)", scope: Scope{Kind: ScopeOwned, PrincipalID: 3}},
		{name: "own (match)", scope: Scope{Kind: ScopeOwn, PrincipalID: 5}, studentID: 5, want: true},
		{name: "own (other)", scope: Scope{Kind: ScopeOwn, PrincipalID: 5}, ownerID: 5, studentID: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scope.Permits(tt.ownerID, tt.studentID))
		})
	}
}
