package policy

type ScopeKind int

// Scope kinds
const (
	ScopeNone        ScopeKind = iota // no rows
	ScopeAll                          // every row
	ScopeOwned                        // rows owned by the principal
	ScopeOwn                          // rows whose student is the principal
	ScopeOwnedCourse                  // rows whose course is owned by the principal
	ScopeOwnedTest                    // rows whose test is owned by the principal
	ScopeSelf                         // the principal's own user account
)

// Scope restricts list/retrieve queries to the rows a principal may see.
type Scope struct {
	Kind        ScopeKind
	PrincipalID int
}

func (s Scope) IsAll() bool { return s.Kind == ScopeAll }

// ScopeFor returns the row scope of `p` on `r`.
func ScopeFor(p Principal, r Resource) Scope {
	if !p.Authenticated {
		return Scope{Kind: ScopeNone}
	}
	scope := func(kind ScopeKind) Scope { return Scope{Kind: kind, PrincipalID: p.ID} }

	switch r {
	case ResourceUser:
		if p.IsAdmin() {
			return scope(ScopeAll)
		}
		return scope(ScopeSelf)
	case ResourceEnrollment:
		switch {
		case p.IsAdmin():
			return scope(ScopeAll)
		case p.IsStudent():
			return scope(ScopeOwn)
		case p.IsTeacher():
			return scope(ScopeOwnedCourse)
		}
	case ResourceStudentAnswer, ResourceTestResult:
		switch {
		case p.IsAdmin():
			return scope(ScopeAll)
		case p.IsStudent():
			return scope(ScopeOwn)
		case p.IsTeacher():
			return scope(ScopeOwnedTest)
		}
	default: // content
		switch {
		case p.IsAdmin(), p.IsStudent():
			return scope(ScopeAll)
		case p.IsTeacher():
			return scope(ScopeOwned)
		}
	}
	return Scope{Kind: ScopeNone}
}

// Permits reports whether a row with the given ownership falls within the scope.
// ownerID is the row owner (content), or the owner of the row's course/test; studentID the row's student.
func (s Scope) Permits(ownerID, studentID int) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeOwned, ScopeOwnedCourse, ScopeOwnedTest, ScopeSelf:
		return ownerID != 0 && ownerID == s.PrincipalID
	case ScopeOwn:
		return studentID != 0 && studentID == s.PrincipalID
	}
	return false
}
