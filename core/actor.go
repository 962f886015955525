package core

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

var Roles = []string{RoleAdmin, RoleTeacher}

// Actor is the authenticated caller, as decoded from its token.
type Actor struct {
	UserID    int64
	Email     string
	Role      string
	TeacherID *int64
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsTeacher() bool {
	return a.Role == RoleTeacher
}

// TeacherScope returns the teacher id that reads must be restricted to, or nil when the caller sees everything.
// A teacher account with no linked teacher is scoped to id 0 and therefore sees nothing.
func (a Actor) TeacherScope() *int64 {
	if a.IsAdmin() {
		return nil
	}
	if a.TeacherID == nil {
		var none int64
		return &none
	}
	id := *a.TeacherID
	return &id
}

// Owns reports whether the caller may act on a row belonging to teacherID.
func (a Actor) Owns(teacherID *int64) bool {
	if a.IsAdmin() {
		return true
	}
	return a.TeacherID != nil && teacherID != nil && *a.TeacherID == *teacherID
}
