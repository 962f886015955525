package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActor_TeacherScope(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		want  *int64
	}{
		{name: "admin sees everything", actor: Actor{Role: RoleAdmin, TeacherID: Int64Ptr(3)}, want: nil},
		{name: "linked teacher", actor: Actor{Role: RoleTeacher, TeacherID: Int64Ptr(3)}, want: Int64Ptr(3)},
		{name: "unlinked teacher sees nothing", actor: Actor{Role: RoleTeacher}, want: Int64Ptr(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.actor.TeacherScope())
		})
	}
}

func TestActor_Owns(t *testing.T) {
	tests := []struct {
		name      string
		actor     Actor
		teacherID *int64
		want      bool
	}{
		{name: "admin, any row", actor: Actor{Role: RoleAdmin}, teacherID: Int64Ptr(3), want: true},
		{name: "admin, unowned row", actor: Actor{Role: RoleAdmin}, want: true},
		{name: "teacher, own row", actor: Actor{Role: RoleTeacher, TeacherID: Int64Ptr(3)}, teacherID: Int64Ptr(3), want: true},
		{name: "teacher, other row", actor: Actor{Role: RoleTeacher, TeacherID: Int64Ptr(3)}, teacherID: Int64Ptr(4)},
		{name: "teacher, unowned row", actor: Actor{Role: RoleTeacher, TeacherID: Int64Ptr(3)}},
		{name: "unlinked teacher", actor: Actor{Role: RoleTeacher}, teacherID: Int64Ptr(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.actor.Owns(tt.teacherID))
		})
	}
}
