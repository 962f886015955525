package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/tests"
)

func Test_teacherApi_crud(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)
	diallo := testutil.CreateTeacher(t, env.repos.Teachers, "Amina", "Diallo")
	ba := testutil.CreateTeacher(t, env.repos.Teachers, "Oumar", "Ba")

	env.run(t, []httpTest{
		{name: "Auth required", path: "/api/teachers", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "ordered by last name", path: "/api/teachers", token: token, wantData: marchallList(t, ba, diallo)},
		{name: "not found", path: "/api/teachers/999", token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Teacher not found"})},
		{name: "ok", path: fmt.Sprintf("/api/teachers/%d", diallo.ID), token: token, wantData: marchallObj(t, diallo)},
		{
			name: "missing names", method: http.MethodPost, path: "/api/teachers", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"first_name": "this field is required",
				"last_name":  "this field is required",
			}}),
		},
		{
			name: "bad status", method: http.MethodPost, path: "/api/teachers", token: token,
			body: []byte(`{"first_name":"Awa","last_name":"Sy","status":"retired"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"status": "must be one of: active, inactive",
			}}),
		},
	})

	rec := env.serve(http.MethodPost, "/api/teachers", token, []byte(`{"first_name":" Awa ","last_name":"Sy","email":"Awa@Center.cd"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created teacher.Teacher
	unmarshal(t, rec, &created)
	assert.Equal(t, "Awa", created.FirstName)
	assert.Equal(t, teacher.StatusActive, created.Status)
	require.NotNil(t, created.Email)
	assert.Equal(t, "awa@center.cd", *created.Email)

	rec = env.serve(http.MethodPut, fmt.Sprintf("/api/teachers/%d", created.ID), token, []byte(`{"status":"inactive","specialization":"Piano"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated teacher.Teacher
	unmarshal(t, rec, &updated)
	assert.Equal(t, "Awa", updated.FirstName)
	assert.Equal(t, teacher.StatusInactive, updated.Status)
	require.NotNil(t, updated.Specialization)
	assert.Equal(t, "Piano", *updated.Specialization)
	assert.Nil(t, updated.Email)
}

func Test_teacherApi_destroy(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)
	busy := testutil.CreateTeacher(t, env.repos.Teachers, "Amina", "Diallo")
	free := testutil.CreateTeacher(t, env.repos.Teachers, "Oumar", "Ba")
	math := testutil.CreateSubject(t, env.repos.Subjects, "Math")
	testutil.AssignSubjects(t, env.repos.Teachers, busy.ID, math.ID)
	testutil.AssignSubjects(t, env.repos.Teachers, free.ID, math.ID)
	testutil.CreateGroup(t, env.repos.Groups, "Math A", busy.ID, math.ID)
	linked, _ := env.teacherToken(t, "oumar@center.cd", &free.ID)

	env.run(t, []httpTest{
		{name: "not found", method: http.MethodDelete, path: "/api/teachers/999", token: token, wantCode: http.StatusNotFound},
		{
			name: "still has groups", method: http.MethodDelete, path: fmt.Sprintf("/api/teachers/%d", busy.ID), token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Teacher still has groups and cannot be deleted"}),
		},
		{
			name: "ok", method: http.MethodDelete, path: fmt.Sprintf("/api/teachers/%d", free.ID), token: token,
			wantData: marchallObj(t, MessageResponse{Message: "Teacher deleted successfully"}),
		},
	})

	ctx := context.Background()
	_, err := env.repos.Teachers.GetTeacher(ctx, free.ID)
	assert.True(t, core.IsNotFound(err))

	// the linked account survives without its teacher
	usr, err := env.repos.Users.GetUser(ctx, linked.ID)
	require.NoError(t, err)
	assert.Nil(t, usr.TeacherID)
}

func Test_teacherApi_subjects(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)
	tchr := testutil.CreateTeacher(t, env.repos.Teachers, "Amina", "Diallo")
	math := testutil.CreateSubject(t, env.repos.Subjects, "Math")
	art := testutil.CreateSubject(t, env.repos.Subjects, "Art")
	path := fmt.Sprintf("/api/teachers/%d/subjects", tchr.ID)

	env.run(t, []httpTest{
		{name: "none yet", path: path, token: token, wantData: marchallList(t)},
		{name: "unknown teacher", path: "/api/teachers/999/subjects", token: token, wantCode: http.StatusNotFound},
		{
			name: "not an array", method: http.MethodPost, path: path, token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"subject_ids": "subject_ids must be an array",
			}}),
		},
		{
			name: "unknown subject", method: http.MethodPost, path: path, token: token,
			body: []byte(`{"subject_ids":[999]}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "replace set", method: http.MethodPost, path: path, token: token,
			body:     marchallObj(t, map[string][]int64{"subject_ids": {math.ID, art.ID, math.ID}}),
			wantData: marchallList(t, art, math),
		},
		{name: "read back", path: path, token: token, wantData: marchallList(t, art, math)},
		{
			name: "empty array clears", method: http.MethodPost, path: path, token: token,
			body: []byte(`{"subject_ids":[]}`), wantData: marchallList(t),
		},
	})
}

func Test_teacherApi_groups(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)
	diallo := testutil.CreateTeacher(t, env.repos.Teachers, "Amina", "Diallo")
	ba := testutil.CreateTeacher(t, env.repos.Teachers, "Oumar", "Ba")
	math := testutil.CreateSubject(t, env.repos.Subjects, "Math")
	testutil.AssignSubjects(t, env.repos.Teachers, diallo.ID, math.ID)
	testutil.AssignSubjects(t, env.repos.Teachers, ba.ID, math.ID)
	mathB := testutil.CreateGroup(t, env.repos.Groups, "Math B", diallo.ID, math.ID)
	mathA := testutil.CreateGroup(t, env.repos.Groups, "Math A", diallo.ID, math.ID)
	testutil.CreateGroup(t, env.repos.Groups, "Math C", ba.ID, math.ID)

	env.run(t, []httpTest{
		{name: "unknown teacher", path: "/api/teachers/999/groups", token: token, wantCode: http.StatusNotFound},
		{
			name: "own groups only", path: fmt.Sprintf("/api/teachers/%d/groups", diallo.ID), token: token,
			wantData: marchallList(t, mathA, mathB),
		},
	})

	var groups []group.View
	rec := env.serve(http.MethodGet, fmt.Sprintf("/api/teachers/%d/groups", ba.ID), token)
	unmarshal(t, rec, &groups)
	require.Len(t, groups, 1)
	require.NotNil(t, groups[0].TeacherLastName)
	assert.Equal(t, "Ba", *groups[0].TeacherLastName)
}
