package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/tests"
)

func Test_subjectApi_query(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)
	math := testutil.CreateSubject(t, env.repos.Subjects, "Math")
	art := testutil.CreateSubject(t, env.repos.Subjects, "Art")
	old := testutil.CreateSubject(t, env.repos.Subjects, "Latin")

	rec := env.serve(http.MethodPut, fmt.Sprintf("/api/subjects/%d", old.ID), token, []byte(`{"is_active":false}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env.run(t, []httpTest{
		{name: "public, active only, by name", path: "/api/subjects", wantData: marchallList(t, art, math)},
	})
}

func Test_subjectApi_createAndUpdate(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)

	env.run(t, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/api/subjects", body: []byte(`{"name":"Math"}`), wantCode: http.StatusUnauthorized},
		{
			name: "missing name", method: http.MethodPost, path: "/api/subjects", token: token, body: []byte(`{"name":"  "}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"name": "this field is required",
			}}),
		},
		{name: "update not found", method: http.MethodPut, path: "/api/subjects/999", token: token, body: []byte(`{}`), wantCode: http.StatusNotFound},
	})

	rec := env.serve(http.MethodPost, "/api/subjects", token, []byte(`{"name":" Solfège ","description":"Reading music"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created subject.Subject
	unmarshal(t, rec, &created)
	assert.Equal(t, "Solfège", created.Name)
	assert.True(t, created.IsActive)

	rec = env.serve(http.MethodPut, fmt.Sprintf("/api/subjects/%d", created.ID), token, []byte(`{"name":"Music theory"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated subject.Subject
	unmarshal(t, rec, &updated)
	assert.Equal(t, "Music theory", updated.Name)
	assert.True(t, updated.IsActive)
	assert.Nil(t, updated.Description)
}

func Test_subjectApi_destroy(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)
	tchr := testutil.CreateTeacher(t, env.repos.Teachers, "Amina", "Diallo")
	math := testutil.CreateSubject(t, env.repos.Subjects, "Math")
	art := testutil.CreateSubject(t, env.repos.Subjects, "Art")
	testutil.AssignSubjects(t, env.repos.Teachers, tchr.ID, math.ID, art.ID)
	testutil.CreateGroup(t, env.repos.Groups, "Math A", tchr.ID, math.ID)

	env.run(t, []httpTest{
		{name: "Auth required", method: http.MethodDelete, path: fmt.Sprintf("/api/subjects/%d", art.ID), wantCode: http.StatusUnauthorized},
		{name: "not found", method: http.MethodDelete, path: "/api/subjects/999", token: token, wantCode: http.StatusNotFound},
		{
			name: "used by groups", method: http.MethodDelete, path: fmt.Sprintf("/api/subjects/%d", math.ID), token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Subject is used by groups and cannot be deleted"}),
		},
		{
			name: "ok", method: http.MethodDelete, path: fmt.Sprintf("/api/subjects/%d", art.ID), token: token,
			wantData: marchallObj(t, MessageResponse{Message: "Subject deleted successfully"}),
		},
		// the teacher assignment went away with the subject
		{name: "assignments updated", path: fmt.Sprintf("/api/teachers/%d/subjects", tchr.ID), token: token, wantData: marchallList(t, math)},
	})
}
