package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/payment"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/tests"
)

var (
	errMissingToken = httpErr{Error: "Access token required"}
	errBadToken     = httpErr{Error: "invalid or expired jwt"}
)

type testEnv struct {
	app   Server
	conf  *core.Config
	repos testutil.Repos
}

// setup wires the whole API over a fresh in-memory store.
func setup(t *testing.T) testEnv {
	t.Helper()
	return newEnv(t, core.NewTestConfig(), testutil.DummyRepos(t))
}

func newEnv(t *testing.T, conf *core.Config, repos testutil.Repos) testEnv {
	t.Helper()
	validate, translator := testutil.NewValidator()

	teacherSvc := teacher.NewService(repos.Teachers)
	studentSvc := student.NewService(repos.Students, validate, translator)
	lessonSvc := lesson.NewService(repos.Lessons, teacherSvc)

	app := NewServer(conf, nil /* shutdown */, &Deps{
		Logger:        logsvc.New(zaptest.NewLogger(t), conf),
		Validate:      validate,
		Translator:    translator,
		UserSvc:       user.NewService(repos.Users, teacherSvc),
		TeacherSvc:    teacherSvc,
		SubjectSvc:    subject.NewService(repos.Subjects),
		GroupSvc:      group.NewService(repos.Groups, teacherSvc),
		StudentSvc:    studentSvc,
		LessonSvc:     lessonSvc,
		EnrollmentSvc: enrollment.NewService(repos.Enrollments, lessonSvc, studentSvc),
		PaymentSvc:    payment.NewService(repos.Payments, lessonSvc, studentSvc),
	})
	return testEnv{app: app, conf: conf, repos: repos}
}

type httpErr struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (env testEnv) serve(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	env.app.ServeHTTP(rec, req)
	return rec
}

// run executes table tests; an empty method means GET and a zero wantCode means 200.
func (env testEnv) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.method == "" {
				tt.method = http.MethodGet
			}
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			rec := env.serve(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(conf, usr)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

// adminToken creates an admin account and returns a token for it.
func (env testEnv) adminToken(t *testing.T) (user.User, string) {
	admin := testutil.CreateUser(t, env.repos.Users, "admin@test.cd", "s3cure-pass", core.RoleAdmin, nil, true)
	return admin, getToken(t, env.conf, admin)
}

// teacherToken creates a teacher account linked to teacherID and returns a token for it.
func (env testEnv) teacherToken(t *testing.T, email string, teacherID *int64) (user.User, string) {
	usr := testutil.CreateUser(t, env.repos.Users, email, "s3cure-pass", core.RoleTeacher, teacherID, true)
	return usr, getToken(t, env.conf, usr)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
