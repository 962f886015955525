package tests

import (
	"net/http"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/tests"
)

func Test_authApi_register(t *testing.T) {
	env := setup(t)

	body := func(email, pwd, confirm string) []byte {
		return marchallObj(t, map[string]string{"email": email, "password": pwd, "confirmPassword": confirm})
	}

	env.run(t, []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/api/auth/register", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"email":           "this field is required",
				"password":        "this field is required",
				"confirmPassword": "this field is required",
			}}),
		},
		{
			name: "confirmation mismatch", method: http.MethodPost, path: "/api/auth/register",
			body: body("owner@center.cd", "s3cure-pass", "s3cure-pas"), wantCode: http.StatusBadRequest,
		},
		{
			name: "numeric password", method: http.MethodPost, path: "/api/auth/register",
			body: body("owner@center.cd", "12345678", "12345678"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"password": "password cannot be entirely numeric",
			}}),
		},
	})

	// first registration wins
	rec := env.serve(http.MethodPost, "/api/auth/register", "", body(" Owner@Center.cd ", "s3cure-pass", "s3cure-pass"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res AuthResponse
	unmarshal(t, rec, &res)
	assert.NotZero(t, res.User.ID)
	assert.Equal(t, "owner@center.cd", res.User.Email)
	assert.Equal(t, core.RoleAdmin, res.User.Role)
	assert.Nil(t, res.User.TeacherID)
	assert.NotEmpty(t, res.Token)

	// the token is usable right away
	rec = env.serve(http.MethodGet, "/api/auth/me", res.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	centerRegistered := marchallObj(t, httpErr{Error: "An account already exists. Only one center can be registered."})
	env.run(t, []httpTest{
		{
			name: "same email", method: http.MethodPost, path: "/api/auth/register",
			body: body("owner@center.cd", "s3cure-pass", "s3cure-pass"), wantCode: http.StatusBadRequest, wantData: centerRegistered,
		},
		{
			name: "other email", method: http.MethodPost, path: "/api/auth/register",
			body: body("other@center.cd", "s3cure-pass", "s3cure-pass"), wantCode: http.StatusBadRequest, wantData: centerRegistered,
		},
		{
			name: "weak password", method: http.MethodPost, path: "/api/auth/register",
			body: body("other@center.cd", "12345678", "12345678"), wantCode: http.StatusBadRequest, wantData: centerRegistered,
		},
		{
			name: "empty payload", method: http.MethodPost, path: "/api/auth/register",
			body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: centerRegistered,
		},
	})
}

func Test_authApi_login(t *testing.T) {
	env := setup(t)
	tchr := testutil.CreateTeacher(t, env.repos.Teachers, "Amina", "Diallo")
	testutil.CreateUser(t, env.repos.Users, "amina@center.cd", "s3cure-pass", core.RoleTeacher, &tchr.ID, true)
	testutil.CreateUser(t, env.repos.Users, "gone@center.cd", "s3cure-pass", core.RoleTeacher, nil, false)

	body := func(email, pwd string) []byte {
		return marchallObj(t, map[string]string{"email": email, "password": pwd})
	}
	invalidCreds := marchallObj(t, httpErr{Error: "Invalid email or password"})

	env.run(t, []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/api/auth/login", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/api/auth/login",
			body: body("nobody@center.cd", "s3cure-pass"), wantCode: http.StatusBadRequest, wantData: invalidCreds,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/auth/login",
			body: body("amina@center.cd", "wrong-pass"), wantCode: http.StatusBadRequest, wantData: invalidCreds,
		},
		{
			name: "inactive account", method: http.MethodPost, path: "/api/auth/login",
			body: body("gone@center.cd", "s3cure-pass"), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "Account is inactive"}),
		},
	})

	rec := env.serve(http.MethodPost, "/api/auth/login", "", body("AMINA@center.cd", "s3cure-pass"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res AuthResponse
	unmarshal(t, rec, &res)
	assert.Equal(t, "amina@center.cd", res.User.Email)
	require.NotNil(t, res.User.TeacherID)
	assert.Equal(t, tchr.ID, *res.User.TeacherID)

	claims := new(Claims)
	_, err := jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(env.conf.SecretKey), nil
	})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, core.RoleTeacher, claims.Role)
	require.NotNil(t, claims.TeacherID)
	assert.Equal(t, tchr.ID, *claims.TeacherID)
	assert.Equal(t, env.conf.AppName, claims.Issuer)

	// last login is recorded
	rec = env.serve(http.MethodGet, "/api/auth/me", res.Token)
	var me user.User
	unmarshal(t, rec, &me)
	assert.NotNil(t, me.LastLogin)
}

func Test_authApi_me(t *testing.T) {
	env := setup(t)
	admin, token := env.adminToken(t)
	ghost := user.User{ID: 999, Email: "ghost@center.cd", Role: core.RoleAdmin}

	expired := GetUserClaims(env.conf, admin)
	expired.ExpiresAt = 1
	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte(env.conf.SecretKey))
	require.NoError(t, err)

	env.run(t, []httpTest{
		{name: "Auth required", path: "/api/auth/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "garbage token", path: "/api/auth/me", token: "not.a.jwt", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errBadToken)},
		{name: "expired token", path: "/api/auth/me", token: expiredToken, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errBadToken)},
		{name: "deleted user", path: "/api/auth/me", token: getToken(t, env.conf, ghost), wantCode: http.StatusNotFound},
		{name: "ok", path: "/api/auth/me", token: token, wantData: marchallObj(t, admin)},
	})
}

func Test_authApi_changePassword(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)

	body := func(current, pwd, confirm string) []byte {
		return marchallObj(t, map[string]string{"currentPassword": current, "newPassword": pwd, "confirmNewPassword": confirm})
	}
	path := "/api/auth/change-password"

	env.run(t, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: path, wantCode: http.StatusUnauthorized},
		{
			name: "missing fields", method: http.MethodPost, path: path, token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"currentPassword":    "this field is required",
				"newPassword":        "this field is required",
				"confirmNewPassword": "this field is required",
			}}),
		},
		{
			name: "wrong current password", method: http.MethodPost, path: path, token: token,
			body: body("nope-nope", "brand-new-pass", "brand-new-pass"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Current password is incorrect"}),
		},
		{
			name: "weak new password", method: http.MethodPost, path: path, token: token,
			body: body("s3cure-pass", "short", "short"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"newPassword": "password must contain at least 8 characters",
			}}),
		},
		{
			name: "ok", method: http.MethodPost, path: path, token: token,
			body:     body("s3cure-pass", "brand-new-pass", "brand-new-pass"),
			wantData: marchallObj(t, MessageResponse{Message: "Password changed successfully"}),
		},
	})

	login := marchallObj(t, map[string]string{"email": "admin@test.cd", "password": "brand-new-pass"})
	rec := env.serve(http.MethodPost, "/api/auth/login", "", login)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func Test_authApi_logout(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)

	env.run(t, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/api/auth/logout", wantCode: http.StatusUnauthorized},
		{
			name: "ok", method: http.MethodPost, path: "/api/auth/logout", token: token,
			wantData: marchallObj(t, MessageResponse{Message: "Logged out successfully"}),
		},
	})
}

func Test_health(t *testing.T) {
	env := setup(t)
	req, rec := newRequest(http.MethodGet, "/api/health")
	env.app.ServeHTTP(rec, req)

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: []byte(`{"status":"ok","message":"Server is running"}`),
	}, rec)
}
