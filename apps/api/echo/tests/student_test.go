package tests

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/payment"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/tests"
)

func Test_studentApi_createAndRetrieve(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)

	env.run(t, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/api/students", body: []byte(`{}`), wantCode: http.StatusUnauthorized},
		{
			name: "missing names", method: http.MethodPost, path: "/api/students", token: token, body: []byte(`{"first_name":"  "}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"first_name": "this field is required",
				"last_name":  "this field is required",
			}}),
		},
		{
			name: "bad status", method: http.MethodPost, path: "/api/students", token: token,
			body: []byte(`{"first_name":"Awa","last_name":"Ba","status":"graduated"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "bad birth date", method: http.MethodPost, path: "/api/students", token: token,
			body: []byte(`{"first_name":"Awa","last_name":"Ba","birth_date":"01/02/2010"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "validation failed", Details: map[string]string{
				"birth_date": "must be a date formatted as YYYY-MM-DD",
			}}),
		},
		{name: "not found", path: "/api/students/999", token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found"})},
	})

	body := []byte(`{"first_name":" Awa ","last_name":"Ba","phone":"+221 77 000 00 00","gender":"F"}`)
	rec := env.serve(http.MethodPost, "/api/students", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created student.Student
	unmarshal(t, rec, &created)
	assert.Equal(t, student.StatusActive, created.Status)
	assert.Zero(t, created.Balance)

	rec = env.serve(http.MethodGet, fmt.Sprintf("/api/students/%d", created.ID), token)
	require.Equal(t, http.StatusOK, rec.Code)

	var got student.Student
	unmarshal(t, rec, &got)
	assert.Equal(t, "Awa", got.FirstName)
	assert.Equal(t, "Ba", got.LastName)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "+221 77 000 00 00", *got.Phone)
	require.NotNil(t, got.Gender)
	assert.Equal(t, student.GenderFemale, *got.Gender)
	assert.Equal(t, student.StatusActive, got.Status)
}

func Test_studentApi_queryAndSearch(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)
	awa := testutil.CreateStudent(t, env.repos.Students, "Awa", "Ba")
	ivan := testutil.CreateStudent(t, env.repos.Students, "Иван", "Иванов")

	env.run(t, []httpTest{
		{name: "Auth required", path: "/api/students", wantCode: http.StatusUnauthorized},
		{name: "newest first", path: "/api/students", token: token, wantData: marchallList(t, ivan, awa)},
		{name: "search by name", path: "/api/students/search?query=" + url.QueryEscape("ива"), token: token, wantData: marchallList(t, ivan)},
		{name: "search no match", path: "/api/students/search?query=zzz", token: token, wantData: marchallList(t)},
		{name: "blank search lists all", path: "/api/students/search?query=", token: token, wantData: marchallList(t, ivan, awa)},
	})
}

func Test_studentApi_update(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)
	awa := testutil.CreateStudent(t, env.repos.Students, "Awa", "Ba")
	path := fmt.Sprintf("/api/students/%d", awa.ID)

	env.run(t, []httpTest{
		{name: "not found", method: http.MethodPut, path: "/api/students/999", token: token, body: []byte(`{}`), wantCode: http.StatusNotFound},
		{name: "bad email", method: http.MethodPut, path: path, token: token, body: []byte(`{"email":"nope"}`), wantCode: http.StatusBadRequest},
	})

	rec := env.serve(http.MethodPut, path, token, []byte(`{"status":"on_vacation","balance":-150.5,"comment":"back in May"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got student.Student
	unmarshal(t, rec, &got)
	assert.Equal(t, "Awa", got.FirstName)
	assert.Equal(t, student.StatusOnVacation, got.Status)
	assert.Equal(t, -150.5, got.Balance)
	require.NotNil(t, got.Comment)
	assert.Equal(t, "back in May", *got.Comment)
}

func Test_studentApi_destroy(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)
	awa := testutil.CreateStudent(t, env.repos.Students, "Awa", "Ba")
	payer := testutil.CreateStudent(t, env.repos.Students, "Moussa", "Sow")
	p := testutil.CreatePayment(t, env.repos.Payments, payment.Payment{StudentID: payer.ID, Amount: 100})

	env.run(t, []httpTest{
		{name: "not found", method: http.MethodDelete, path: "/api/students/999", token: token, wantCode: http.StatusNotFound},
		{
			name: "has payments", method: http.MethodDelete, path: fmt.Sprintf("/api/students/%d", payer.ID), token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Student has payments and cannot be deleted"}),
		},
		{
			name: "ok", method: http.MethodDelete, path: fmt.Sprintf("/api/students/%d", awa.ID), token: token,
			wantData: marchallObj(t, MessageResponse{Message: "Student deleted successfully"}),
		},
	})

	_, err := env.repos.Students.GetStudent(context.Background(), awa.ID)
	assert.True(t, core.IsNotFound(err))

	// payment history survives the refused delete
	got, err := env.repos.Payments.GetPayment(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, payer.ID, got.StudentID)
}

func Test_studentApi_importJSON(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)

	env.run(t, []httpTest{
		{
			name: "empty array", method: http.MethodPost, path: "/api/students/import", token: token, body: []byte(`[]`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Invalid data format: expected a non-empty array of students"}),
		},
		{
			name: "not an array", method: http.MethodPost, path: "/api/students/import", token: token, body: []byte(`{"first_name":"Awa"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Invalid data format: expected a non-empty array of students"}),
		},
		{
			name: "all rows imported", method: http.MethodPost, path: "/api/students/import", token: token,
			body:     []byte(`[{"first_name":"Awa","last_name":"Ba"},{"last_name":"Diop"}]`),
			wantData: marchallObj(t, student.ImportResult{Message: "Import completed", Imported: 2, ErrorDetails: []student.ImportRowError{}}),
		},
	})

	rows := []byte(`[
		{"first_name":"Moussa","last_name":"Sow"},
		{"first_name":"Fatou","last_name":"Ndiaye","email":"not-an-email"},
		{"first_name":"Ibou","last_name":"Fall","phone":"+221 77 123 45 67 89 00 11"}
	]`)
	rec := env.serve(http.MethodPost, "/api/students/import", token, rows)
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())

	var res student.ImportResult
	unmarshal(t, rec, &res)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Errors)
	require.Len(t, res.ErrorDetails, 1)
	assert.Equal(t, 2, res.ErrorDetails[0].Row)
	assert.Equal(t, "Ndiaye Fatou", res.ErrorDetails[0].Student)
	assert.Contains(t, res.ErrorDetails[0].Error, "email")

	students, err := env.repos.Students.QueryStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 4)
	// defaults and truncation
	assert.Equal(t, "Unknown", students[2].FirstName)
	require.NotNil(t, students[0].Phone)
	assert.Len(t, *students[0].Phone, 20)
}

func Test_studentApi_importFile(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)

	f := excelize.NewFile()
	defer f.Close()
	for idx, row := range [][]interface{}{
		{"Имя", "Фамилия", "Телефон", "Пол"},
		{"Иван", "Иванов", "+7 900 000 00 00", "м"},
		{"Анна", "Петрова", "", "ж"},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, idx+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var xlsx bytes.Buffer
	require.NoError(t, f.Write(&xlsx))

	upload := func(field string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile(field, "students.xlsx")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/students/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.app.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("other", xlsx.Bytes())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload("file", []byte("first_name,last_name\nAwa,Ba\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload("file", xlsx.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res student.ImportResult
	unmarshal(t, rec, &res)
	assert.Equal(t, 2, res.Imported)
	assert.Zero(t, res.Errors)

	students, err := env.repos.Students.QueryStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Петрова", students[0].LastName)
	require.NotNil(t, students[1].Gender)
	assert.Equal(t, student.GenderMale, *students[1].Gender)
}

func Test_studentApi_exportAndTemplate(t *testing.T) {
	env := setup(t)
	_, token := env.adminToken(t)
	testutil.CreateStudent(t, env.repos.Students, "Awa", "Ba")
	testutil.CreateStudent(t, env.repos.Students, "Иван", "Иванов")

	rec := env.serve(http.MethodGet, "/api/students/export", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.serve(http.MethodGet, "/api/students/export", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "students.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rec = env.serve(http.MethodGet, "/api/students/import/template", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "students_import_template.xlsx")

	tmpl, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer tmpl.Close()
	rows, err = tmpl.GetRows(tmpl.GetSheetList()[0])
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "first_name", rows[0][0])
}
