package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, writeRows(f, "Sheet1", rows))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseStudents(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Имя", "Фамилия", "Телефон", "E-mail", "balance", "unknown"},
		[]interface{}{" Иван ", "Иванов", "+7 900 000 00 00", "ivan@example.com", "12,5", "ignored"},
		[]interface{}{"", "", "", "", "", ""},
		[]interface{}{"Anna", "Smith"},
	)

	rows, err := ParseStudents(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Иван", rows[0].FirstName)
	assert.Equal(t, "Иванов", rows[0].LastName)
	require.NotNil(t, rows[0].Phone)
	assert.Equal(t, "+7 900 000 00 00", *rows[0].Phone)
	require.NotNil(t, rows[0].Email)
	assert.Equal(t, "ivan@example.com", *rows[0].Email)
	require.NotNil(t, rows[0].Balance)
	assert.Equal(t, 12.5, *rows[0].Balance)

	assert.Equal(t, "Anna", rows[1].FirstName)
	assert.Nil(t, rows[1].Phone)
	assert.Nil(t, rows[1].Balance)
}

func TestParseStudents_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   *bytes.Buffer
		wantErr string
	}{
		{
			name:    "not a workbook",
			input:   bytes.NewBufferString("first_name,last_name"),
			wantErr: "Invalid file",
		},
		{
			name:    "header only",
			input:   workbook(t, []interface{}{"first_name", "last_name"}),
			wantErr: "non-empty array",
		},
		{
			name:    "unknown header",
			input:   workbook(t, []interface{}{"foo", "bar"}, []interface{}{"a", "b"}),
			wantErr: "first row",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseStudents(tc.input)
			require.Error(t, err)
			assert.True(t, core.IsValidation(err))
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	rows, err := ParseStudents(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Иван", rows[0].FirstName)
	assert.Equal(t, "Иванов", rows[0].LastName)
	assert.Equal(t, student.StatusActive, rows[0].Status)
}

func TestExportStudents(t *testing.T) {
	students := []student.Student{
		{ID: 2, FirstName: "Anna", LastName: "Smith", Phone: core.StringPtr("555"), Status: student.StatusActive, Balance: -10},
		{ID: 1, FirstName: "Иван", LastName: "Иванов", Status: student.StatusArchived},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportStudents(&buf, students))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{studentsSheet}, f.GetSheetList())
	rows, err := f.GetRows(studentsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, []string{"2", "Smith", "Anna", "", "555"}, rows[1][:5])
	assert.True(t, strings.HasPrefix(rows[2][1], "Иванов"))
}
