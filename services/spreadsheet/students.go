package spreadsheet

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

const studentsSheet = "Students"

var (
	// studentColumns is the column order of the import template.
	studentColumns = []string{
		"first_name", "last_name", "middle_name", "phone", "phone_comment", "email",
		"birth_date", "gender", "address", "status", "balance", "comment",
	}

	templateExample = []interface{}{
		"Иван", "Иванов", "Иванович", "+7...", "", "ivan@example.com",
		"2005-01-01", "m/f", "", student.StatusActive, 0, "",
	}

	// headerAliases maps lower-cased header labels to their column key.
	headerAliases = map[string]string{
		"name":                   "first_name",
		"имя":                    "first_name",
		"фамилия":                "last_name",
		"отчество":               "middle_name",
		"телефон":                "phone",
		"комментарий к телефону": "phone_comment",
		"e-mail":                 "email",
		"дата рождения":          "birth_date",
		"пол":                    "gender",
		"адрес":                  "address",
		"комментарий":            "comment",
	}

	errEmptyFile = core.NewValidationMessage("Invalid data format: expected a non-empty array of students")
	errNoHeader  = core.NewValidationMessage("Invalid file: the first row must name the student columns")
)

// ParseStudents reads the first sheet of an xlsx workbook into import rows.
// The first row is the header; blank rows are skipped.
func ParseStudents(r io.Reader) ([]student.NewStudent, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "Invalid file: expected an .xlsx workbook"))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "reading rows")
	}
	if len(rows) < 2 {
		return nil, errEmptyFile
	}

	keys, ok := headerKeys(rows[0])
	if !ok {
		return nil, errNoHeader
	}

	students := make([]student.NewStudent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		values := make(map[string]string, len(keys))
		for idx, cell := range row {
			if idx < len(keys) && keys[idx] != "" {
				if v := strings.TrimSpace(cell); v != "" {
					values[keys[idx]] = v
				}
			}
		}
		if len(values) == 0 {
			continue
		}
		students = append(students, newStudent(values))
	}
	if len(students) == 0 {
		return nil, errEmptyFile
	}
	return students, nil
}

func headerKeys(header []string) ([]string, bool) {
	known := make(map[string]bool, len(studentColumns))
	for _, col := range studentColumns {
		known[col] = true
	}

	var found bool
	keys := make([]string, len(header))
	for idx, label := range header {
		label = strings.ToLower(strings.TrimSpace(label))
		if alias, ok := headerAliases[label]; ok {
			label = alias
		}
		if known[label] {
			keys[idx] = label
			found = true
		}
	}
	return keys, found
}

func newStudent(values map[string]string) student.NewStudent {
	opt := func(key string) *string {
		if v, ok := values[key]; ok {
			return &v
		}
		return nil
	}
	ns := student.NewStudent{
		FirstName:    values["first_name"],
		LastName:     values["last_name"],
		MiddleName:   opt("middle_name"),
		Phone:        opt("phone"),
		PhoneComment: opt("phone_comment"),
		Email:        opt("email"),
		BirthDate:    opt("birth_date"),
		Gender:       opt("gender"),
		Address:      opt("address"),
		Status:       values["status"],
		Comment:      opt("comment"),
	}
	if b, ok := values["balance"]; ok {
		if balance, err := strconv.ParseFloat(strings.ReplaceAll(b, ",", "."), 64); err == nil {
			ns.Balance = &balance
		}
	}
	return ns
}

// WriteTemplate writes the import template: the header row plus one example row.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", studentsSheet); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}
	header := make([]interface{}, len(studentColumns))
	for i, col := range studentColumns {
		header[i] = col
	}
	if err := writeRows(f, studentsSheet, [][]interface{}{header, templateExample}); err != nil {
		return err
	}
	if err := formatSheet(f, studentsSheet); err != nil {
		return err
	}
	return errors.Wrap(f.Write(w), "writing template")
}

var exportHeader = []interface{}{
	"ID", "Last name", "First name", "Middle name", "Phone", "Phone comment", "Email",
	"Birth date", "Gender", "Address", "Status", "Balance", "Comment", "Created at",
}

// ExportStudents writes students as an xlsx workbook with a single Students sheet.
func ExportStudents(w io.Writer, students []student.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", studentsSheet); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}

	rows := make([][]interface{}, 0, len(students)+1)
	rows = append(rows, exportHeader)
	for _, s := range students {
		rows = append(rows, []interface{}{
			s.ID, s.LastName, s.FirstName, deref(s.MiddleName), deref(s.Phone), deref(s.PhoneComment), deref(s.Email),
			deref(s.BirthDate), deref(s.Gender), deref(s.Address), s.Status, s.Balance, deref(s.Comment), s.CreatedAt,
		})
	}
	if err := writeRows(f, studentsSheet, rows); err != nil {
		return err
	}
	if err := formatSheet(f, studentsSheet); err != nil {
		return err
	}
	return errors.Wrap(f.Write(w), "writing export")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
