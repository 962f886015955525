package student

import (
	"context"
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var ErrNotFound = core.NewNotFoundError("Student not found")

// import limits
const (
	importNameMax  = 100
	importPhoneMax = 20
	importEmailMax = 100

	importFirstNameDefault = "Unknown"
	importLastNameDefault  = "Unknown"
)

type (
	Repository interface {
		QueryStudents(ctx context.Context) ([]Student, error)
		// SearchStudents does a LIKE match on first, last and middle name, phone and email.
		SearchStudents(ctx context.Context, query string) ([]Student, error)
		GetStudent(ctx context.Context, id int64) (Student, error)
		CreateStudent(ctx context.Context, s Student) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		// DeleteStudent removes the student's memberships and enrollments, then the student, atomically.
		// It returns a ConflictError while payments reference the student.
		DeleteStudent(ctx context.Context, id int64) error
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}

	ImportRowError struct {
		Row     int    `json:"row"`
		Student string `json:"student"`
		Error   string `json:"error"`
	}

	ImportResult struct {
		Message      string           `json:"message"`
		Imported     int              `json:"imported"`
		Errors       int              `json:"errors"`
		ErrorDetails []ImportRowError `json:"errorDetails"`
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{repo: repo, validate: validate, translator: translator}
}

// List returns all students, newest first.
func (svc *Service) List(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx)
}

// Search returns the students matching query; a blank query lists everyone.
func (svc *Service) Search(ctx context.Context, query string) ([]Student, error) {
	query = core.CleanString(query)
	if query == "" {
		return svc.repo.QueryStudents(ctx)
	}
	return svc.repo.SearchStudents(ctx, query)
}

func (svc *Service) Get(ctx context.Context, id int64) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	s := Student{
		FirstName:    ns.FirstName,
		LastName:     ns.LastName,
		MiddleName:   ns.MiddleName,
		Phone:        ns.Phone,
		PhoneComment: ns.PhoneComment,
		Email:        ns.Email,
		BirthDate:    ns.BirthDate,
		Gender:       ns.Gender,
		Address:      ns.Address,
		Status:       ns.Status,
		Comment:      ns.Comment,
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	if ns.Balance != nil {
		s.Balance = *ns.Balance
	}
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) Update(ctx context.Context, id int64, us UpdateStudent) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, errors.Wrap(err, "finding student")
	}
	if us.FirstName != "" {
		s.FirstName = us.FirstName
	}
	if us.LastName != "" {
		s.LastName = us.LastName
	}
	if us.Status != "" {
		s.Status = us.Status
	}
	if us.Balance != nil {
		s.Balance = *us.Balance
	}
	s.MiddleName = us.MiddleName
	s.Phone = us.Phone
	s.PhoneComment = us.PhoneComment
	s.Email = us.Email
	s.BirthDate = us.BirthDate
	s.Gender = us.Gender
	s.Address = us.Address
	s.Comment = us.Comment
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	if _, err := svc.repo.GetStudent(ctx, id); err != nil {
		return errors.Wrap(err, "finding student")
	}
	return svc.repo.DeleteStudent(ctx, id)
}

// Import inserts rows one by one. A failing row is reported and the batch goes on.
func (svc *Service) Import(ctx context.Context, rows []NewStudent) (ImportResult, error) {
	if len(rows) == 0 {
		return ImportResult{}, core.NewValidationMessage("Invalid data format: expected a non-empty array of students")
	}

	res := ImportResult{Message: "Import completed", ErrorDetails: []ImportRowError{}}
	for idx, row := range rows {
		name := strings.TrimSpace(core.CleanString(row.LastName) + " " + core.CleanString(row.FirstName))
		row = prepareImportRow(row)

		if err := svc.validate.Struct(row); err != nil {
			res.ErrorDetails = append(res.ErrorDetails, ImportRowError{
				Row:     idx + 1,
				Student: name,
				Error:   joinFieldErrors(core.TranslateFieldErrors(err, svc.translator)),
			})
			continue
		}
		if _, err := svc.Create(ctx, row); err != nil {
			if ctx.Err() != nil {
				return ImportResult{}, errors.Wrap(err, "importing students")
			}
			res.ErrorDetails = append(res.ErrorDetails, ImportRowError{
				Row:     idx + 1,
				Student: name,
				Error:   importErrorMessage(err),
			})
			continue
		}
		res.Imported++
	}
	res.Errors = len(res.ErrorDetails)
	return res, nil
}

// prepareImportRow cleans the row, truncates the capped columns and applies defaults.
func prepareImportRow(row NewStudent) NewStudent {
	row.Clean()
	if row.FirstName == "" {
		row.FirstName = importFirstNameDefault
	}
	if row.LastName == "" {
		row.LastName = importLastNameDefault
	}
	row.FirstName = core.Truncate(row.FirstName, importNameMax)
	row.LastName = core.Truncate(row.LastName, importNameMax)
	if row.Phone != nil {
		row.Phone = core.StringPtr(core.Truncate(*row.Phone, importPhoneMax))
	}
	if row.Email != nil {
		row.Email = core.StringPtr(core.Truncate(*row.Email, importEmailMax))
	}
	if row.Status == "" {
		row.Status = StatusActive
	}
	return row
}

func joinFieldErrors(flds []core.FieldError) string {
	msgs := make([]string, 0, len(flds))
	for _, fld := range flds {
		if fld.Field == "" {
			msgs = append(msgs, fld.Error)
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fld.Field, fld.Error))
		}
	}
	return strings.Join(msgs, "; ")
}

// importErrorMessage keeps domain errors readable and hides storage errors.
func importErrorMessage(err error) string {
	switch {
	case core.IsValidation(err), core.IsConflict(err), core.IsNotFound(err):
		return errors.Cause(err).Error()
	default:
		return "could not save student"
	}
}
