package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

const studentColumns = `s.id, s.first_name, s.last_name, s.middle_name, s.phone, s.phone_comment, s.email,
	s.birth_date, s.gender, s.address, s.status, s.balance, s.comment, s.created_at, s.updated_at`

type studentRepository struct {
	repo
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DB, conf *core.Config) *studentRepository {
	return &studentRepository{repo: newRepo(db, conf)}
}

func (r studentRepository) QueryStudents(ctx context.Context) ([]student.Student, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	students := make([]student.Student, 0)
	if err := r.db.SelectContext(ctx, &students, "SELECT "+studentColumns+" FROM students s ORDER BY s.id DESC"); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return students, nil
}

func (r studentRepository) SearchStudents(ctx context.Context, query string) ([]student.Student, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	like := "%" + query + "%"
	students := make([]student.Student, 0)
	err := r.db.SelectContext(ctx, &students,
		"SELECT "+studentColumns+` FROM students s
		WHERE s.first_name LIKE ? OR s.last_name LIKE ? OR s.middle_name LIKE ? OR s.phone LIKE ? OR s.email LIKE ?
		ORDER BY s.last_name, s.first_name`,
		like, like, like, like, like,
	)
	if err != nil {
		return nil, errors.Wrap(err, "searching students")
	}
	return students, nil
}

func (r studentRepository) GetStudent(ctx context.Context, id int64) (student.Student, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.get(ctx, id)
}

func (r studentRepository) get(ctx context.Context, id int64) (student.Student, error) {
	var s student.Student
	if err := r.db.GetContext(ctx, &s, "SELECT "+studentColumns+" FROM students s WHERE s.id = ?", id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "selecting student")
	}
	return s, nil
}

func (r studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO students (first_name, last_name, middle_name, phone, phone_comment, email,
			birth_date, gender, address, status, balance, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.FirstName, s.LastName, s.MiddleName, s.Phone, s.PhoneComment, s.Email,
		s.BirthDate, s.Gender, s.Address, s.Status, s.Balance, s.Comment,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	id, err := insertID(res, "inserting student")
	if err != nil {
		return student.Student{}, err
	}
	return r.get(ctx, id)
}

func (r studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`UPDATE students SET first_name = ?, last_name = ?, middle_name = ?, phone = ?, phone_comment = ?, email = ?,
			birth_date = ?, gender = ?, address = ?, status = ?, balance = ?, comment = ?
		WHERE id = ?`,
		s.FirstName, s.LastName, s.MiddleName, s.Phone, s.PhoneComment, s.Email,
		s.BirthDate, s.Gender, s.Address, s.Status, s.Balance, s.Comment, s.ID,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return r.get(ctx, s.ID)
}

func (r studentRepository) DeleteStudent(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return core.InTx(ctx, r.db, func(tx core.DBTransactor) error {
		stmts := []struct{ q, msg string }{
			{"DELETE FROM group_students WHERE student_id = ?", "deleting memberships"},
			{"DELETE FROM enrollments WHERE student_id = ?", "deleting enrollments"},
			{"DELETE FROM students WHERE id = ?", "deleting student"},
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt.q, id); err != nil {
				if isReferenced(err) {
					return core.NewConflictError("Student has payments and cannot be deleted")
				}
				return errors.Wrap(err, stmt.msg)
			}
		}
		return nil
	})
}
