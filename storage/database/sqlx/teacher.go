package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/teacher"
)

const teacherColumns = "id, first_name, last_name, middle_name, phone, email, specialization, notes, status, created_at, updated_at"

var errUnknownSubject = core.NewValidationError(nil, core.FieldError{Field: "subject_ids", Error: "unknown subject"})

type teacherRepository struct {
	repo
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db core.DB, conf *core.Config) *teacherRepository {
	return &teacherRepository{repo: newRepo(db, conf)}
}

func (r teacherRepository) QueryTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	teachers := make([]teacher.Teacher, 0)
	q := "SELECT " + teacherColumns + " FROM teachers ORDER BY last_name, first_name"
	if err := r.db.SelectContext(ctx, &teachers, q); err != nil {
		return nil, errors.Wrap(err, "selecting teachers")
	}
	return teachers, nil
}

func (r teacherRepository) GetTeacher(ctx context.Context, id int64) (teacher.Teacher, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.get(ctx, id)
}

func (r teacherRepository) get(ctx context.Context, id int64) (teacher.Teacher, error) {
	var t teacher.Teacher
	if err := r.db.GetContext(ctx, &t, "SELECT "+teacherColumns+" FROM teachers WHERE id = ?", id); err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound, "selecting teacher")
	}
	return t, nil
}

func (r teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO teachers (first_name, last_name, middle_name, phone, email, specialization, notes, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.FirstName, t.LastName, t.MiddleName, t.Phone, t.Email, t.Specialization, t.Notes, t.Status,
	)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	id, err := insertID(res, "inserting teacher")
	if err != nil {
		return teacher.Teacher{}, err
	}
	return r.get(ctx, id)
}

func (r teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`UPDATE teachers SET first_name = ?, last_name = ?, middle_name = ?, phone = ?, email = ?,
		specialization = ?, notes = ?, status = ? WHERE id = ?`,
		t.FirstName, t.LastName, t.MiddleName, t.Phone, t.Email, t.Specialization, t.Notes, t.Status, t.ID,
	)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	return r.get(ctx, t.ID)
}

func (r teacherRepository) DeleteTeacher(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return core.InTx(ctx, r.db, func(tx core.DBTransactor) error {
		stmts := []struct{ q, msg string }{
			{"UPDATE lessons SET teacher_id = NULL WHERE teacher_id = ?", "detaching lessons"},
			{"UPDATE users SET teacher_id = NULL WHERE teacher_id = ?", "detaching users"},
			{"DELETE FROM teacher_subjects WHERE teacher_id = ?", "deleting teacher subjects"},
			{"DELETE FROM teachers WHERE id = ?", "deleting teacher"},
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt.q, id); err != nil {
				if isReferenced(err) {
					return core.NewConflictError("Teacher still has groups and cannot be deleted")
				}
				return errors.Wrap(err, stmt.msg)
			}
		}
		return nil
	})
}

func (r teacherRepository) QueryTeacherSubjects(ctx context.Context, teacherID int64) ([]subject.Subject, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	subjs := make([]subject.Subject, 0)
	err := r.db.SelectContext(ctx, &subjs,
		`SELECT s.id, s.name, s.description, s.is_active, s.created_at
		FROM teacher_subjects ts
		JOIN subjects s ON s.id = ts.subject_id
		WHERE ts.teacher_id = ?
		ORDER BY s.name`,
		teacherID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting teacher subjects")
	}
	return subjs, nil
}

func (r teacherRepository) SetTeacherSubjects(ctx context.Context, teacherID int64, subjectIDs []int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return core.InTx(ctx, r.db, func(tx core.DBTransactor) error {
		err := replaceLinks(ctx, tx, "teacher_subjects", "teacher_id", "subject_id", teacherID, subjectIDs)
		if isMissingReference(err) {
			return errUnknownSubject
		}
		return err
	})
}

func (r teacherRepository) HasSubject(ctx context.Context, teacherID, subjectID int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM teacher_subjects WHERE teacher_id = ? AND subject_id = ?)",
		teacherID, subjectID,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking teacher subject")
	}
	return exists, nil
}

func (r teacherRepository) GroupBelongsTo(ctx context.Context, groupID, teacherID, subjectID int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM lesson_groups WHERE id = ? AND teacher_id = ? AND subject_id = ?)",
		groupID, teacherID, subjectID,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking group assignment")
	}
	return exists, nil
}
