package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/student"
)

const groupViewQuery = `SELECT g.id, g.name, g.subject_id, g.teacher_id, g.max_students, g.status, g.notes,
	g.created_at, g.updated_at,
	s.name AS subject_name,
	t.first_name AS teacher_first_name,
	t.last_name AS teacher_last_name,
	(SELECT COUNT(*) FROM group_students gs WHERE gs.group_id = g.id) AS student_count
FROM lesson_groups g
LEFT JOIN subjects s ON s.id = g.subject_id
LEFT JOIN teachers t ON t.id = g.teacher_id`

var (
	errGroupRefs       = core.NewValidationMessage("Unknown subject or teacher")
	errUnknownStudents = core.NewValidationError(nil, core.FieldError{Field: "student_ids", Error: "unknown student"})
)

type groupRepository struct {
	repo
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db core.DB, conf *core.Config) *groupRepository {
	return &groupRepository{repo: newRepo(db, conf)}
}

func (r groupRepository) QueryGroups(ctx context.Context, filter group.QueryFilter) ([]group.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var w where
	if filter.TeacherID != nil {
		w.add("g.teacher_id = ?", *filter.TeacherID)
	}
	if filter.SubjectID != nil {
		w.add("g.subject_id = ?", *filter.SubjectID)
	}
	if filter.Status != "" {
		w.add("g.status = ?", filter.Status)
	}

	groups := make([]group.View, 0)
	if err := r.db.SelectContext(ctx, &groups, groupViewQuery+w.String()+" ORDER BY g.name", w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting groups")
	}
	return groups, nil
}

func (r groupRepository) GetGroup(ctx context.Context, id int64) (group.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.get(ctx, id)
}

func (r groupRepository) get(ctx context.Context, id int64) (group.View, error) {
	var g group.View
	if err := r.db.GetContext(ctx, &g, groupViewQuery+" WHERE g.id = ?", id); err != nil {
		return group.View{}, trapNoRowsErr(err, group.ErrNotFound, "selecting group")
	}
	return g, nil
}

func (r groupRepository) CreateGroup(ctx context.Context, g group.Group) (group.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO lesson_groups (name, subject_id, teacher_id, max_students, status, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.Name, g.SubjectID, g.TeacherID, g.MaxStudents, g.Status, g.Notes,
	)
	if err != nil {
		if isMissingReference(err) {
			return group.View{}, errGroupRefs
		}
		return group.View{}, errors.Wrap(err, "inserting group")
	}
	id, err := insertID(res, "inserting group")
	if err != nil {
		return group.View{}, err
	}
	return r.get(ctx, id)
}

func (r groupRepository) UpdateGroup(ctx context.Context, g group.Group) (group.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`UPDATE lesson_groups SET name = ?, subject_id = ?, teacher_id = ?, max_students = ?, status = ?, notes = ?
		WHERE id = ?`,
		g.Name, g.SubjectID, g.TeacherID, g.MaxStudents, g.Status, g.Notes, g.ID,
	)
	if err != nil {
		if isMissingReference(err) {
			return group.View{}, errGroupRefs
		}
		return group.View{}, errors.Wrap(err, "updating group")
	}
	return r.get(ctx, g.ID)
}

func (r groupRepository) DeleteGroup(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return core.InTx(ctx, r.db, func(tx core.DBTransactor) error {
		stmts := []struct{ q, msg string }{
			{"DELETE FROM group_students WHERE group_id = ?", "deleting group students"},
			{"UPDATE lessons SET group_id = NULL WHERE group_id = ?", "detaching lessons"},
			{"DELETE FROM lesson_groups WHERE id = ?", "deleting group"},
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt.q, id); err != nil {
				return errors.Wrap(err, stmt.msg)
			}
		}
		return nil
	})
}

func (r groupRepository) QueryGroupStudents(ctx context.Context, groupID int64) ([]student.Student, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	students := make([]student.Student, 0)
	err := r.db.SelectContext(ctx, &students,
		"SELECT "+studentColumns+` FROM group_students gs
		JOIN students s ON s.id = gs.student_id
		WHERE gs.group_id = ?
		ORDER BY s.last_name, s.first_name`,
		groupID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting group students")
	}
	return students, nil
}

func (r groupRepository) SetGroupStudents(ctx context.Context, groupID int64, studentIDs []int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return core.InTx(ctx, r.db, func(tx core.DBTransactor) error {
		err := replaceLinks(ctx, tx, "group_students", "group_id", "student_id", groupID, studentIDs)
		if isMissingReference(err) {
			return errUnknownStudents
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE lesson_groups SET max_students = ? WHERE id = ?", len(studentIDs), groupID); err != nil {
			return errors.Wrap(err, "updating group size")
		}
		return nil
	})
}
