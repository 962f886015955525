package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/lesson"
)

const lessonViewQuery = `SELECT l.id, l.teacher_id, l.subject, l.subject_id, l.group_id, l.lesson_date, l.start_time, l.end_time,
	l.max_students, l.description, l.status, l.reschedule_reason, l.created_at, l.updated_at,
	t.first_name AS teacher_first_name,
	t.last_name AS teacher_last_name,
	t.middle_name AS teacher_middle_name,
	s.name AS subject_name,
	g.name AS group_name,
	(SELECT COUNT(*) FROM enrollments e WHERE e.lesson_id = l.id AND e.status = 'enrolled') AS enrolled_count
FROM lessons l
LEFT JOIN teachers t ON t.id = l.teacher_id
LEFT JOIN subjects s ON s.id = l.subject_id
LEFT JOIN lesson_groups g ON g.id = l.group_id`

// autoEnrollQuery enrolls every group member that has no enrollment row on the lesson yet.
const autoEnrollQuery = `INSERT INTO enrollments (lesson_id, student_id, status, enrollment_date)
SELECT ?, gs.student_id, 'enrolled', UTC_TIMESTAMP()
FROM group_students gs
WHERE gs.group_id = ?
	AND NOT EXISTS (SELECT 1 FROM enrollments e WHERE e.lesson_id = ? AND e.student_id = gs.student_id)`

var (
	lessonOrderings = map[string]string{"lesson_date": "l.lesson_date", "start_time": "l.start_time"}

	errLessonRefs = core.NewValidationMessage("Unknown teacher, subject or group")
)

type lessonRepository struct {
	repo
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db core.DB, conf *core.Config) *lessonRepository {
	return &lessonRepository{repo: newRepo(db, conf)}
}

func (r lessonRepository) QueryLessons(ctx context.Context, filter lesson.QueryFilter, ordering []core.DBOrdering) ([]lesson.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var w where
	if filter.StartDate != "" {
		w.add("l.lesson_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		w.add("l.lesson_date <= ?", filter.EndDate)
	}
	if filter.TeacherID != nil {
		w.add("l.teacher_id = ?", *filter.TeacherID)
	}
	if filter.SubjectID != nil {
		w.add("l.subject_id = ?", *filter.SubjectID)
	}
	if filter.GroupID != nil {
		w.add("l.group_id = ?", *filter.GroupID)
	}
	if filter.Status != "" {
		w.add("l.status = ?", filter.Status)
	}

	lessons := make([]lesson.View, 0)
	q := lessonViewQuery + w.String() + orderBy(ordering, lessonOrderings)
	if err := r.db.SelectContext(ctx, &lessons, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting lessons")
	}
	return lessons, nil
}

func (r lessonRepository) GetLesson(ctx context.Context, id int64) (lesson.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.get(ctx, r.db, id)
}

func (r lessonRepository) get(ctx context.Context, exec core.DBExecutor, id int64) (lesson.View, error) {
	var l lesson.View
	if err := exec.GetContext(ctx, &l, lessonViewQuery+" WHERE l.id = ?", id); err != nil {
		return lesson.View{}, trapNoRowsErr(err, lesson.ErrNotFound, "selecting lesson")
	}
	return l, nil
}

func (r lessonRepository) QueryAttendees(ctx context.Context, lessonID int64) ([]lesson.Attendee, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	attendees := make([]lesson.Attendee, 0)
	err := r.db.SelectContext(ctx, &attendees,
		`SELECT e.id AS enrollment_id, e.status AS attendance_status, s.id AS student_id,
			s.first_name, s.last_name, s.middle_name, s.phone
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		WHERE e.lesson_id = ?
		ORDER BY s.last_name, s.first_name`,
		lessonID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting lesson students")
	}
	return attendees, nil
}

func (r lessonRepository) CreateLesson(ctx context.Context, l lesson.Lesson, autoEnroll bool) (lesson.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var created lesson.View
	err := core.InTx(ctx, r.db, func(tx core.DBTransactor) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO lessons (teacher_id, subject, subject_id, group_id, lesson_date, start_time, end_time,
				max_students, description, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.TeacherID, l.Subject, l.SubjectID, l.GroupID, l.LessonDate, l.StartTime, l.EndTime,
			l.MaxStudents, l.Description, l.Status,
		)
		if err != nil {
			if isMissingReference(err) {
				return errLessonRefs
			}
			return errors.Wrap(err, "inserting lesson")
		}
		id, err := insertID(res, "inserting lesson")
		if err != nil {
			return err
		}
		if autoEnroll && l.GroupID != nil {
			if err := r.autoEnroll(ctx, tx, id, *l.GroupID); err != nil {
				return err
			}
		}
		created, err = r.get(ctx, tx, id)
		return err
	})
	return created, err
}

func (r lessonRepository) UpdateLesson(ctx context.Context, l lesson.Lesson, autoEnroll bool) (lesson.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var updated lesson.View
	err := core.InTx(ctx, r.db, func(tx core.DBTransactor) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE lessons SET teacher_id = ?, subject = ?, subject_id = ?, group_id = ?, lesson_date = ?,
				start_time = ?, end_time = ?, max_students = ?, description = ?, status = ?, reschedule_reason = ?
			WHERE id = ?`,
			l.TeacherID, l.Subject, l.SubjectID, l.GroupID, l.LessonDate,
			l.StartTime, l.EndTime, l.MaxStudents, l.Description, l.Status, l.RescheduleReason, l.ID,
		)
		if err != nil {
			if isMissingReference(err) {
				return errLessonRefs
			}
			return errors.Wrap(err, "updating lesson")
		}
		if autoEnroll && l.GroupID != nil {
			if err := r.autoEnroll(ctx, tx, l.ID, *l.GroupID); err != nil {
				return err
			}
		}
		updated, err = r.get(ctx, tx, l.ID)
		return err
	})
	return updated, err
}

func (r lessonRepository) autoEnroll(ctx context.Context, tx core.DBExecutor, lessonID, groupID int64) error {
	if _, err := tx.ExecContext(ctx, autoEnrollQuery, lessonID, groupID, lessonID); err != nil {
		return errors.Wrap(err, "enrolling group students")
	}
	return nil
}

func (r lessonRepository) DeleteLesson(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return core.InTx(ctx, r.db, func(tx core.DBTransactor) error {
		stmts := []struct{ q, msg string }{
			{"DELETE FROM enrollments WHERE lesson_id = ?", "deleting enrollments"},
			{"UPDATE payments SET lesson_id = NULL WHERE lesson_id = ?", "detaching payments"},
			{"DELETE FROM lessons WHERE id = ?", "deleting lesson"},
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt.q, id); err != nil {
				return errors.Wrap(err, stmt.msg)
			}
		}
		return nil
	})
}

func (r lessonRepository) LessonStats(ctx context.Context, today, weekEnd string, teacherID *int64) (lesson.Stats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	w := where{args: []interface{}{today, today, weekEnd}}
	if teacherID != nil {
		w.add("teacher_id = ?", *teacherID)
	}

	var stats lesson.Stats
	err := r.db.GetContext(ctx, &stats,
		`SELECT COUNT(*) AS total_lessons,
			COALESCE(SUM(status = 'scheduled'), 0) AS scheduled_lessons,
			COALESCE(SUM(status = 'completed'), 0) AS completed_lessons,
			COALESCE(SUM(status = 'cancelled'), 0) AS cancelled_lessons,
			COALESCE(SUM(lesson_date = ?), 0) AS lessons_today,
			COALESCE(SUM(lesson_date >= ? AND lesson_date < ?), 0) AS lessons_this_week
		FROM lessons`+w.String(),
		w.args...,
	)
	if err != nil {
		return lesson.Stats{}, errors.Wrap(err, "counting lessons")
	}
	return stats, nil
}
