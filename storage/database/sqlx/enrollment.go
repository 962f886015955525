package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
)

const enrollmentViewQuery = `SELECT e.id, e.lesson_id, e.student_id, e.status, e.enrollment_date,
	s.first_name AS student_first_name,
	s.last_name AS student_last_name,
	s.middle_name AS student_middle_name,
	s.phone AS student_phone,
	l.subject AS lesson_subject,
	l.lesson_date, l.start_time, l.end_time, l.teacher_id,
	t.first_name AS teacher_first_name,
	t.last_name AS teacher_last_name
FROM enrollments e
JOIN students s ON s.id = e.student_id
JOIN lessons l ON l.id = e.lesson_id
LEFT JOIN teachers t ON t.id = l.teacher_id`

const dayLessonQuery = `SELECT l.id, l.teacher_id, l.subject, l.subject_id, l.group_id, l.lesson_date, l.start_time, l.end_time,
	l.max_students, l.description, l.status, l.reschedule_reason, l.created_at, l.updated_at,
	t.first_name AS teacher_first_name,
	t.last_name AS teacher_last_name,
	t.middle_name AS teacher_middle_name,
	sj.name AS subject_name,
	g.name AS group_name,
	(SELECT COUNT(*) FROM enrollments e WHERE e.lesson_id = l.id AND e.status = 'enrolled') AS enrolled_count,
	(SELECT COUNT(*) FROM enrollments e WHERE e.lesson_id = l.id) AS total_enrolled,
	(SELECT COUNT(*) FROM enrollments e WHERE e.lesson_id = l.id AND e.status = 'present') AS total_present,
	(SELECT COUNT(*) FROM enrollments e WHERE e.lesson_id = l.id AND e.status = 'absent') AS total_absent
FROM lessons l
LEFT JOIN teachers t ON t.id = l.teacher_id
LEFT JOIN subjects sj ON sj.id = l.subject_id
LEFT JOIN lesson_groups g ON g.id = l.group_id`

var errEnrollmentRefs = core.NewValidationMessage("Unknown lesson or student")

type enrollmentRepository struct {
	repo
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db core.DB, conf *core.Config) *enrollmentRepository {
	return &enrollmentRepository{repo: newRepo(db, conf)}
}

func (r enrollmentRepository) QueryEnrollments(ctx context.Context, filter enrollment.QueryFilter) ([]enrollment.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var w where
	if filter.TeacherID != nil {
		w.add("l.teacher_id = ?", *filter.TeacherID)
	}
	if filter.LessonID != nil {
		w.add("e.lesson_id = ?", *filter.LessonID)
	}
	if filter.StudentID != nil {
		w.add("e.student_id = ?", *filter.StudentID)
	}
	if filter.Status != "" {
		w.add("e.status = ?", filter.Status)
	}

	enrollments := make([]enrollment.View, 0)
	q := enrollmentViewQuery + w.String() + " ORDER BY e.enrollment_date DESC, e.id DESC"
	if err := r.db.SelectContext(ctx, &enrollments, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}
	return enrollments, nil
}

func (r enrollmentRepository) GetEnrollment(ctx context.Context, id int64) (enrollment.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.get(ctx, id)
}

func (r enrollmentRepository) get(ctx context.Context, id int64) (enrollment.View, error) {
	var e enrollment.View
	if err := r.db.GetContext(ctx, &e, enrollmentViewQuery+" WHERE e.id = ?", id); err != nil {
		return enrollment.View{}, trapNoRowsErr(err, enrollment.ErrNotFound, "selecting enrollment")
	}
	return e, nil
}

func (r enrollmentRepository) CreateEnrollment(ctx context.Context, e enrollment.Enrollment) (enrollment.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO enrollments (lesson_id, student_id, status, enrollment_date) VALUES (?, ?, ?, ?)",
		e.LessonID, e.StudentID, e.Status, e.EnrollmentDate,
	)
	if err != nil {
		if isMissingReference(err) {
			return enrollment.View{}, errEnrollmentRefs
		}
		return enrollment.View{}, errors.Wrap(err, "inserting enrollment")
	}
	id, err := insertID(res, "inserting enrollment")
	if err != nil {
		return enrollment.View{}, err
	}
	return r.get(ctx, id)
}

func (r enrollmentRepository) UpdateEnrollmentStatus(ctx context.Context, id int64, status string) (enrollment.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, "UPDATE enrollments SET status = ? WHERE id = ?", status, id); err != nil {
		return enrollment.View{}, errors.Wrap(err, "updating enrollment")
	}
	return r.get(ctx, id)
}

func (r enrollmentRepository) DeleteEnrollment(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM enrollments WHERE id = ?", id); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return nil
}

func (r enrollmentRepository) HasEnrolled(ctx context.Context, lessonID, studentID int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM enrollments WHERE lesson_id = ? AND student_id = ? AND status = 'enrolled')",
		lessonID, studentID,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return exists, nil
}

func (r enrollmentRepository) IsGroupMember(ctx context.Context, groupID, studentID int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM group_students WHERE group_id = ? AND student_id = ?)",
		groupID, studentID,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking group membership")
	}
	return exists, nil
}

func (r enrollmentRepository) QueryDayLessons(ctx context.Context, filter enrollment.DayFilter) ([]enrollment.DayLesson, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var w where
	w.add("l.lesson_date = ?", filter.Date)
	if filter.TeacherID != nil {
		w.add("l.teacher_id = ?", *filter.TeacherID)
	}
	if filter.GroupID != nil {
		w.add("l.group_id = ?", *filter.GroupID)
	}

	lessons := make([]enrollment.DayLesson, 0)
	if err := r.db.SelectContext(ctx, &lessons, dayLessonQuery+w.String()+" ORDER BY l.start_time", w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting day lessons")
	}
	return lessons, nil
}
