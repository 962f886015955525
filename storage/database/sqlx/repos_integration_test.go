//go:build integration
// +build integration

package sqlxrepos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/payment"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/tests"
)

// TestRepositories shares one MySQL container; every subtest starts from empty tables.
func TestRepositories(t *testing.T) {
	db, conf := testutil.PrepareDB(t)
	repos := testutil.SQLRepos(db, conf)
	ctx := context.Background()

	run := func(name string, fn func(t *testing.T)) {
		t.Run(name, func(t *testing.T) {
			testutil.ResetDB(t, db)
			fn(t)
		})
	}

	run("users", func(t *testing.T) {
		tchr := testutil.CreateTeacher(t, repos.Teachers, "Amina", "Diallo")
		admin := testutil.CreateUser(t, repos.Users, "admin@test.cd", "s3cure-pass", core.RoleAdmin, nil, true)
		linked := testutil.CreateUser(t, repos.Users, "amina@test.cd", "s3cure-pass", core.RoleTeacher, &tchr.ID, true)

		_, err := repos.Users.CreateUser(ctx, user.User{Email: "admin@test.cd", Role: core.RoleAdmin, PasswordHash: []byte("x")})
		assert.Equal(t, user.ErrEmailExists, err)

		count, err := repos.Users.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		got, err := repos.Users.GetUserByEmail(ctx, "amina@test.cd")
		require.NoError(t, err)
		assert.Equal(t, linked.ID, got.ID)
		assert.NoError(t, got.CheckPassword("s3cure-pass"))

		views, err := repos.Users.QueryUsers(ctx)
		require.NoError(t, err)
		require.Len(t, views, 2)
		ids := []int64{views[0].ID, views[1].ID}
		assert.ElementsMatch(t, []int64{admin.ID, linked.ID}, ids)

		require.NoError(t, repos.Users.SetLastLogin(ctx, admin.ID, "2024-09-02 10:00:00"))
		got, err = repos.Users.GetUser(ctx, admin.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastLogin)
		assert.Equal(t, "2024-09-02 10:00:00", *got.LastLogin)

		_, err = repos.Users.GetUser(ctx, 999)
		assert.True(t, core.IsNotFound(err))
	})

	run("teacher subjects and groups", func(t *testing.T) {
		diallo := testutil.CreateTeacher(t, repos.Teachers, "Amina", "Diallo")
		ba := testutil.CreateTeacher(t, repos.Teachers, "Oumar", "Ba")
		math := testutil.CreateSubject(t, repos.Subjects, "Math")
		art := testutil.CreateSubject(t, repos.Subjects, "Art")
		testutil.AssignSubjects(t, repos.Teachers, diallo.ID, math.ID, art.ID)
		grp := testutil.CreateGroup(t, repos.Groups, "Math A", diallo.ID, math.ID)

		subjs, err := repos.Teachers.QueryTeacherSubjects(ctx, diallo.ID)
		require.NoError(t, err)
		require.Len(t, subjs, 2)
		assert.Equal(t, "Art", subjs[0].Name)

		ok, err := repos.Teachers.HasSubject(ctx, ba.ID, math.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = repos.Teachers.GroupBelongsTo(ctx, grp.ID, diallo.ID, math.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repos.Teachers.GroupBelongsTo(ctx, grp.ID, diallo.ID, art.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		teachers, err := repos.Teachers.QueryTeachers(ctx)
		require.NoError(t, err)
		require.Len(t, teachers, 2)
		assert.Equal(t, "Ba", teachers[0].LastName)

		err = repos.Teachers.DeleteTeacher(ctx, diallo.ID)
		assert.True(t, core.IsConflict(err), "unexpected error %v", err)
		err = repos.Subjects.DeleteSubject(ctx, math.ID)
		assert.True(t, core.IsConflict(err), "unexpected error %v", err)

		require.NoError(t, repos.Groups.DeleteGroup(ctx, grp.ID))
		require.NoError(t, repos.Teachers.DeleteTeacher(ctx, diallo.ID))
		_, err = repos.Teachers.GetTeacher(ctx, diallo.ID)
		assert.True(t, core.IsNotFound(err))
	})

	run("students search", func(t *testing.T) {
		testutil.CreateStudent(t, repos.Students, "Awa", "Ba")
		ivan := testutil.CreateStudent(t, repos.Students, "Иван", "Иванов")

		found, err := repos.Students.SearchStudents(ctx, "ива")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, ivan.ID, found[0].ID)

		all, err := repos.Students.QueryStudents(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	run("student delete", func(t *testing.T) {
		diallo := testutil.CreateTeacher(t, repos.Teachers, "Amina", "Diallo")
		math := testutil.CreateSubject(t, repos.Subjects, "Math")
		testutil.AssignSubjects(t, repos.Teachers, diallo.ID, math.ID)
		awa := testutil.CreateStudent(t, repos.Students, "Awa", "Ba")
		moussa := testutil.CreateStudent(t, repos.Students, "Moussa", "Sow")
		grp := testutil.CreateGroup(t, repos.Groups, "Math A", diallo.ID, math.ID, awa.ID, moussa.ID)
		p := testutil.CreatePayment(t, repos.Payments, payment.Payment{StudentID: moussa.ID, Amount: 100})

		// payments keep the student, and the rolled back tx keeps the roster
		err := repos.Students.DeleteStudent(ctx, moussa.ID)
		assert.True(t, core.IsConflict(err), "err = %v", err)
		got, err := repos.Payments.GetPayment(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, moussa.ID, got.StudentID)
		members, err := repos.Groups.QueryGroupStudents(ctx, grp.ID)
		require.NoError(t, err)
		assert.Len(t, members, 2)

		require.NoError(t, repos.Students.DeleteStudent(ctx, awa.ID))
		_, err = repos.Students.GetStudent(ctx, awa.ID)
		assert.True(t, core.IsNotFound(err))
		members, err = repos.Groups.QueryGroupStudents(ctx, grp.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, moussa.ID, members[0].ID)
	})

	run("lessons, enrollments and payments", func(t *testing.T) {
		diallo := testutil.CreateTeacher(t, repos.Teachers, "Amina", "Diallo")
		math := testutil.CreateSubject(t, repos.Subjects, "Math")
		testutil.AssignSubjects(t, repos.Teachers, diallo.ID, math.ID)
		awa := testutil.CreateStudent(t, repos.Students, "Awa", "Ba")
		moussa := testutil.CreateStudent(t, repos.Students, "Moussa", "Sow")
		grp := testutil.CreateGroup(t, repos.Groups, "Math A", diallo.ID, math.ID, awa.ID, moussa.ID)

		l, err := repos.Lessons.CreateLesson(ctx, lesson.Lesson{
			TeacherID: &diallo.ID, SubjectID: &math.ID, GroupID: &grp.ID,
			LessonDate: "2024-09-02", StartTime: "10:00:00", EndTime: "11:00:00",
			MaxStudents: lesson.DefaultMaxStudents, Status: lesson.StatusScheduled,
		}, true)
		require.NoError(t, err)
		assert.Equal(t, 2, l.EnrolledCount)

		// auto-enrollment does not duplicate rows
		l, err = repos.Lessons.UpdateLesson(ctx, l.Lesson, true)
		require.NoError(t, err)
		assert.Equal(t, 2, l.EnrolledCount)

		attendees, err := repos.Lessons.QueryAttendees(ctx, l.ID)
		require.NoError(t, err)
		assert.Len(t, attendees, 2)

		enrolled, err := repos.Enrollments.HasEnrolled(ctx, l.ID, awa.ID)
		require.NoError(t, err)
		assert.True(t, enrolled)

		es, err := repos.Enrollments.QueryEnrollments(ctx, enrollment.QueryFilter{StudentID: &awa.ID})
		require.NoError(t, err)
		require.Len(t, es, 1)
		_, err = repos.Enrollments.UpdateEnrollmentStatus(ctx, es[0].ID, enrollment.StatusPresent)
		require.NoError(t, err)

		day, err := repos.Enrollments.QueryDayLessons(ctx, enrollment.DayFilter{Date: "2024-09-02"})
		require.NoError(t, err)
		require.Len(t, day, 1)
		assert.Equal(t, 2, day[0].TotalEnrolled)
		assert.Equal(t, 1, day[0].TotalPresent)

		p := testutil.CreatePayment(t, repos.Payments, payment.Payment{StudentID: awa.ID, LessonID: &l.ID, Amount: 100})
		require.NotNil(t, p.TeacherID)
		assert.Equal(t, diallo.ID, *p.TeacherID)

		stats, err := repos.Payments.PaymentStats(ctx, "2024-09-01", &diallo.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.Stats{TotalPayments: 1, TotalAmount: 100, AmountLastMonth: 100}, stats)

		require.NoError(t, repos.Lessons.DeleteLesson(ctx, l.ID))
		p, err = repos.Payments.GetPayment(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, p.LessonID)
		es, err = repos.Enrollments.QueryEnrollments(ctx, enrollment.QueryFilter{})
		require.NoError(t, err)
		assert.Empty(t, es)
	})
}
