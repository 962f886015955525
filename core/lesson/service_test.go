package lesson_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/tests"
)

func setup(t *testing.T) (*lesson.Service, testutil.Repos) {
	repos := testutil.DummyRepos(t)
	return lesson.NewService(repos.Lessons, teacher.NewService(repos.Teachers)), repos
}

func admin() core.Actor {
	return core.Actor{UserID: 1, Role: core.RoleAdmin}
}

func teacherActor(teacherID *int64) core.Actor {
	return core.Actor{UserID: 2, Role: core.RoleTeacher, TeacherID: teacherID}
}

func newLesson(teacherID *int64) lesson.NewLesson {
	return lesson.NewLesson{
		TeacherID:  teacherID,
		LessonDate: "2024-09-02",
		StartTime:  "10:00:00",
		EndTime:    "11:00:00",
	}
}

func TestService_Create(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	diallo := testutil.CreateTeacher(t, repos.Teachers, "Amina", "Diallo")
	ba := testutil.CreateTeacher(t, repos.Teachers, "Oumar", "Ba")
	math := testutil.CreateSubject(t, repos.Subjects, "Math")
	art := testutil.CreateSubject(t, repos.Subjects, "Art")
	testutil.AssignSubjects(t, repos.Teachers, diallo.ID, math.ID)
	testutil.AssignSubjects(t, repos.Teachers, ba.ID, math.ID)
	grp := testutil.CreateGroup(t, repos.Groups, "Math A", diallo.ID, math.ID)

	withGroup := func(nl lesson.NewLesson, subjectID, groupID int64) lesson.NewLesson {
		nl.SubjectID, nl.GroupID = &subjectID, &groupID
		return nl
	}

	tests := []struct {
		name     string
		actor    core.Actor
		nl       lesson.NewLesson
		checkErr func(error) bool
	}{
		{name: "admin without teacher", actor: admin(), nl: newLesson(nil), checkErr: core.IsValidation},
		{name: "unlinked teacher account", actor: teacherActor(nil), nl: newLesson(nil), checkErr: core.IsForbidden},
		{name: "unknown teacher", actor: admin(), nl: newLesson(core.Int64Ptr(999)), checkErr: core.IsNotFound},
		{name: "subject not assigned", actor: admin(), nl: withGroup(newLesson(&diallo.ID), art.ID, grp.ID), checkErr: core.IsValidation},
		{name: "group of another teacher", actor: admin(), nl: withGroup(newLesson(&ba.ID), math.ID, grp.ID), checkErr: core.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.actor, tt.nl)
			assert.True(t, tt.checkErr(err), "unexpected error %v", err)
		})
	}

	// teachers always create their own lessons
	got, err := svc.Create(ctx, teacherActor(&diallo.ID), withGroup(newLesson(&ba.ID), math.ID, grp.ID))
	require.NoError(t, err)
	require.NotNil(t, got.TeacherID)
	assert.Equal(t, diallo.ID, *got.TeacherID)
	assert.Equal(t, lesson.StatusScheduled, got.Status)
	assert.Equal(t, lesson.DefaultMaxStudents, got.MaxStudents)
}

func TestService_accessControl(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	diallo := testutil.CreateTeacher(t, repos.Teachers, "Amina", "Diallo")
	ba := testutil.CreateTeacher(t, repos.Teachers, "Oumar", "Ba")
	mine := testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &diallo.ID})
	theirs := testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &ba.ID, LessonDate: "2024-09-03"})
	me := teacherActor(&diallo.ID)

	_, err := svc.Get(ctx, me, theirs.ID)
	assert.True(t, core.IsForbidden(err))
	_, err = svc.Update(ctx, me, theirs.ID, lesson.UpdateLesson{Status: lesson.StatusCompleted})
	assert.True(t, core.IsForbidden(err))
	assert.True(t, core.IsForbidden(svc.Delete(ctx, me, theirs.ID)))

	d, err := svc.Get(ctx, me, mine.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Students)

	listed, err := svc.List(ctx, me, lesson.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)

	listed, err = svc.List(ctx, teacherActor(nil), lesson.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	// admins see everything, newest first
	listed, err = svc.List(ctx, admin(), lesson.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, theirs.ID, listed[0].ID)
}

func TestService_Update(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	diallo := testutil.CreateTeacher(t, repos.Teachers, "Amina", "Diallo")
	ba := testutil.CreateTeacher(t, repos.Teachers, "Oumar", "Ba")
	l := testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &diallo.ID})

	_, err := svc.Update(ctx, admin(), l.ID, lesson.UpdateLesson{EndTime: "09:00"})
	assert.True(t, core.IsValidation(err))

	// teachers cannot hand their lesson over
	got, err := svc.Update(ctx, teacherActor(&diallo.ID), l.ID, lesson.UpdateLesson{TeacherID: &ba.ID, EndTime: "11:30"})
	require.NoError(t, err)
	assert.Equal(t, diallo.ID, *got.TeacherID)
	assert.Equal(t, "11:30:00", core.NormalizeClock(got.EndTime))

	got, err = svc.Update(ctx, admin(), l.ID, lesson.UpdateLesson{TeacherID: &ba.ID})
	require.NoError(t, err)
	assert.Equal(t, ba.ID, *got.TeacherID)
}

func TestService_Week(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	diallo := testutil.CreateTeacher(t, repos.Teachers, "Amina", "Diallo")
	early := testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &diallo.ID, LessonDate: "2024-09-02", StartTime: "14:00:00", EndTime: "15:00:00"})
	first := testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &diallo.ID, LessonDate: "2024-09-02", StartTime: "08:00:00", EndTime: "09:00:00"})
	testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &diallo.ID, LessonDate: "2024-08-30"})
	testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &diallo.ID, LessonDate: "2024-10-05"})

	_, err := svc.Week(ctx, admin(), " ")
	assert.True(t, core.IsValidation(err))
	_, err = svc.Week(ctx, admin(), "02/09/2024")
	assert.True(t, core.IsValidation(err))

	got, err := svc.Week(ctx, admin(), "2024-09-01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, early.ID, got[1].ID)
}

func TestService_Stats(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	defer lesson.SetNow(time.Date(2024, 9, 2, 15, 0, 0, 0, time.UTC))()

	diallo := testutil.CreateTeacher(t, repos.Teachers, "Amina", "Diallo")
	ba := testutil.CreateTeacher(t, repos.Teachers, "Oumar", "Ba")
	testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &diallo.ID, LessonDate: "2024-09-02"})
	testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &diallo.ID, LessonDate: "2024-09-08", Status: lesson.StatusCancelled})
	testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &diallo.ID, LessonDate: "2024-09-09"})
	testutil.CreateLesson(t, repos.Lessons, lesson.Lesson{TeacherID: &ba.ID, LessonDate: "2024-09-01", Status: lesson.StatusCompleted})

	got, err := svc.Stats(ctx, admin())
	require.NoError(t, err)
	assert.Equal(t, lesson.Stats{Total: 4, Scheduled: 2, Completed: 1, Cancelled: 1, Today: 1, ThisWeek: 2}, got)

	got, err = svc.Stats(ctx, teacherActor(&ba.ID))
	require.NoError(t, err)
	assert.Equal(t, lesson.Stats{Total: 1, Completed: 1}, got)
}
