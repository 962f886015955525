package dummydb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/payment"
	"github.com/trezcool/darasa/tests"
)

func TestStudentRepository_DeleteStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("payments block the delete", func(t *testing.T) {
		repos := testutil.DummyRepos(t)
		awa := testutil.CreateStudent(t, repos.Students, "Awa", "Ba")
		p := testutil.CreatePayment(t, repos.Payments, payment.Payment{StudentID: awa.ID, Amount: 100})

		err := repos.Students.DeleteStudent(ctx, awa.ID)
		assert.True(t, core.IsConflict(err), "err = %v", err)

		got, err := repos.Payments.GetPayment(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, awa.ID, got.StudentID)
		_, err = repos.Students.GetStudent(ctx, awa.ID)
		assert.NoError(t, err)
	})

	t.Run("memberships and enrollments go with the student", func(t *testing.T) {
		repos := testutil.DummyRepos(t)
		tchr := testutil.CreateTeacher(t, repos.Teachers, "Amina", "Diallo")
		math := testutil.CreateSubject(t, repos.Subjects, "Math")
		testutil.AssignSubjects(t, repos.Teachers, tchr.ID, math.ID)
		awa := testutil.CreateStudent(t, repos.Students, "Awa", "Ba")
		grp := testutil.CreateGroup(t, repos.Groups, "Math A", tchr.ID, math.ID, awa.ID)

		require.NoError(t, repos.Students.DeleteStudent(ctx, awa.ID))

		_, err := repos.Students.GetStudent(ctx, awa.ID)
		assert.True(t, core.IsNotFound(err))
		members, err := repos.Groups.QueryGroupStudents(ctx, grp.ID)
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}
