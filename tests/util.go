package testutil

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/payment"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database/dummy"
)

// Repos groups one repository per entity, whatever the backing store.
type Repos struct {
	Users       user.Repository
	Teachers    teacher.Repository
	Subjects    subject.Repository
	Groups      group.Repository
	Students    student.Repository
	Lessons     lesson.Repository
	Enrollments enrollment.Repository
	Payments    payment.Repository
}

// DummyRepos returns repositories over a fresh in-memory store.
func DummyRepos(t *testing.T) Repos {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	return Repos{
		Users:       dummydb.NewUserRepository(db),
		Teachers:    dummydb.NewTeacherRepository(db),
		Subjects:    dummydb.NewSubjectRepository(db),
		Groups:      dummydb.NewGroupRepository(db),
		Students:    dummydb.NewStudentRepository(db),
		Lessons:     dummydb.NewLessonRepository(db),
		Enrollments: dummydb.NewEnrollmentRepository(db),
		Payments:    dummydb.NewPaymentRepository(db),
	}
}

// NewValidator returns a validator wired with the custom tags and english messages, as in the apps.
func NewValidator() (*validator.Validate, ut.Translator) {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(t *testing.T, repo user.Repository, email, pwd, role string, teacherID *int64, isActive bool) user.User {
	t.Helper()
	usr := user.User{
		Email:     email,
		Role:      role,
		TeacherID: teacherID,
		IsActive:  isActive,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateTeacher(t *testing.T, repo teacher.Repository, firstName, lastName string) teacher.Teacher {
	t.Helper()
	tchr, err := repo.CreateTeacher(context.Background(), teacher.Teacher{
		FirstName: firstName,
		LastName:  lastName,
		Status:    teacher.StatusActive,
	})
	if err != nil {
		t.Fatalf("CreateTeacher(): %v", err)
	}
	return tchr
}

func CreateSubject(t *testing.T, repo subject.Repository, name string) subject.Subject {
	t.Helper()
	subj, err := repo.CreateSubject(context.Background(), subject.Subject{Name: name, IsActive: true})
	if err != nil {
		t.Fatalf("CreateSubject(): %v", err)
	}
	return subj
}

// AssignSubjects replaces the subject set of a teacher.
func AssignSubjects(t *testing.T, repo teacher.Repository, teacherID int64, subjectIDs ...int64) {
	t.Helper()
	if err := repo.SetTeacherSubjects(context.Background(), teacherID, subjectIDs); err != nil {
		t.Fatalf("AssignSubjects(): %v", err)
	}
}

func CreateStudent(t *testing.T, repo student.Repository, firstName, lastName string) student.Student {
	t.Helper()
	s, err := repo.CreateStudent(context.Background(), student.Student{
		FirstName: firstName,
		LastName:  lastName,
		Status:    student.StatusActive,
	})
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return s
}

// CreateGroup stores a group and, when given, its roster.
func CreateGroup(t *testing.T, repo group.Repository, name string, teacherID, subjectID int64, studentIDs ...int64) group.View {
	t.Helper()
	ctx := context.Background()
	grp, err := repo.CreateGroup(ctx, group.Group{
		Name:      name,
		TeacherID: teacherID,
		SubjectID: subjectID,
		Status:    group.StatusActive,
	})
	if err != nil {
		t.Fatalf("CreateGroup(): %v", err)
	}
	if len(studentIDs) > 0 {
		if err := repo.SetGroupStudents(ctx, grp.ID, studentIDs); err != nil {
			t.Fatalf("CreateGroup(): %v", err)
		}
		if grp, err = repo.GetGroup(ctx, grp.ID); err != nil {
			t.Fatalf("CreateGroup(): %v", err)
		}
	}
	return grp
}

// CreateLesson stores a scheduled lesson; l only needs the fields under test.
func CreateLesson(t *testing.T, repo lesson.Repository, l lesson.Lesson) lesson.View {
	t.Helper()
	if l.LessonDate == "" {
		l.LessonDate = "2024-09-02"
	}
	if l.StartTime == "" {
		l.StartTime = "10:00:00"
	}
	if l.EndTime == "" {
		l.EndTime = "11:00:00"
	}
	if l.MaxStudents == 0 {
		l.MaxStudents = lesson.DefaultMaxStudents
	}
	if l.Status == "" {
		l.Status = lesson.StatusScheduled
	}
	v, err := repo.CreateLesson(context.Background(), l, false)
	if err != nil {
		t.Fatalf("CreateLesson(): %v", err)
	}
	return v
}

func Enroll(t *testing.T, repo enrollment.Repository, lessonID, studentID int64) enrollment.View {
	t.Helper()
	e, err := repo.CreateEnrollment(context.Background(), enrollment.Enrollment{
		LessonID:       lessonID,
		StudentID:      studentID,
		Status:         enrollment.StatusEnrolled,
		EnrollmentDate: "2024-09-01 09:00:00",
	})
	if err != nil {
		t.Fatalf("Enroll(): %v", err)
	}
	return e
}

func CreatePayment(t *testing.T, repo payment.Repository, p payment.Payment) payment.View {
	t.Helper()
	if p.PaymentDate == "" {
		p.PaymentDate = "2024-09-02"
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = payment.MethodCash
	}
	if p.Status == "" {
		p.Status = payment.StatusCompleted
	}
	v, err := repo.CreatePayment(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePayment(): %v", err)
	}
	return v
}
