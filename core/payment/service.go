package payment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
)

var (
	ErrNotFound = core.NewNotFoundError("Payment not found")

	errAccessDenied = core.NewForbiddenError("Access denied. You can only view payments of your own lessons")
	errAdminOnly    = core.NewForbiddenError("Only administrators can delete payments")

	nowFunc = core.Now // mockable
)

type (
	Repository interface {
		// QueryPayments applies AND operation on available QueryFilter fields, latest payment date first.
		// A non-nil TeacherID restricts the result to payments tied to that teacher's lessons.
		QueryPayments(ctx context.Context, filter QueryFilter) ([]View, error)
		GetPayment(ctx context.Context, id int64) (View, error)
		CreatePayment(ctx context.Context, p Payment) (View, error)
		UpdatePayment(ctx context.Context, p Payment) (View, error)
		DeletePayment(ctx context.Context, id int64) error
		// PaymentStats aggregates amounts by status; the last month sum covers completed payments since `since`.
		PaymentStats(ctx context.Context, since string, teacherID *int64) (Stats, error)
	}

	Lessons interface {
		Find(ctx context.Context, id int64) (lesson.View, error)
	}

	Students interface {
		Get(ctx context.Context, id int64) (student.Student, error)
	}

	Service struct {
		repo     Repository
		lessons  Lessons
		students Students
	}
)

func NewService(repo Repository, lessons Lessons, students Students) *Service {
	return &Service{repo: repo, lessons: lessons, students: students}
}

func (svc *Service) List(ctx context.Context, actor core.Actor, filter QueryFilter) ([]View, error) {
	filter.TeacherID = actor.TeacherScope()
	return svc.repo.QueryPayments(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, id int64) (View, error) {
	p, err := svc.repo.GetPayment(ctx, id)
	if err != nil {
		return View{}, errors.Wrap(err, "finding payment")
	}
	if !actor.Owns(p.TeacherID) {
		return View{}, errAccessDenied
	}
	return p, nil
}

func (svc *Service) Stats(ctx context.Context, actor core.Actor) (Stats, error) {
	since := core.FormatDate(nowFunc().AddDate(0, 0, -statsWindowDays))
	return svc.repo.PaymentStats(ctx, since, actor.TeacherScope())
}

func (svc *Service) Create(ctx context.Context, np NewPayment) (View, error) {
	if err := svc.checkRefs(ctx, np.StudentID, np.LessonID); err != nil {
		return View{}, err
	}
	p := Payment{
		StudentID:     np.StudentID,
		LessonID:      np.LessonID,
		Amount:        np.Amount,
		PaymentDate:   np.PaymentDate,
		PaymentMethod: np.PaymentMethod,
		Status:        np.Status,
		Notes:         np.Notes,
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = MethodCash
	}
	if p.Status == "" {
		p.Status = StatusCompleted
	}
	return svc.repo.CreatePayment(ctx, p)
}

func (svc *Service) Update(ctx context.Context, actor core.Actor, id int64, up UpdatePayment) (View, error) {
	v, err := svc.Get(ctx, actor, id)
	if err != nil {
		return View{}, err
	}
	p := v.Payment
	if up.StudentID != 0 {
		p.StudentID = up.StudentID
	}
	if up.LessonID != nil {
		p.LessonID = up.LessonID
	}
	if up.Amount != nil {
		p.Amount = *up.Amount
	}
	if up.PaymentDate != "" {
		p.PaymentDate = up.PaymentDate
	}
	if up.PaymentMethod != "" {
		p.PaymentMethod = up.PaymentMethod
	}
	if up.Status != "" {
		p.Status = up.Status
	}
	p.Notes = up.Notes

	if err := svc.checkRefs(ctx, p.StudentID, p.LessonID); err != nil {
		return View{}, err
	}
	return svc.repo.UpdatePayment(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, id int64) error {
	if !actor.IsAdmin() {
		return errAdminOnly
	}
	if _, err := svc.repo.GetPayment(ctx, id); err != nil {
		return errors.Wrap(err, "finding payment")
	}
	return svc.repo.DeletePayment(ctx, id)
}

func (svc *Service) checkRefs(ctx context.Context, studentID int64, lessonID *int64) error {
	if _, err := svc.students.Get(ctx, studentID); err != nil {
		return errors.Wrap(err, "finding student")
	}
	if lessonID != nil {
		if _, err := svc.lessons.Find(ctx, *lessonID); err != nil {
			return errors.Wrap(err, "finding lesson")
		}
	}
	return nil
}
