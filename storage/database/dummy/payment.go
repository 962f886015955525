package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) view(p payment.Payment) payment.View {
	s := repo.db.students[p.StudentID]
	v := payment.View{
		Payment:           p,
		StudentFirstName:  s.FirstName,
		StudentLastName:   s.LastName,
		StudentMiddleName: s.MiddleName,
		StudentPhone:      s.Phone,
	}
	if p.LessonID == nil {
		return v
	}
	if l, ok := repo.db.lessons[*p.LessonID]; ok {
		date := l.LessonDate
		v.LessonSubject, v.LessonDate, v.TeacherID = l.Subject, &date, l.TeacherID
		if l.TeacherID != nil {
			if t, ok := repo.db.teachers[*l.TeacherID]; ok {
				v.TeacherFirstName, v.TeacherLastName = &t.FirstName, &t.LastName
			}
		}
	}
	return v
}

func (repo *paymentRepository) teacherOf(p payment.Payment) *int64 {
	if p.LessonID == nil {
		return nil
	}
	return repo.db.lessons[*p.LessonID].TeacherID
}

func (repo *paymentRepository) QueryPayments(_ context.Context, filter payment.QueryFilter) ([]payment.View, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	payments := make([]payment.View, 0)
	for _, id := range ids(repo.db.payments) {
		p := repo.db.payments[id]
		switch {
		case filter.TeacherID != nil && !eqID(repo.teacherOf(p), *filter.TeacherID),
			filter.StudentID != nil && p.StudentID != *filter.StudentID,
			filter.Status != "" && p.Status != filter.Status,
			filter.StartDate != "" && p.PaymentDate < filter.StartDate,
			filter.EndDate != "" && p.PaymentDate > filter.EndDate:
			continue
		}
		payments = append(payments, repo.view(p))
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if payments[i].PaymentDate != payments[j].PaymentDate {
			return payments[i].PaymentDate > payments[j].PaymentDate
		}
		return payments[i].ID > payments[j].ID
	})
	return payments, nil
}

func (repo *paymentRepository) GetPayment(_ context.Context, id int64) (payment.View, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.payments[id]; ok {
		return repo.view(p), nil
	}
	return payment.View{}, payment.ErrNotFound
}

func (repo *paymentRepository) checkRefs(p payment.Payment) error {
	_, ok := repo.db.students[p.StudentID]
	if ok && p.LessonID != nil {
		_, ok = repo.db.lessons[*p.LessonID]
	}
	if !ok {
		return core.NewValidationMessage("Unknown student or lesson")
	}
	return nil
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment) (payment.View, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkRefs(p); err != nil {
		return payment.View{}, err
	}
	p.ID = repo.db.nextID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	repo.db.payments[p.ID] = p
	return repo.view(p), nil
}

func (repo *paymentRepository) UpdatePayment(_ context.Context, p payment.Payment) (payment.View, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.payments[p.ID]
	if !ok {
		return payment.View{}, payment.ErrNotFound
	}
	if err := repo.checkRefs(p); err != nil {
		return payment.View{}, err
	}
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = now()
	repo.db.payments[p.ID] = p
	return repo.view(p), nil
}

func (repo *paymentRepository) DeletePayment(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.payments, id)
	return nil
}

func (repo *paymentRepository) PaymentStats(_ context.Context, since string, teacherID *int64) (payment.Stats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stats payment.Stats
	for _, p := range repo.db.payments {
		if teacherID != nil && !eqID(repo.teacherOf(p), *teacherID) {
			continue
		}
		stats.TotalPayments++
		switch p.Status {
		case payment.StatusCompleted:
			stats.TotalAmount += p.Amount
			if p.PaymentDate >= since {
				stats.AmountLastMonth += p.Amount
			}
		case payment.StatusPending:
			stats.PendingAmount += p.Amount
		case payment.StatusCancelled:
			stats.CancelledAmount += p.Amount
		}
	}
	return stats, nil
}
