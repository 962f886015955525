package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/payment"
)

const paymentViewQuery = `SELECT p.id, p.student_id, p.lesson_id, p.amount, p.payment_date, p.payment_method, p.status,
	p.notes, p.created_at, p.updated_at,
	s.first_name AS student_first_name,
	s.last_name AS student_last_name,
	s.middle_name AS student_middle_name,
	s.phone AS student_phone,
	l.subject AS lesson_subject,
	l.lesson_date,
	l.teacher_id,
	t.first_name AS teacher_first_name,
	t.last_name AS teacher_last_name
FROM payments p
JOIN students s ON s.id = p.student_id
LEFT JOIN lessons l ON l.id = p.lesson_id
LEFT JOIN teachers t ON t.id = l.teacher_id`

var errPaymentRefs = core.NewValidationMessage("Unknown student or lesson")

type paymentRepository struct {
	repo
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db core.DB, conf *core.Config) *paymentRepository {
	return &paymentRepository{repo: newRepo(db, conf)}
}

func (r paymentRepository) QueryPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var w where
	if filter.TeacherID != nil {
		w.add("l.teacher_id = ?", *filter.TeacherID)
	}
	if filter.StudentID != nil {
		w.add("p.student_id = ?", *filter.StudentID)
	}
	if filter.Status != "" {
		w.add("p.status = ?", filter.Status)
	}
	if filter.StartDate != "" {
		w.add("p.payment_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		w.add("p.payment_date <= ?", filter.EndDate)
	}

	payments := make([]payment.View, 0)
	q := paymentViewQuery + w.String() + " ORDER BY p.payment_date DESC, p.id DESC"
	if err := r.db.SelectContext(ctx, &payments, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting payments")
	}
	return payments, nil
}

func (r paymentRepository) GetPayment(ctx context.Context, id int64) (payment.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.get(ctx, id)
}

func (r paymentRepository) get(ctx context.Context, id int64) (payment.View, error) {
	var p payment.View
	if err := r.db.GetContext(ctx, &p, paymentViewQuery+" WHERE p.id = ?", id); err != nil {
		return payment.View{}, trapNoRowsErr(err, payment.ErrNotFound, "selecting payment")
	}
	return p, nil
}

func (r paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (student_id, lesson_id, amount, payment_date, payment_method, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.StudentID, p.LessonID, p.Amount, p.PaymentDate, p.PaymentMethod, p.Status, p.Notes,
	)
	if err != nil {
		if isMissingReference(err) {
			return payment.View{}, errPaymentRefs
		}
		return payment.View{}, errors.Wrap(err, "inserting payment")
	}
	id, err := insertID(res, "inserting payment")
	if err != nil {
		return payment.View{}, err
	}
	return r.get(ctx, id)
}

func (r paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.View, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`UPDATE payments SET student_id = ?, lesson_id = ?, amount = ?, payment_date = ?, payment_method = ?,
			status = ?, notes = ?
		WHERE id = ?`,
		p.StudentID, p.LessonID, p.Amount, p.PaymentDate, p.PaymentMethod, p.Status, p.Notes, p.ID,
	)
	if err != nil {
		if isMissingReference(err) {
			return payment.View{}, errPaymentRefs
		}
		return payment.View{}, errors.Wrap(err, "updating payment")
	}
	return r.get(ctx, p.ID)
}

func (r paymentRepository) DeletePayment(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id); err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return nil
}

func (r paymentRepository) PaymentStats(ctx context.Context, since string, teacherID *int64) (payment.Stats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	w := where{args: []interface{}{since}}
	if teacherID != nil {
		w.add("l.teacher_id = ?", *teacherID)
	}

	var stats payment.Stats
	err := r.db.GetContext(ctx, &stats,
		`SELECT COUNT(*) AS total_payments,
			COALESCE(SUM(CASE WHEN p.status = 'completed' THEN p.amount ELSE 0 END), 0) AS total_amount,
			COALESCE(SUM(CASE WHEN p.status = 'pending' THEN p.amount ELSE 0 END), 0) AS pending_amount,
			COALESCE(SUM(CASE WHEN p.status = 'cancelled' THEN p.amount ELSE 0 END), 0) AS cancelled_amount,
			COALESCE(SUM(CASE WHEN p.status = 'completed' AND p.payment_date >= ? THEN p.amount ELSE 0 END), 0) AS amount_last_month
		FROM payments p
		LEFT JOIN lessons l ON l.id = p.lesson_id`+w.String(),
		w.args...,
	)
	if err != nil {
		return payment.Stats{}, errors.Wrap(err, "summing payments")
	}
	return stats, nil
}
