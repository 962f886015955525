package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/subject"
)

const subjectColumns = "id, name, description, is_active, created_at"

var errSubjectInUse = core.NewConflictError("Subject is used by groups and cannot be deleted")

type subjectRepository struct {
	repo
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db core.DB, conf *core.Config) *subjectRepository {
	return &subjectRepository{repo: newRepo(db, conf)}
}

func (r subjectRepository) QuerySubjects(ctx context.Context, activeOnly bool) ([]subject.Subject, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	q := "SELECT " + subjectColumns + " FROM subjects"
	if activeOnly {
		q += " WHERE is_active = TRUE"
	}
	subjs := make([]subject.Subject, 0)
	if err := r.db.SelectContext(ctx, &subjs, q+" ORDER BY name"); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return subjs, nil
}

func (r subjectRepository) GetSubject(ctx context.Context, id int64) (subject.Subject, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.get(ctx, id)
}

func (r subjectRepository) get(ctx context.Context, id int64) (subject.Subject, error) {
	var subj subject.Subject
	err := r.db.GetContext(ctx, &subj, "SELECT "+subjectColumns+" FROM subjects WHERE id = ?", id)
	if err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound, "selecting subject")
	}
	return subj, nil
}

func (r subjectRepository) CreateSubject(ctx context.Context, subj subject.Subject) (subject.Subject, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO subjects (name, description, is_active) VALUES (?, ?, ?)",
		subj.Name, subj.Description, subj.IsActive,
	)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	id, err := insertID(res, "inserting subject")
	if err != nil {
		return subject.Subject{}, err
	}
	return r.get(ctx, id)
}

func (r subjectRepository) UpdateSubject(ctx context.Context, subj subject.Subject) (subject.Subject, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		"UPDATE subjects SET name = ?, description = ?, is_active = ? WHERE id = ?",
		subj.Name, subj.Description, subj.IsActive, subj.ID,
	)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "updating subject")
	}
	return r.get(ctx, subj.ID)
}

func (r subjectRepository) DeleteSubject(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = ?", id); err != nil {
		if isReferenced(err) {
			return errSubjectInUse
		}
		return errors.Wrap(err, "deleting subject")
	}
	return nil
}
