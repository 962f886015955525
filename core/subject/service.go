package subject

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var ErrNotFound = core.NewNotFoundError("Subject not found")

type (
	Repository interface {
		QuerySubjects(ctx context.Context, activeOnly bool) ([]Subject, error)
		GetSubject(ctx context.Context, id int64) (Subject, error)
		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		UpdateSubject(ctx context.Context, subj Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id int64) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the active subjects ordered by name.
func (svc *Service) List(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, true)
}

func (svc *Service) Get(ctx context.Context, id int64) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	return svc.repo.CreateSubject(ctx, Subject{
		Name:        ns.Name,
		Description: ns.Description,
		IsActive:    true,
	})
}

func (svc *Service) Update(ctx context.Context, id int64, us UpdateSubject) (Subject, error) {
	subj, err := svc.repo.GetSubject(ctx, id)
	if err != nil {
		return Subject{}, errors.Wrap(err, "finding subject")
	}
	if us.Name != "" {
		subj.Name = us.Name
	}
	subj.Description = us.Description
	if us.IsActive != nil {
		subj.IsActive = *us.IsActive
	}
	return svc.repo.UpdateSubject(ctx, subj)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	if _, err := svc.repo.GetSubject(ctx, id); err != nil {
		return errors.Wrap(err, "finding subject")
	}
	return svc.repo.DeleteSubject(ctx, id)
}
