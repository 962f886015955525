package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) QuerySubjects(_ context.Context, activeOnly bool) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjs := make([]subject.Subject, 0, len(repo.db.subjects))
	for _, id := range ids(repo.db.subjects) {
		if s := repo.db.subjects[id]; s.IsActive || !activeOnly {
			subjs = append(subjs, s)
		}
	}
	sort.SliceStable(subjs, func(i, j int) bool { return subjs[i].Name < subjs[j].Name })
	return subjs, nil
}

func (repo *subjectRepository) GetSubject(_ context.Context, id int64) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return s, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) CreateSubject(_ context.Context, s subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = repo.db.nextID()
	s.CreatedAt = now()
	repo.db.subjects[s.ID] = s
	return s, nil
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, s subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.subjects[s.ID]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	s.CreatedAt = stored.CreatedAt
	repo.db.subjects[s.ID] = s
	return s, nil
}

func (repo *subjectRepository) DeleteSubject(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, g := range repo.db.groups {
		if g.SubjectID == id {
			return core.NewConflictError("Subject is used by groups and cannot be deleted")
		}
	}
	for _, links := range repo.db.teacherSubjects {
		delete(links, id)
	}
	for lid, l := range repo.db.lessons {
		if eqID(l.SubjectID, id) {
			l.SubjectID = nil
			repo.db.lessons[lid] = l
		}
	}
	delete(repo.db.subjects, id)
	return nil
}
