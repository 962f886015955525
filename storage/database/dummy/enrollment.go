package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) view(e enrollment.Enrollment) enrollment.View {
	s := repo.db.students[e.StudentID]
	l := repo.db.lessons[e.LessonID]
	v := enrollment.View{
		Enrollment:        e,
		StudentFirstName:  s.FirstName,
		StudentLastName:   s.LastName,
		StudentMiddleName: s.MiddleName,
		StudentPhone:      s.Phone,
		LessonSubject:     l.Subject,
		LessonDate:        l.LessonDate,
		StartTime:         l.StartTime,
		EndTime:           l.EndTime,
		TeacherID:         l.TeacherID,
	}
	if l.TeacherID != nil {
		if t, ok := repo.db.teachers[*l.TeacherID]; ok {
			v.TeacherFirstName, v.TeacherLastName = &t.FirstName, &t.LastName
		}
	}
	return v
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, filter enrollment.QueryFilter) ([]enrollment.View, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrollments := make([]enrollment.View, 0)
	for _, id := range ids(repo.db.enrollments) {
		e := repo.db.enrollments[id]
		switch {
		case filter.LessonID != nil && e.LessonID != *filter.LessonID,
			filter.StudentID != nil && e.StudentID != *filter.StudentID,
			filter.Status != "" && e.Status != filter.Status,
			filter.TeacherID != nil && !eqID(repo.db.lessons[e.LessonID].TeacherID, *filter.TeacherID):
			continue
		}
		enrollments = append(enrollments, repo.view(e))
	}
	sort.SliceStable(enrollments, func(i, j int) bool {
		if enrollments[i].EnrollmentDate != enrollments[j].EnrollmentDate {
			return enrollments[i].EnrollmentDate > enrollments[j].EnrollmentDate
		}
		return enrollments[i].ID > enrollments[j].ID
	})
	return enrollments, nil
}

func (repo *enrollmentRepository) GetEnrollment(_ context.Context, id int64) (enrollment.View, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.enrollments[id]; ok {
		return repo.view(e), nil
	}
	return enrollment.View{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, e enrollment.Enrollment) (enrollment.View, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	_, lessonOK := repo.db.lessons[e.LessonID]
	_, studentOK := repo.db.students[e.StudentID]
	if !lessonOK || !studentOK {
		return enrollment.View{}, core.NewValidationMessage("Unknown lesson or student")
	}
	e.ID = repo.db.nextID()
	repo.db.enrollments[e.ID] = e
	return repo.view(e), nil
}

func (repo *enrollmentRepository) UpdateEnrollmentStatus(_ context.Context, id int64, status string) (enrollment.View, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e, ok := repo.db.enrollments[id]
	if !ok {
		return enrollment.View{}, enrollment.ErrNotFound
	}
	e.Status = status
	repo.db.enrollments[id] = e
	return repo.view(e), nil
}

func (repo *enrollmentRepository) DeleteEnrollment(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.enrollments, id)
	return nil
}

func (repo *enrollmentRepository) HasEnrolled(_ context.Context, lessonID, studentID int64) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, e := range repo.db.enrollments {
		if e.LessonID == lessonID && e.StudentID == studentID && e.Status == enrollment.StatusEnrolled {
			return true, nil
		}
	}
	return false, nil
}

func (repo *enrollmentRepository) IsGroupMember(_ context.Context, groupID, studentID int64) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.groupStudents[groupID][studentID], nil
}

func (repo *enrollmentRepository) QueryDayLessons(_ context.Context, filter enrollment.DayFilter) ([]enrollment.DayLesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	lessons := make([]enrollment.DayLesson, 0)
	for _, id := range ids(repo.db.lessons) {
		l := repo.db.lessons[id]
		switch {
		case l.LessonDate != filter.Date,
			filter.TeacherID != nil && !eqID(l.TeacherID, *filter.TeacherID),
			filter.GroupID != nil && !eqID(l.GroupID, *filter.GroupID):
			continue
		}
		dl := enrollment.DayLesson{View: repo.db.lessonView(l)}
		for _, e := range repo.db.enrollments {
			if e.LessonID != l.ID {
				continue
			}
			dl.TotalEnrolled++
			switch e.Status {
			case enrollment.StatusPresent:
				dl.TotalPresent++
			case enrollment.StatusAbsent:
				dl.TotalAbsent++
			}
		}
		lessons = append(lessons, dl)
	}
	sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].StartTime < lessons[j].StartTime })
	return lessons, nil
}
