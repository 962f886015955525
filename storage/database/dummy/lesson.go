package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/lesson"
)

type lessonRepository struct {
	db *DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{db: db}
}

// lessonView joins a lesson with its teacher, subject and group; callers hold the lock.
func (db *DB) lessonView(l lesson.Lesson) lesson.View {
	v := lesson.View{Lesson: l}
	if l.TeacherID != nil {
		if t, ok := db.teachers[*l.TeacherID]; ok {
			v.TeacherFirstName, v.TeacherLastName, v.TeacherMiddleName = &t.FirstName, &t.LastName, t.MiddleName
		}
	}
	if l.SubjectID != nil {
		if s, ok := db.subjects[*l.SubjectID]; ok {
			v.SubjectName = &s.Name
		}
	}
	if l.GroupID != nil {
		if g, ok := db.groups[*l.GroupID]; ok {
			v.GroupName = &g.Name
		}
	}
	for _, e := range db.enrollments {
		if e.LessonID == l.ID && e.Status == enrollment.StatusEnrolled {
			v.EnrolledCount++
		}
	}
	return v
}

func lessonField(l lesson.View, field string) string {
	switch field {
	case "lesson_date":
		return l.LessonDate
	case "start_time":
		return l.StartTime
	}
	return ""
}

func (repo *lessonRepository) QueryLessons(_ context.Context, filter lesson.QueryFilter, ordering []core.DBOrdering) ([]lesson.View, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	lessons := make([]lesson.View, 0)
	for _, id := range ids(repo.db.lessons) {
		l := repo.db.lessons[id]
		switch {
		case filter.StartDate != "" && l.LessonDate < filter.StartDate,
			filter.EndDate != "" && l.LessonDate > filter.EndDate,
			filter.TeacherID != nil && !eqID(l.TeacherID, *filter.TeacherID),
			filter.SubjectID != nil && !eqID(l.SubjectID, *filter.SubjectID),
			filter.GroupID != nil && !eqID(l.GroupID, *filter.GroupID),
			filter.Status != "" && l.Status != filter.Status:
			continue
		}
		lessons = append(lessons, repo.db.lessonView(l))
	}

	sort.SliceStable(lessons, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := lessonField(lessons[i], ord.Field), lessonField(lessons[j], ord.Field)
			if a == b {
				continue
			}
			if ord.Ascending {
				return a < b
			}
			return a > b
		}
		return false
	})
	return lessons, nil
}

func (repo *lessonRepository) GetLesson(_ context.Context, id int64) (lesson.View, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if l, ok := repo.db.lessons[id]; ok {
		return repo.db.lessonView(l), nil
	}
	return lesson.View{}, lesson.ErrNotFound
}

func (repo *lessonRepository) QueryAttendees(_ context.Context, lessonID int64) ([]lesson.Attendee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	attendees := make([]lesson.Attendee, 0)
	for _, eid := range ids(repo.db.enrollments) {
		e := repo.db.enrollments[eid]
		if e.LessonID != lessonID {
			continue
		}
		s := repo.db.students[e.StudentID]
		attendees = append(attendees, lesson.Attendee{
			EnrollmentID:     e.ID,
			AttendanceStatus: e.Status,
			StudentID:        s.ID,
			FirstName:        s.FirstName,
			LastName:         s.LastName,
			MiddleName:       s.MiddleName,
			Phone:            s.Phone,
		})
	}
	sort.SliceStable(attendees, func(i, j int) bool {
		if attendees[i].LastName != attendees[j].LastName {
			return attendees[i].LastName < attendees[j].LastName
		}
		return attendees[i].FirstName < attendees[j].FirstName
	})
	return attendees, nil
}

func (repo *lessonRepository) checkRefs(l lesson.Lesson) error {
	ok := true
	if l.TeacherID != nil {
		_, ok = repo.db.teachers[*l.TeacherID]
	}
	if ok && l.SubjectID != nil {
		_, ok = repo.db.subjects[*l.SubjectID]
	}
	if ok && l.GroupID != nil {
		_, ok = repo.db.groups[*l.GroupID]
	}
	if !ok {
		return core.NewValidationMessage("Unknown teacher, subject or group")
	}
	return nil
}

func (repo *lessonRepository) CreateLesson(_ context.Context, l lesson.Lesson, autoEnroll bool) (lesson.View, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkRefs(l); err != nil {
		return lesson.View{}, err
	}
	l.ID = repo.db.nextID()
	l.CreatedAt = now()
	l.UpdatedAt = l.CreatedAt
	repo.db.lessons[l.ID] = l
	if autoEnroll && l.GroupID != nil {
		repo.autoEnroll(l.ID, *l.GroupID)
	}
	return repo.db.lessonView(l), nil
}

func (repo *lessonRepository) UpdateLesson(_ context.Context, l lesson.Lesson, autoEnroll bool) (lesson.View, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.lessons[l.ID]
	if !ok {
		return lesson.View{}, lesson.ErrNotFound
	}
	if err := repo.checkRefs(l); err != nil {
		return lesson.View{}, err
	}
	l.CreatedAt = stored.CreatedAt
	l.UpdatedAt = now()
	repo.db.lessons[l.ID] = l
	if autoEnroll && l.GroupID != nil {
		repo.autoEnroll(l.ID, *l.GroupID)
	}
	return repo.db.lessonView(l), nil
}

// autoEnroll books every group member without an enrollment row on the lesson.
func (repo *lessonRepository) autoEnroll(lessonID, groupID int64) {
	booked := make(map[int64]bool)
	for _, e := range repo.db.enrollments {
		if e.LessonID == lessonID {
			booked[e.StudentID] = true
		}
	}
	for _, sid := range linkIDs(repo.db.groupStudents[groupID]) {
		if booked[sid] {
			continue
		}
		id := repo.db.nextID()
		repo.db.enrollments[id] = enrollment.Enrollment{
			ID:             id,
			LessonID:       lessonID,
			StudentID:      sid,
			Status:         enrollment.StatusEnrolled,
			EnrollmentDate: now(),
		}
	}
}

func (repo *lessonRepository) DeleteLesson(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for eid, e := range repo.db.enrollments {
		if e.LessonID == id {
			delete(repo.db.enrollments, eid)
		}
	}
	for pid, p := range repo.db.payments {
		if eqID(p.LessonID, id) {
			p.LessonID = nil
			repo.db.payments[pid] = p
		}
	}
	delete(repo.db.lessons, id)
	return nil
}

func (repo *lessonRepository) LessonStats(_ context.Context, today, weekEnd string, teacherID *int64) (lesson.Stats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stats lesson.Stats
	for _, l := range repo.db.lessons {
		if teacherID != nil && !eqID(l.TeacherID, *teacherID) {
			continue
		}
		stats.Total++
		switch l.Status {
		case lesson.StatusScheduled:
			stats.Scheduled++
		case lesson.StatusCompleted:
			stats.Completed++
		case lesson.StatusCancelled:
			stats.Cancelled++
		}
		if l.LessonDate == today {
			stats.Today++
		}
		if l.LessonDate >= today && l.LessonDate < weekEnd {
			stats.ThisWeek++
		}
	}
	return stats, nil
}
