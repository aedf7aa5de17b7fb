package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"campus/contexts/learning/enrollment-service/domain/entities"
	domainerrors "campus/contexts/learning/enrollment-service/domain/errors"
	"campus/contexts/learning/enrollment-service/ports"
)

type enrollmentKey struct {
	CohortID int64
	CourseID int64
	UserID   int64
}

// Store is the in-memory cohort/course/enrollment adapter used by tests and
// local runs. Uniqueness of the enrollment triple is enforced the same way
// the composite primary key does in postgres.
type Store struct {
	mu sync.RWMutex

	usersByID     map[int64]ports.UserProjection
	cohortsByID   map[int64]entities.Cohort
	coursesByID   map[int64]entities.Course
	cohortCourses map[int64][]entities.CohortCourse
	enrollments   map[enrollmentKey]entities.Enrollment

	nextCohortID int64
	nextCourseID int64
}

func NewStore() *Store {
	return &Store{
		usersByID:     make(map[int64]ports.UserProjection),
		cohortsByID:   make(map[int64]entities.Cohort),
		coursesByID:   make(map[int64]entities.Course),
		cohortCourses: make(map[int64][]entities.CohortCourse),
		enrollments:   make(map[enrollmentKey]entities.Enrollment),
		nextCohortID:  1,
		nextCourseID:  1,
	}
}

// PutUser seeds the cross-context user projection.
func (s *Store) PutUser(user ports.UserProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByID[user.ID] = user
}

func (s *Store) GetUser(ctx context.Context, userID int64) (ports.UserProjection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByID[userID]
	return user, ok, nil
}

func (s *Store) CohortTitleExists(ctx context.Context, title string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cohort := range s.cohortsByID {
		if strings.EqualFold(cohort.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateCohort(ctx context.Context, input ports.CreateCohortInput) (entities.CohortView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Backstop for racing creates that both passed the title pre-check.
	for _, existing := range s.cohortsByID {
		if strings.EqualFold(existing.Title, input.Title) {
			return entities.CohortView{}, domainerrors.DuplicateCohortTitle(input.Title)
		}
	}

	cohort := entities.Cohort{
		ID:        s.nextCohortID,
		Title:     input.Title,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		CreatedAt: input.CreatedAt.UTC(),
	}
	s.nextCohortID++
	s.cohortsByID[cohort.ID] = cohort

	associations := make([]entities.CohortCourse, 0, len(input.CourseTitles))
	for _, title := range input.CourseTitles {
		course, ok := s.findCourseByTitleLocked(title)
		if !ok {
			course = entities.Course{ID: s.nextCourseID, Title: title}
			s.nextCourseID++
			s.coursesByID[course.ID] = course
		}
		associations = append(associations, entities.CohortCourse{
			CohortID: cohort.ID,
			CourseID: course.ID,
			Course:   course,
		})
	}
	s.cohortCourses[cohort.ID] = associations
	return s.cohortViewLocked(cohort), nil
}

func (s *Store) GetCohort(ctx context.Context, cohortID int64) (entities.Cohort, []entities.CohortCourse, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cohort, ok := s.cohortsByID[cohortID]
	if !ok {
		return entities.Cohort{}, nil, false, nil
	}
	associations := append([]entities.CohortCourse(nil), s.cohortCourses[cohortID]...)
	return cohort, associations, true, nil
}

func (s *Store) EnrollmentExists(ctx context.Context, cohortID int64, courseID int64, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.enrollments[enrollmentKey{cohortID, courseID, userID}]
	return ok, nil
}

func (s *Store) UserInCohort(ctx context.Context, cohortID int64, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key := range s.enrollments {
		if key.CohortID == cohortID && key.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, enrollment entities.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := enrollmentKey{enrollment.CohortID, enrollment.CourseID, enrollment.UserID}
	if _, ok := s.enrollments[key]; ok {
		return domainerrors.ErrAlreadyEnrolled
	}
	s.enrollments[key] = entities.Enrollment{
		CohortID:   enrollment.CohortID,
		CourseID:   enrollment.CourseID,
		UserID:     enrollment.UserID,
		EnrolledAt: enrollment.EnrolledAt.UTC(),
	}
	return nil
}

func (s *Store) DeleteEnrollment(ctx context.Context, cohortID int64, courseID int64, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := enrollmentKey{cohortID, courseID, userID}
	if _, ok := s.enrollments[key]; !ok {
		return false, nil
	}
	delete(s.enrollments, key)
	return true, nil
}

func (s *Store) GetCohortView(ctx context.Context, cohortID int64) (entities.CohortView, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cohort, ok := s.cohortsByID[cohortID]
	if !ok {
		return entities.CohortView{}, false, nil
	}
	return s.cohortViewLocked(cohort), true, nil
}

func (s *Store) ListCohortViews(ctx context.Context) ([]entities.CohortView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.cohortsByID))
	for id := range s.cohortsByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	views := make([]entities.CohortView, 0, len(ids))
	for _, id := range ids {
		views = append(views, s.cohortViewLocked(s.cohortsByID[id]))
	}
	return views, nil
}

func (s *Store) ListCohortViewsByUser(ctx context.Context, userID int64) ([]entities.CohortView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	memberOf := make(map[int64]bool)
	for key := range s.enrollments {
		if key.UserID == userID {
			memberOf[key.CohortID] = true
		}
	}
	ids := make([]int64, 0, len(memberOf))
	for id := range memberOf {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	views := make([]entities.CohortView, 0, len(ids))
	for _, id := range ids {
		views = append(views, s.cohortViewLocked(s.cohortsByID[id]))
	}
	return views, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) findCourseByTitleLocked(title string) (entities.Course, bool) {
	for _, course := range s.coursesByID {
		if course.Title == title {
			return course, true
		}
	}
	return entities.Course{}, false
}

func (s *Store) cohortViewLocked(cohort entities.Cohort) entities.CohortView {
	view := entities.CohortView{
		ID:        cohort.ID,
		Title:     cohort.Title,
		StartDate: cohort.StartDate,
		EndDate:   cohort.EndDate,
		Courses:   []entities.CourseRoster{},
	}
	for _, cc := range s.cohortCourses[cohort.ID] {
		roster := entities.CourseRoster{
			CourseID: cc.CourseID,
			Title:    cc.Course.Title,
			Students: []entities.Member{},
			Teachers: []entities.Member{},
		}
		userIDs := make([]int64, 0)
		for key := range s.enrollments {
			if key.CohortID == cohort.ID && key.CourseID == cc.CourseID {
				userIDs = append(userIDs, key.UserID)
			}
		}
		sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
		for _, userID := range userIDs {
			user, ok := s.usersByID[userID]
			if !ok {
				continue
			}
			member := entities.Member{
				ID:        user.ID,
				Username:  user.Username,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Role:      user.Role,
			}
			if user.Role == "teacher" {
				roster.Teachers = append(roster.Teachers, member)
			} else {
				roster.Students = append(roster.Students, member)
			}
		}
		view.Courses = append(view.Courses, roster)
	}
	return view
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
