package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus/contexts/identity-access/accesspolicy"
	"campus/contexts/learning/enrollment-service/adapters/memory"
	domainerrors "campus/contexts/learning/enrollment-service/domain/errors"
	"campus/contexts/learning/enrollment-service/ports"
	"campus/internal/shared/apperror"
)

func newEnrollmentService(store *memory.Store) Service {
	return Service{Repo: store, Clock: store}
}

func teacherActor() accesspolicy.Actor {
	return accesspolicy.Actor{ID: 1, Role: accesspolicy.RoleTeacher, Authenticated: true}
}

func studentActor() accesspolicy.Actor {
	return accesspolicy.Actor{ID: 2, Role: accesspolicy.RoleStudent, Authenticated: true}
}

func seedCohort(t *testing.T, service Service, store *memory.Store) (int64, int64) {
	t.Helper()
	store.PutUser(ports.UserProjection{ID: 10, FirstName: "Ada", LastName: "Lovelace", Role: "student"})
	view, err := service.CreateCohort(context.Background(), teacherActor(), "Cohort 4",
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 26, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("create cohort failed: %v", err)
	}
	if len(view.Courses) != len(StandardCourseTitles) {
		t.Fatalf("expected %d courses, got %d", len(StandardCourseTitles), len(view.Courses))
	}
	return view.ID, view.Courses[0].CourseID
}

func TestCreateCohortProvisionsStandardCourses(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)

	view, err := service.CreateCohort(context.Background(), teacherActor(), "Cohort 4",
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 26, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("create cohort failed: %v", err)
	}
	got := make([]string, 0, len(view.Courses))
	for _, course := range view.Courses {
		got = append(got, course.Title)
		if len(course.Students) != 0 || len(course.Teachers) != 0 {
			t.Fatalf("expected empty rosters for new cohort")
		}
	}
	for i, want := range StandardCourseTitles {
		if got[i] != want {
			t.Fatalf("course %d: expected %q, got %q", i, want, got[i])
		}
	}
}

func TestCreateCohortSharesCourseRows(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)

	first, err := service.CreateCohort(context.Background(), teacherActor(), "Cohort 4",
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 26, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := service.CreateCohort(context.Background(), teacherActor(), "Cohort 5",
		time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	for i := range first.Courses {
		if first.Courses[i].CourseID != second.Courses[i].CourseID {
			t.Fatalf("expected shared course row for %q", first.Courses[i].Title)
		}
	}
}

func TestCreateCohortDuplicateTitle(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 26, 0, 0, 0, 0, time.UTC)
	if _, err := service.CreateCohort(context.Background(), teacherActor(), "Cohort 4", start, end); err != nil {
		t.Fatalf("create cohort failed: %v", err)
	}
	_, err := service.CreateCohort(context.Background(), teacherActor(), "cohort 4", start, end)
	if err == nil {
		t.Fatal("expected duplicate title rejection")
	}
	if !errors.Is(err, apperror.ErrInvariant) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
	if err.Error() != "Cohort with name 'cohort 4' already exists" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

// stalePreCheckStore reports every cohort title as free, standing in for a
// reader that raced another create between pre-check and insert.
type stalePreCheckStore struct {
	*memory.Store
}

func (stalePreCheckStore) CohortTitleExists(context.Context, string) (bool, error) {
	return false, nil
}

func TestCreateCohortDuplicateTitleStoreBackstop(t *testing.T) {
	store := memory.NewStore()
	service := Service{Repo: stalePreCheckStore{store}, Clock: store}

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 26, 0, 0, 0, 0, time.UTC)
	if _, err := service.CreateCohort(context.Background(), teacherActor(), "Cohort 4", start, end); err != nil {
		t.Fatalf("create cohort failed: %v", err)
	}
	_, err := service.CreateCohort(context.Background(), teacherActor(), "cohort 4", start, end)
	if !errors.Is(err, apperror.ErrInvariant) {
		t.Fatalf("expected invariant violation from the store, got %v", err)
	}
	if err.Error() != "Cohort with name 'cohort 4' already exists" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestCreateCohortEmptyTitle(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)

	_, err := service.CreateCohort(context.Background(), teacherActor(), "   ",
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 26, 0, 0, 0, 0, time.UTC),
	)
	if !errors.Is(err, domainerrors.ErrEmptyCohortTitle) {
		t.Fatalf("expected empty title rejection, got %v", err)
	}
}

func TestCreateCohortStudentDenied(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)

	_, err := service.CreateCohort(context.Background(), studentActor(), "Cohort 4",
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 26, 0, 0, 0, 0, time.UTC),
	)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err.Error() != "You are not authorized to create a new cohort." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestAddEnrollmentFlow(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)
	cohortID, courseID := seedCohort(t, service, store)

	enrollment, err := service.AddEnrollment(context.Background(), teacherActor(), 10, cohortID, courseID)
	if err != nil {
		t.Fatalf("add enrollment failed: %v", err)
	}
	if enrollment.UserID != 10 || enrollment.CohortID != cohortID || enrollment.CourseID != courseID {
		t.Fatalf("unexpected enrollment %+v", enrollment)
	}

	view, err := service.GetCohort(context.Background(), studentActor(), cohortID)
	if err != nil {
		t.Fatalf("get cohort failed: %v", err)
	}
	if len(view.Courses[0].Students) != 1 || view.Courses[0].Students[0].ID != 10 {
		t.Fatalf("expected user 10 on the roster, got %+v", view.Courses[0].Students)
	}
}

func TestAddEnrollmentValidationOrder(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)
	cohortID, courseID := seedCohort(t, service, store)

	_, err := service.AddEnrollment(context.Background(), studentActor(), 10, cohortID, courseID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden first, got %v", err)
	}
	if err.Error() != "You are not authorized to add a user to a cohort." {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	// Unknown user is reported before cohort checks run.
	_, err = service.AddEnrollment(context.Background(), teacherActor(), 999, 888, courseID)
	if !errors.Is(err, apperror.ErrNotFound) || err.Error() != "User with Id 999 not found." {
		t.Fatalf("expected user not found, got %v", err)
	}

	_, err = service.AddEnrollment(context.Background(), teacherActor(), 10, 888, courseID)
	if !errors.Is(err, apperror.ErrNotFound) || err.Error() != "Cohort with Id 888 not found." {
		t.Fatalf("expected cohort not found, got %v", err)
	}

	_, err = service.AddEnrollment(context.Background(), teacherActor(), 10, cohortID, 777)
	if !errors.Is(err, domainerrors.ErrCourseNotInCohort) {
		t.Fatalf("expected course-not-in-cohort, got %v", err)
	}
}

func TestAddEnrollmentDuplicateRejected(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)
	cohortID, courseID := seedCohort(t, service, store)

	if _, err := service.AddEnrollment(context.Background(), teacherActor(), 10, cohortID, courseID); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	_, err := service.AddEnrollment(context.Background(), teacherActor(), 10, cohortID, courseID)
	if !errors.Is(err, domainerrors.ErrAlreadyEnrolled) {
		t.Fatalf("expected already-enrolled rejection, got %v", err)
	}
	if err.Error() != "User is already in the specified course in the cohort." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestRemoveEnrollmentValidationOrder(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)
	cohortID, courseID := seedCohort(t, service, store)

	// User never enrolled anywhere in the cohort.
	_, err := service.RemoveEnrollment(context.Background(), teacherActor(), 10, cohortID, courseID)
	if !errors.Is(err, domainerrors.ErrUserNotInCohort) {
		t.Fatalf("expected user-not-in-cohort, got %v", err)
	}

	if _, err := service.AddEnrollment(context.Background(), teacherActor(), 10, cohortID, courseID); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// In the cohort, but the target course id is not part of it.
	_, err = service.RemoveEnrollment(context.Background(), teacherActor(), 10, cohortID, 777)
	if !errors.Is(err, domainerrors.ErrCourseNotInCohort) {
		t.Fatalf("expected course-not-in-cohort, got %v", err)
	}

	view, err := service.GetCohort(context.Background(), teacherActor(), cohortID)
	if err != nil {
		t.Fatalf("get cohort failed: %v", err)
	}
	otherCourseID := view.Courses[1].CourseID

	// In the cohort via another course, but not taking this one.
	_, err = service.RemoveEnrollment(context.Background(), teacherActor(), 10, cohortID, otherCourseID)
	if !errors.Is(err, domainerrors.ErrNotTakingCourse) {
		t.Fatalf("expected not-taking-course, got %v", err)
	}
	if err.Error() != "User is in cohort, but is not taking the specified course." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestRemoveEnrollmentDeletes(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)
	cohortID, courseID := seedCohort(t, service, store)

	if _, err := service.AddEnrollment(context.Background(), teacherActor(), 10, cohortID, courseID); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := service.RemoveEnrollment(context.Background(), teacherActor(), 10, cohortID, courseID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	view, err := service.GetCohort(context.Background(), teacherActor(), cohortID)
	if err != nil {
		t.Fatalf("get cohort failed: %v", err)
	}
	if len(view.Courses[0].Students) != 0 {
		t.Fatalf("expected empty roster after removal")
	}
}

func TestRemoveEnrollmentStudentDenied(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)
	cohortID, courseID := seedCohort(t, service, store)

	_, err := service.RemoveEnrollment(context.Background(), studentActor(), 10, cohortID, courseID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err.Error() != "You are not authorized to delete a user from a cohort." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestListCohortsTeacherOnly(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)
	seedCohort(t, service, store)

	views, err := service.GetAllCohorts(context.Background(), teacherActor())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 cohort, got %d", len(views))
	}

	_, err = service.GetAllCohorts(context.Background(), studentActor())
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err.Error() != "You are not authorized to list all cohorts." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestGetCohortsByUser(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)
	cohortID, courseID := seedCohort(t, service, store)

	if _, err := service.AddEnrollment(context.Background(), teacherActor(), 10, cohortID, courseID); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	views, err := service.GetCohortsByUser(context.Background(), studentActor(), 10)
	if err != nil {
		t.Fatalf("get cohorts by user failed: %v", err)
	}
	if len(views) != 1 || views[0].ID != cohortID {
		t.Fatalf("expected the seeded cohort, got %+v", views)
	}

	_, err = service.GetCohortsByUser(context.Background(), studentActor(), 999)
	if !errors.Is(err, apperror.ErrNotFound) || err.Error() != "User with Id 999 not found." {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestUnauthenticatedActorRejected(t *testing.T) {
	store := memory.NewStore()
	service := newEnrollmentService(store)

	_, err := service.GetAllCohorts(context.Background(), accesspolicy.Actor{})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err.Error() != "You must be logged in to perform this action." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
