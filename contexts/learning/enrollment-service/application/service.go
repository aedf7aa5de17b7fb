package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campus/contexts/identity-access/accesspolicy"
	"campus/contexts/learning/enrollment-service/domain/entities"
	domainerrors "campus/contexts/learning/enrollment-service/domain/errors"
	"campus/contexts/learning/enrollment-service/ports"
	"campus/internal/shared/apperror"
	"campus/internal/shared/events"
)

// StandardCourseTitles are provisioned for every new cohort. Course rows are
// shared across cohorts by title; the first cohort to need one creates it.
var StandardCourseTitles = []string{
	"Software Development",
	"Front-End Development",
	"Data Analytics",
}

// Service orchestrates cohort and enrollment operations.
type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Events ports.EventPublisher
	Logger *slog.Logger
}

// step is one link of an ordered validation pipeline. Steps run short-circuit
// so the error precedence stays fixed regardless of store behavior.
type step func(ctx context.Context) error

func runSteps(ctx context.Context, steps []step) error {
	for _, s := range steps {
		if err := s(ctx); err != nil {
			return err
		}
	}
	return nil
}

// AddEnrollment enrolls a user into a course within a cohort. A repeat call
// for the same triple fails with the "already enrolled" violation rather than
// succeeding silently.
func (s Service) AddEnrollment(
	ctx context.Context,
	actor accesspolicy.Actor,
	userID int64,
	cohortID int64,
	courseID int64,
) (entities.Enrollment, error) {
	var cohortCourses []entities.CohortCourse

	steps := []step{
		func(ctx context.Context) error {
			return s.authorize(actor, accesspolicy.ResourceEnrollment, accesspolicy.ActionCreate)
		},
		func(ctx context.Context) error {
			return s.requireUser(ctx, userID)
		},
		func(ctx context.Context) error {
			var err error
			_, cohortCourses, err = s.requireCohort(ctx, cohortID)
			return err
		},
		func(ctx context.Context) error {
			if !courseInCohort(cohortCourses, courseID) {
				return domainerrors.ErrCourseNotInCohort
			}
			return nil
		},
		func(ctx context.Context) error {
			exists, err := s.Repo.EnrollmentExists(ctx, cohortID, courseID, userID)
			if err != nil {
				return err
			}
			if exists {
				return domainerrors.ErrAlreadyEnrolled
			}
			return nil
		},
	}
	if err := runSteps(ctx, steps); err != nil {
		return entities.Enrollment{}, err
	}

	enrollment := entities.Enrollment{
		CohortID:   cohortID,
		CourseID:   courseID,
		UserID:     userID,
		EnrolledAt: s.now(),
	}
	// The composite key is the concurrency backstop: a racing duplicate
	// insert surfaces here as ErrAlreadyEnrolled from the adapter.
	if err := s.Repo.CreateEnrollment(ctx, enrollment); err != nil {
		return entities.Enrollment{}, err
	}

	s.publish(ctx, "enrollment.added", "enrollment", enrollmentKey(enrollment), enrollment)
	resolveLogger(s.Logger).Info("enrollment added",
		"event", "enrollment_added",
		"module", "learning/enrollment-service",
		"layer", "application",
		"cohort_id", cohortID,
		"course_id", courseID,
		"user_id", userID,
	)
	return enrollment, nil
}

// RemoveEnrollment withdraws a user from a course within a cohort, reporting
// the precise reason when the triple does not exist.
func (s Service) RemoveEnrollment(
	ctx context.Context,
	actor accesspolicy.Actor,
	userID int64,
	cohortID int64,
	courseID int64,
) (entities.Enrollment, error) {
	var cohortCourses []entities.CohortCourse

	steps := []step{
		func(ctx context.Context) error {
			return s.authorize(actor, accesspolicy.ResourceEnrollment, accesspolicy.ActionDelete)
		},
		func(ctx context.Context) error {
			return s.requireUser(ctx, userID)
		},
		func(ctx context.Context) error {
			var err error
			_, cohortCourses, err = s.requireCohort(ctx, cohortID)
			return err
		},
		func(ctx context.Context) error {
			inCohort, err := s.Repo.UserInCohort(ctx, cohortID, userID)
			if err != nil {
				return err
			}
			if !inCohort {
				return domainerrors.ErrUserNotInCohort
			}
			return nil
		},
		func(ctx context.Context) error {
			if !courseInCohort(cohortCourses, courseID) {
				return domainerrors.ErrCourseNotInCohort
			}
			return nil
		},
		func(ctx context.Context) error {
			exists, err := s.Repo.EnrollmentExists(ctx, cohortID, courseID, userID)
			if err != nil {
				return err
			}
			if !exists {
				return domainerrors.ErrNotTakingCourse
			}
			return nil
		},
	}
	if err := runSteps(ctx, steps); err != nil {
		return entities.Enrollment{}, err
	}

	deleted, err := s.Repo.DeleteEnrollment(ctx, cohortID, courseID, userID)
	if err != nil {
		return entities.Enrollment{}, err
	}
	if !deleted {
		// Lost a race with a concurrent removal.
		return entities.Enrollment{}, domainerrors.ErrNotTakingCourse
	}

	enrollment := entities.Enrollment{CohortID: cohortID, CourseID: courseID, UserID: userID}
	s.publish(ctx, "enrollment.removed", "enrollment", enrollmentKey(enrollment), enrollment)
	resolveLogger(s.Logger).Info("enrollment removed",
		"event", "enrollment_removed",
		"module", "learning/enrollment-service",
		"layer", "application",
		"cohort_id", cohortID,
		"course_id", courseID,
		"user_id", userID,
	)
	return enrollment, nil
}

// CreateCohort provisions a cohort together with associations to the three
// standard courses, creating missing course rows on the way.
func (s Service) CreateCohort(
	ctx context.Context,
	actor accesspolicy.Actor,
	title string,
	startDate time.Time,
	endDate time.Time,
) (entities.CohortView, error) {
	if err := s.authorize(actor, accesspolicy.ResourceCohort, accesspolicy.ActionCreate); err != nil {
		return entities.CohortView{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return entities.CohortView{}, domainerrors.ErrEmptyCohortTitle
	}
	taken, err := s.Repo.CohortTitleExists(ctx, title)
	if err != nil {
		return entities.CohortView{}, err
	}
	if taken {
		return entities.CohortView{}, domainerrors.DuplicateCohortTitle(title)
	}

	view, err := s.Repo.CreateCohort(ctx, ports.CreateCohortInput{
		Title:        title,
		StartDate:    startDate,
		EndDate:      endDate,
		CourseTitles: StandardCourseTitles,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return entities.CohortView{}, err
	}

	s.publish(ctx, "cohort.created", "cohort", fmt.Sprintf("%d", view.ID), view)
	resolveLogger(s.Logger).Info("cohort created",
		"event", "cohort_created",
		"module", "learning/enrollment-service",
		"layer", "application",
		"cohort_id", view.ID,
		"title", view.Title,
	)
	return view, nil
}

func (s Service) GetCohort(ctx context.Context, actor accesspolicy.Actor, cohortID int64) (entities.CohortView, error) {
	if err := s.authorize(actor, accesspolicy.ResourceCohort, accesspolicy.ActionRead); err != nil {
		return entities.CohortView{}, err
	}
	view, found, err := s.Repo.GetCohortView(ctx, cohortID)
	if err != nil {
		return entities.CohortView{}, err
	}
	if !found {
		return entities.CohortView{}, apperror.NotFoundf("Cohort with Id %d not found.", cohortID)
	}
	return view, nil
}

func (s Service) GetAllCohorts(ctx context.Context, actor accesspolicy.Actor) ([]entities.CohortView, error) {
	if err := s.authorize(actor, accesspolicy.ResourceCohort, accesspolicy.ActionList); err != nil {
		return nil, err
	}
	return s.Repo.ListCohortViews(ctx)
}

func (s Service) GetCohortsByUser(ctx context.Context, actor accesspolicy.Actor, userID int64) ([]entities.CohortView, error) {
	if err := s.authorize(actor, accesspolicy.ResourceCohort, accesspolicy.ActionRead); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.Repo.ListCohortViewsByUser(ctx, userID)
}

func (s Service) authorize(actor accesspolicy.Actor, resource accesspolicy.Resource, action accesspolicy.Action) error {
	decision := accesspolicy.Decide(actor, resource, action, nil)
	if decision.Allowed {
		return nil
	}
	resolveLogger(s.Logger).Warn("enrollment action denied",
		"event", "enrollment_action_denied",
		"module", "learning/enrollment-service",
		"layer", "application",
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"resource", resource,
		"action", action,
	)
	return apperror.Forbidden(decision.Reason)
}

func (s Service) requireUser(ctx context.Context, userID int64) error {
	_, found, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NotFoundf("User with Id %d not found.", userID)
	}
	return nil
}

func (s Service) requireCohort(ctx context.Context, cohortID int64) (entities.Cohort, []entities.CohortCourse, error) {
	cohort, cohortCourses, found, err := s.Repo.GetCohort(ctx, cohortID)
	if err != nil {
		return entities.Cohort{}, nil, err
	}
	if !found {
		return entities.Cohort{}, nil, apperror.NotFoundf("Cohort with Id %d not found.", cohortID)
	}
	return cohort, cohortCourses, nil
}

func (s Service) publish(ctx context.Context, eventType string, entityType string, entityID string, payload any) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, events.Envelope{
		EventType:     eventType,
		SourceService: "learning/enrollment-service",
		OccurredAtUTC: s.now(),
		EntityType:    entityType,
		EntityID:      entityID,
		Payload:       payload,
	})
	if err != nil {
		resolveLogger(s.Logger).Warn("audit event publish failed",
			"event", "enrollment_audit_publish_failed",
			"module", "learning/enrollment-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func courseInCohort(cohortCourses []entities.CohortCourse, courseID int64) bool {
	for _, cc := range cohortCourses {
		if cc.CourseID == courseID {
			return true
		}
	}
	return false
}

func enrollmentKey(e entities.Enrollment) string {
	return fmt.Sprintf("%d/%d/%d", e.CohortID, e.CourseID, e.UserID)
}
