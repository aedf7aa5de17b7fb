package ports

import (
	"context"
	"time"

	"campus/contexts/learning/enrollment-service/domain/entities"
	"campus/internal/shared/events"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// EventPublisher emits audit events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Envelope) error
}

// UserProjection is the cross-context read of a user needed by enrollment
// checks and rosters.
type UserProjection struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Role      string
}

// CreateCohortInput is persisted atomically: the cohort row, the shared
// course rows (created on first use) and one cohort-course association per
// title, all or nothing.
type CreateCohortInput struct {
	Title        string
	StartDate    time.Time
	EndDate      time.Time
	CourseTitles []string
	CreatedAt    time.Time
}

// Repository is the persistence boundary for cohorts, courses and
// enrollments. Composite keys identify association rows; there is no
// surrogate id on CohortCourse or Enrollment.
type Repository interface {
	GetUser(ctx context.Context, userID int64) (UserProjection, bool, error)

	CohortTitleExists(ctx context.Context, title string) (bool, error)
	CreateCohort(ctx context.Context, input CreateCohortInput) (entities.CohortView, error)
	GetCohort(ctx context.Context, cohortID int64) (entities.Cohort, []entities.CohortCourse, bool, error)

	EnrollmentExists(ctx context.Context, cohortID int64, courseID int64, userID int64) (bool, error)
	UserInCohort(ctx context.Context, cohortID int64, userID int64) (bool, error)
	CreateEnrollment(ctx context.Context, enrollment entities.Enrollment) error
	DeleteEnrollment(ctx context.Context, cohortID int64, courseID int64, userID int64) (bool, error)

	GetCohortView(ctx context.Context, cohortID int64) (entities.CohortView, bool, error)
	ListCohortViews(ctx context.Context) ([]entities.CohortView, error)
	ListCohortViewsByUser(ctx context.Context, userID int64) ([]entities.CohortView, error)
}
