package errors

import "campus/internal/shared/apperror"

// Canonical enrollment violation messages. These strings are part of the
// observable contract; callers surface them verbatim.
var (
	ErrEmptyCohortTitle  = apperror.Invariant("Cohort title cannot be empty.")
	ErrCourseNotInCohort = apperror.Invariant("The specified course is not part of this cohort.")
	ErrAlreadyEnrolled   = apperror.Invariant("User is already in the specified course in the cohort.")
	ErrUserNotInCohort   = apperror.Invariant("The specified user is not part of this cohort.")
	ErrNotTakingCourse   = apperror.Invariant("User is in cohort, but is not taking the specified course.")
)

// DuplicateCohortTitle reports a taken cohort title. Raised by the service
// pre-check and by the store backstops when concurrent creates collide.
func DuplicateCohortTitle(title string) error {
	return apperror.Invariantf("Cohort with name '%s' already exists", title)
}
