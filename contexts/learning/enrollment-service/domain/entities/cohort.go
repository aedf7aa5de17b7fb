package entities

import "time"

// Course is a shared, title-identified subject offered across cohorts.
type Course struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Cohort is a named group of enrolled users spanning a fixed set of courses.
type Cohort struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// CohortCourse declares that a course is offered within a cohort. A user can
// only be enrolled in (cohort, course) pairs that have this row.
type CohortCourse struct {
	CohortID int64  `json:"cohort_id"`
	CourseID int64  `json:"course_id"`
	Course   Course `json:"course"`
}

// Enrollment is the fact that a user takes a course within a cohort.
// At most one row exists per (cohort, course, user) triple.
type Enrollment struct {
	CohortID   int64     `json:"cohort_id"`
	CourseID   int64     `json:"course_id"`
	UserID     int64     `json:"user_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
