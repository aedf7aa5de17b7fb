package entities

import "time"

// Member is the user shape embedded in cohort projections.
type Member struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// CourseRoster is one course within a cohort with its enrolled users split
// into role buckets for presentation.
type CourseRoster struct {
	CourseID int64    `json:"course_id"`
	Title    string   `json:"title"`
	Students []Member `json:"students"`
	Teachers []Member `json:"teachers"`
}

// CohortView is the eager projection Cohort -> CohortCourse -> Course ->
// Enrollment -> User returned by the read operations.
type CohortView struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	Courses   []CourseRoster `json:"courses"`
}
