package httptransport

import "time"

// CreateCohortRequest is the cohort creation request body.
type CreateCohortRequest struct {
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// EnrollmentRequest identifies the user/cohort/course triple to add or remove.
type EnrollmentRequest struct {
	UserID   int64 `json:"user_id"`
	CohortID int64 `json:"cohort_id"`
	CourseID int64 `json:"course_id"`
}

type EnrollmentDTO struct {
	CohortID   int64     `json:"cohort_id"`
	CourseID   int64     `json:"course_id"`
	UserID     int64     `json:"user_id"`
	EnrolledAt time.Time `json:"enrolled_at,omitempty"`
}

type MemberDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// CourseRosterDTO is a course within a cohort with members split by role.
type CourseRosterDTO struct {
	CourseID int64       `json:"course_id"`
	Title    string      `json:"title"`
	Students []MemberDTO `json:"students"`
	Teachers []MemberDTO `json:"teachers"`
}

type CohortDTO struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
	Courses   []CourseRosterDTO `json:"courses"`
}

type ListCohortsResponse struct {
	Cohorts []CohortDTO `json:"cohorts"`
}
