package httpadapter

import (
	"context"
	"log/slog"

	"campus/contexts/identity-access/accesspolicy"
	"campus/contexts/learning/enrollment-service/application"
	"campus/contexts/learning/enrollment-service/domain/entities"
	httptransport "campus/contexts/learning/enrollment-service/transport/http"
)

// Handler maps HTTP DTOs to enrollment application calls.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) AddEnrollmentHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	request httptransport.EnrollmentRequest,
) (httptransport.EnrollmentDTO, error) {
	enrollment, err := h.Service.AddEnrollment(ctx, actor, request.UserID, request.CohortID, request.CourseID)
	if err != nil {
		return httptransport.EnrollmentDTO{}, err
	}
	return toEnrollmentDTO(enrollment), nil
}

func (h Handler) RemoveEnrollmentHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	request httptransport.EnrollmentRequest,
) (httptransport.EnrollmentDTO, error) {
	enrollment, err := h.Service.RemoveEnrollment(ctx, actor, request.UserID, request.CohortID, request.CourseID)
	if err != nil {
		return httptransport.EnrollmentDTO{}, err
	}
	return toEnrollmentDTO(enrollment), nil
}

func (h Handler) CreateCohortHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	request httptransport.CreateCohortRequest,
) (httptransport.CohortDTO, error) {
	view, err := h.Service.CreateCohort(ctx, actor, request.Title, request.StartDate, request.EndDate)
	if err != nil {
		return httptransport.CohortDTO{}, err
	}
	return toCohortDTO(view), nil
}

func (h Handler) GetCohortHandler(ctx context.Context, actor accesspolicy.Actor, cohortID int64) (httptransport.CohortDTO, error) {
	view, err := h.Service.GetCohort(ctx, actor, cohortID)
	if err != nil {
		return httptransport.CohortDTO{}, err
	}
	return toCohortDTO(view), nil
}

func (h Handler) ListCohortsHandler(ctx context.Context, actor accesspolicy.Actor) (httptransport.ListCohortsResponse, error) {
	views, err := h.Service.GetAllCohorts(ctx, actor)
	if err != nil {
		return httptransport.ListCohortsResponse{}, err
	}
	return toListResponse(views), nil
}

func (h Handler) ListCohortsByUserHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	userID int64,
) (httptransport.ListCohortsResponse, error) {
	views, err := h.Service.GetCohortsByUser(ctx, actor, userID)
	if err != nil {
		return httptransport.ListCohortsResponse{}, err
	}
	return toListResponse(views), nil
}

func toListResponse(views []entities.CohortView) httptransport.ListCohortsResponse {
	items := make([]httptransport.CohortDTO, 0, len(views))
	for _, view := range views {
		items = append(items, toCohortDTO(view))
	}
	return httptransport.ListCohortsResponse{Cohorts: items}
}

func toEnrollmentDTO(enrollment entities.Enrollment) httptransport.EnrollmentDTO {
	return httptransport.EnrollmentDTO{
		CohortID:   enrollment.CohortID,
		CourseID:   enrollment.CourseID,
		UserID:     enrollment.UserID,
		EnrolledAt: enrollment.EnrolledAt,
	}
}

func toCohortDTO(view entities.CohortView) httptransport.CohortDTO {
	courses := make([]httptransport.CourseRosterDTO, 0, len(view.Courses))
	for _, roster := range view.Courses {
		courses = append(courses, httptransport.CourseRosterDTO{
			CourseID: roster.CourseID,
			Title:    roster.Title,
			Students: toMemberDTOs(roster.Students),
			Teachers: toMemberDTOs(roster.Teachers),
		})
	}
	return httptransport.CohortDTO{
		ID:        view.ID,
		Title:     view.Title,
		StartDate: view.StartDate,
		EndDate:   view.EndDate,
		Courses:   courses,
	}
}

func toMemberDTOs(members []entities.Member) []httptransport.MemberDTO {
	items := make([]httptransport.MemberDTO, 0, len(members))
	for _, member := range members {
		items = append(items, httptransport.MemberDTO{
			ID:        member.ID,
			Username:  member.Username,
			FirstName: member.FirstName,
			LastName:  member.LastName,
			Role:      member.Role,
		})
	}
	return items
}
