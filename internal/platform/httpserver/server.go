package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	content "campus/contexts/community/content-service"
	contenthttp "campus/contexts/community/content-service/transport/http"
	"campus/contexts/identity-access/accesspolicy"
	identity "campus/contexts/identity-access/identity-service"
	identityhttp "campus/contexts/identity-access/identity-service/transport/http"
	enrollment "campus/contexts/learning/enrollment-service"
	enrollmenthttp "campus/contexts/learning/enrollment-service/transport/http"
	"campus/internal/shared/apperror"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "campus/internal/platform/httpserver/docs"
)

// Server exposes the three campus modules over HTTP. Every response is the
// {message, data, timestamp} envelope; statuses follow the apperror kind.
type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	identity   identity.Module
	enrollment enrollment.Module
	content    content.Module
	now        func() time.Time
}

func New(
	identityModule identity.Module,
	enrollmentModule enrollment.Module,
	contentModule content.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		identity:   identityModule,
		enrollment: enrollmentModule,
		content:    contentModule,
		now:        func() time.Time { return time.Now().UTC() },
	}
	s.registerRoutes()
	return s
}

// Handler returns the routed mux, used directly by in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /users", s.handleRegister)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("POST /logout", s.withActor(s.handleLogout))
	s.mux.HandleFunc("GET /users", s.withActor(s.handleListUsers))
	s.mux.HandleFunc("GET /users/{id}", s.withActor(s.handleGetUser))
	s.mux.HandleFunc("PATCH /users/{id}", s.withActor(s.handleUpdateUser))

	s.mux.HandleFunc("POST /cohorts", s.withActor(s.handleCreateCohort))
	s.mux.HandleFunc("GET /cohorts", s.withActor(s.handleListCohorts))
	s.mux.HandleFunc("GET /cohorts/{id}", s.withActor(s.handleGetCohort))
	s.mux.HandleFunc("GET /cohorts/user/{userId}", s.withActor(s.handleListCohortsByUser))
	s.mux.HandleFunc("POST /cohorts/{cohortId}/{userId}/{courseId}", s.withActor(s.handleAddEnrollment))
	s.mux.HandleFunc("DELETE /cohorts/{cohortId}/{userId}/{courseId}", s.withActor(s.handleRemoveEnrollment))

	s.mux.HandleFunc("POST /posts", s.withActor(s.handleCreatePost))
	s.mux.HandleFunc("GET /posts", s.withActor(s.handleListPosts))
	s.mux.HandleFunc("GET /posts/user/{userId}", s.withActor(s.handleListPostsByUser))
	s.mux.HandleFunc("PATCH /posts/{id}", s.withActor(s.handleUpdatePost))
	s.mux.HandleFunc("DELETE /posts/{id}", s.withActor(s.handleDeletePost))
	s.mux.HandleFunc("POST /posts/{id}/comments", s.withActor(s.handleAddComment))
	s.mux.HandleFunc("GET /posts/{id}/comments", s.withActor(s.handleListCommentsForPost))
	s.mux.HandleFunc("PATCH /comments/{id}", s.withActor(s.handleUpdateComment))
	s.mux.HandleFunc("DELETE /comments/{id}", s.withActor(s.handleDeleteComment))
	s.mux.HandleFunc("GET /comments/user/{userId}", s.withActor(s.handleListCommentsByUser))
}

// withActor resolves the bearer session token into an actor before the
// wrapped handler runs. Missing or stale tokens end the request with 401.
func (s *Server) withActor(next func(http.ResponseWriter, *http.Request, accesspolicy.Actor)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeError(w, http.StatusUnauthorized, "You must be logged in to perform this action.")
			return
		}
		actor, err := s.identity.Handler.ResolveActor(r.Context(), token)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		next(w, r, actor)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.identity.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusCreated, "Success", resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.identity.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ accesspolicy.Actor) {
	if err := s.identity.Handler.LogoutHandler(r.Context(), bearerToken(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", nil)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ accesspolicy.Actor) {
	resp, err := s.identity.Handler.ListUsersHandler(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, _ accesspolicy.Actor) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	resp, err := s.identity.Handler.GetUserHandler(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req identityhttp.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.identity.Handler.UpdateUserHandler(r.Context(), actor, id, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleCreateCohort(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	var req enrollmenthttp.CreateCohortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.enrollment.Handler.CreateCohortHandler(r.Context(), actor, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusCreated, "Success", resp)
}

func (s *Server) handleListCohorts(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	resp, err := s.enrollment.Handler.ListCohortsHandler(r.Context(), actor)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleGetCohort(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	resp, err := s.enrollment.Handler.GetCohortHandler(r.Context(), actor, id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleListCohortsByUser(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	userID, ok := s.pathID(w, r, "userId")
	if !ok {
		return
	}
	resp, err := s.enrollment.Handler.ListCohortsByUserHandler(r.Context(), actor, userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleAddEnrollment(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	req, ok := s.enrollmentPath(w, r)
	if !ok {
		return
	}
	resp, err := s.enrollment.Handler.AddEnrollmentHandler(r.Context(), actor, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	// Enrollment adds respond 200, not 201, matching the established contract.
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleRemoveEnrollment(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	req, ok := s.enrollmentPath(w, r)
	if !ok {
		return
	}
	resp, err := s.enrollment.Handler.RemoveEnrollmentHandler(r.Context(), actor, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	var req contenthttp.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.content.Handler.CreatePostHandler(r.Context(), actor, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusCreated, "Success", resp)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	resp, err := s.content.Handler.GetAllPostsHandler(r.Context(), actor)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleListPostsByUser(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	userID, ok := s.pathID(w, r, "userId")
	if !ok {
		return
	}
	resp, err := s.content.Handler.GetPostsByUserHandler(r.Context(), actor, userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req contenthttp.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.content.Handler.UpdatePostHandler(r.Context(), actor, id, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.content.Handler.DeletePostHandler(r.Context(), actor, id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", nil)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	postID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req contenthttp.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.content.Handler.AddCommentHandler(r.Context(), actor, postID, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusCreated, "Success", resp)
}

func (s *Server) handleListCommentsForPost(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	postID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	resp, err := s.content.Handler.GetCommentsForPostHandler(r.Context(), actor, postID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req contenthttp.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.content.Handler.UpdateCommentHandler(r.Context(), actor, id, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Comment updated successfully.", resp)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.content.Handler.DeleteCommentHandler(r.Context(), actor, id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Comment deleted successfully.", nil)
}

func (s *Server) handleListCommentsByUser(w http.ResponseWriter, r *http.Request, actor accesspolicy.Actor) {
	userID, ok := s.pathID(w, r, "userId")
	if !ok {
		return
	}
	resp, err := s.content.Handler.GetCommentsByUserHandler(r.Context(), actor, userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "Success", resp)
}

func (s *Server) enrollmentPath(w http.ResponseWriter, r *http.Request) (enrollmenthttp.EnrollmentRequest, bool) {
	cohortID, ok := s.pathID(w, r, "cohortId")
	if !ok {
		return enrollmenthttp.EnrollmentRequest{}, false
	}
	userID, ok := s.pathID(w, r, "userId")
	if !ok {
		return enrollmenthttp.EnrollmentRequest{}, false
	}
	courseID, ok := s.pathID(w, r, "courseId")
	if !ok {
		return enrollmenthttp.EnrollmentRequest{}, false
	}
	return enrollmenthttp.EnrollmentRequest{UserID: userID, CohortID: cohortID, CourseID: courseID}, true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return id, true
}

// envelope is the uniform response body.
type envelope struct {
	Message   string    `json:"message"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperror.ErrInvariant):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperror.ErrForbidden):
		s.writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperror.ErrUnauthenticated):
		s.writeError(w, http.StatusUnauthorized, err.Error())
	default:
		s.logger.Error("unhandled request error",
			"event", "http_internal_error",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Message: message, Data: data, Timestamp: s.now()})
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Message: message, Timestamp: s.now()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
