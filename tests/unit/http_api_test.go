package unit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	content "campus/contexts/community/content-service"
	contententities "campus/contexts/community/content-service/domain/entities"
	contenthttp "campus/contexts/community/content-service/transport/http"
	identity "campus/contexts/identity-access/identity-service"
	identityhttp "campus/contexts/identity-access/identity-service/transport/http"
	enrollment "campus/contexts/learning/enrollment-service"
	"campus/contexts/learning/enrollment-service/ports"
	enrollmenthttp "campus/contexts/learning/enrollment-service/transport/http"
	"campus/internal/platform/httpserver"
)

type apiFixture struct {
	handler    http.Handler
	identity   identity.Module
	enrollment enrollment.Module
	content    content.Module
}

type apiEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	identityModule := identity.NewInMemoryModule(nil)
	enrollmentModule := enrollment.NewInMemoryModule(nil, nil)
	contentModule := content.NewInMemoryModule(nil, nil)
	server := httpserver.New(identityModule, enrollmentModule, contentModule, nil, ":0")
	return apiFixture{
		handler:    server.Handler(),
		identity:   identityModule,
		enrollment: enrollmentModule,
		content:    contentModule,
	}
}

func (f apiFixture) do(t *testing.T, method string, path string, token string, body any) (int, apiEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env apiEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %s %s: %v (body %q)", method, path, err, rec.Body.String())
	}
	return rec.Code, env
}

// register creates a user over HTTP and mirrors it into the enrollment and
// content projections, the way the composition root does for memory runs.
func (f apiFixture) register(t *testing.T, username string, email string, role string) identityhttp.UserDTO {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/users", "", identityhttp.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "secret123",
		Role:     role,
	})
	if status != http.StatusCreated {
		t.Fatalf("register returned %d (%s)", status, env.Message)
	}
	var user identityhttp.UserDTO
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	f.enrollment.Store.PutUser(ports.UserProjection{ID: user.ID, Username: user.Username, Role: user.Role})
	f.content.Store.PutUser(contententities.Author{ID: user.ID, Username: user.Username, Role: user.Role})
	return user
}

func (f apiFixture) login(t *testing.T, email string) string {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/login", "", identityhttp.LoginRequest{
		Email:    email,
		Password: "secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("login returned %d (%s)", status, env.Message)
	}
	var resp identityhttp.LoginResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func fmtEnrollmentPath(cohortID int64, userID int64, courseID int64) string {
	return fmt.Sprintf("/cohorts/%d/%d/%d", cohortID, userID, courseID)
}

func fmtPostCommentsPath(postID int64) string {
	return fmt.Sprintf("/posts/%d/comments", postID)
}

func fmtCommentPath(commentID int64) string {
	return fmt.Sprintf("/comments/%d", commentID)
}

func TestHTTPRequiresBearerToken(t *testing.T) {
	fixture := newAPIFixture(t)

	status, env := fixture.do(t, http.MethodGet, "/cohorts", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if env.Message != "You must be logged in to perform this action." {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestHTTPRejectsNonIntegerPathID(t *testing.T) {
	fixture := newAPIFixture(t)
	fixture.register(t, "prof", "prof@campus.test", "teacher")
	token := fixture.login(t, "prof@campus.test")

	status, env := fixture.do(t, http.MethodGet, "/users/abc", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if env.Message != "id must be an integer" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestHTTPCohortAndEnrollmentFlow(t *testing.T) {
	fixture := newAPIFixture(t)
	fixture.register(t, "prof", "prof@campus.test", "teacher")
	student := fixture.register(t, "sam", "sam@campus.test", "student")
	token := fixture.login(t, "prof@campus.test")

	status, env := fixture.do(t, http.MethodPost, "/cohorts", token, enrollmenthttp.CreateCohortRequest{Title: "Cohort 4"})
	if status != http.StatusCreated {
		t.Fatalf("create cohort returned %d (%s)", status, env.Message)
	}
	var cohort enrollmenthttp.CohortDTO
	if err := json.Unmarshal(env.Data, &cohort); err != nil {
		t.Fatalf("decode cohort: %v", err)
	}
	if len(cohort.Courses) != 3 {
		t.Fatalf("expected 3 standard courses, got %d", len(cohort.Courses))
	}

	path := fmtEnrollmentPath(cohort.ID, student.ID, cohort.Courses[0].CourseID)
	status, env = fixture.do(t, http.MethodPost, path, token, nil)
	if status != http.StatusOK {
		t.Fatalf("add enrollment returned %d (%s)", status, env.Message)
	}

	status, env = fixture.do(t, http.MethodPost, path, token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate enrollment, got %d", status)
	}
	if env.Message != "User is already in the specified course in the cohort." {
		t.Fatalf("unexpected message: %q", env.Message)
	}

	status, env = fixture.do(t, http.MethodDelete, path, token, nil)
	if status != http.StatusOK {
		t.Fatalf("remove enrollment returned %d (%s)", status, env.Message)
	}

	studentToken := fixture.login(t, "sam@campus.test")
	status, env = fixture.do(t, http.MethodGet, "/cohorts", studentToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for student cohort list, got %d (%s)", status, env.Message)
	}
}

func TestHTTPCommentLifecycleMessages(t *testing.T) {
	fixture := newAPIFixture(t)
	fixture.register(t, "sam", "sam@campus.test", "student")
	token := fixture.login(t, "sam@campus.test")

	status, env := fixture.do(t, http.MethodPost, "/posts", token, contenthttp.CreatePostRequest{Content: "hello cohort"})
	if status != http.StatusCreated {
		t.Fatalf("create post returned %d (%s)", status, env.Message)
	}
	var post contenthttp.PostDTO
	if err := json.Unmarshal(env.Data, &post); err != nil {
		t.Fatalf("decode post: %v", err)
	}

	status, env = fixture.do(t, http.MethodPost, fmtPostCommentsPath(post.ID), token, contenthttp.CreateCommentRequest{Content: "first"})
	if status != http.StatusCreated {
		t.Fatalf("add comment returned %d (%s)", status, env.Message)
	}
	var comment contenthttp.CommentDTO
	if err := json.Unmarshal(env.Data, &comment); err != nil {
		t.Fatalf("decode comment: %v", err)
	}

	status, env = fixture.do(t, http.MethodPatch, fmtCommentPath(comment.ID), token, contenthttp.CreateCommentRequest{Content: "second"})
	if status != http.StatusOK {
		t.Fatalf("update comment returned %d (%s)", status, env.Message)
	}
	if env.Message != "Comment updated successfully." {
		t.Fatalf("unexpected message: %q", env.Message)
	}

	status, env = fixture.do(t, http.MethodDelete, fmtCommentPath(comment.ID), token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete comment returned %d (%s)", status, env.Message)
	}
	if env.Message != "Comment deleted successfully." {
		t.Fatalf("unexpected message: %q", env.Message)
	}

	status, env = fixture.do(t, http.MethodPatch, fmtCommentPath(comment.ID), token, contenthttp.CreateCommentRequest{Content: "third"})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted comment, got %d", status)
	}
	if env.Message != "Comment not found." {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}
