package unit

import (
	"context"
	"errors"
	"testing"

	"campus/contexts/identity-access/accesspolicy"
	identity "campus/contexts/identity-access/identity-service"
	domainerrors "campus/contexts/identity-access/identity-service/domain/errors"
	identityhttp "campus/contexts/identity-access/identity-service/transport/http"
	"campus/internal/shared/apperror"
)

func TestIdentityServiceRegisterLoginLogout(t *testing.T) {
	module := identity.NewInMemoryModule(nil)
	ctx := context.Background()

	user, err := module.Handler.RegisterHandler(ctx, identityhttp.RegisterRequest{
		Username:  "ali",
		Email:     "Ali@Campus.Test",
		Password:  "secret123",
		Role:      "student",
		FirstName: "Ali",
		LastName:  "Vega",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "ali@campus.test" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}

	login, err := module.Handler.LoginHandler(ctx, identityhttp.LoginRequest{
		Email:    "ali@campus.test",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.Token == "" || login.User.ID != user.ID {
		t.Fatalf("unexpected login response token=%q user=%d", login.Token, login.User.ID)
	}

	actor, err := module.Handler.ResolveActor(ctx, login.Token)
	if err != nil {
		t.Fatalf("resolve actor failed: %v", err)
	}
	if actor.ID != user.ID || actor.Role != accesspolicy.RoleStudent {
		t.Fatalf("unexpected actor %+v", actor)
	}

	if err := module.Handler.LogoutHandler(ctx, login.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := module.Handler.ResolveActor(ctx, login.Token); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated after logout, got %v", err)
	}
}

func TestIdentityServiceRejectsDuplicateEmail(t *testing.T) {
	module := identity.NewInMemoryModule(nil)
	ctx := context.Background()

	_, err := module.Handler.RegisterHandler(ctx, identityhttp.RegisterRequest{
		Email:    "dup@campus.test",
		Password: "pw",
		Role:     "teacher",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err = module.Handler.RegisterHandler(ctx, identityhttp.RegisterRequest{
		Email:    "DUP@campus.test",
		Password: "pw",
		Role:     "student",
	})
	if !errors.Is(err, domainerrors.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestIdentityServiceLoginMessage(t *testing.T) {
	module := identity.NewInMemoryModule(nil)
	ctx := context.Background()

	_, err := module.Handler.LoginHandler(ctx, identityhttp.LoginRequest{
		Email:    "nobody@campus.test",
		Password: "whatever",
	})
	if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if err.Error() != "Invalid email or password." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestIdentityServiceGetUserNotFound(t *testing.T) {
	module := identity.NewInMemoryModule(nil)

	_, err := module.Handler.GetUserHandler(context.Background(), 99)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "User with Id 99 not found." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestIdentityServiceUpdateAuthorization(t *testing.T) {
	module := identity.NewInMemoryModule(nil)
	ctx := context.Background()

	teacher, err := module.Handler.RegisterHandler(ctx, identityhttp.RegisterRequest{
		Email:    "teacher@campus.test",
		Password: "pw",
		Role:     "teacher",
	})
	if err != nil {
		t.Fatalf("register teacher failed: %v", err)
	}
	student, err := module.Handler.RegisterHandler(ctx, identityhttp.RegisterRequest{
		Email:    "student@campus.test",
		Password: "pw",
		Role:     "student",
	})
	if err != nil {
		t.Fatalf("register student failed: %v", err)
	}

	bio := "second cohort"
	studentActor := accesspolicy.Actor{ID: student.ID, Role: accesspolicy.RoleStudent, Authenticated: true}
	_, err = module.Handler.UpdateUserHandler(ctx, studentActor, teacher.ID, identityhttp.UpdateUserRequest{Bio: &bio})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for cross-user edit, got %v", err)
	}

	updated, err := module.Handler.UpdateUserHandler(ctx, studentActor, student.ID, identityhttp.UpdateUserRequest{Bio: &bio})
	if err != nil {
		t.Fatalf("self edit failed: %v", err)
	}
	if updated.Bio != bio {
		t.Fatalf("expected patched bio, got %q", updated.Bio)
	}

	teacherActor := accesspolicy.Actor{ID: teacher.ID, Role: accesspolicy.RoleTeacher, Authenticated: true}
	first := "Avery"
	updated, err = module.Handler.UpdateUserHandler(ctx, teacherActor, student.ID, identityhttp.UpdateUserRequest{FirstName: &first})
	if err != nil {
		t.Fatalf("teacher edit failed: %v", err)
	}
	if updated.FirstName != "Avery" || updated.Bio != bio {
		t.Fatalf("expected partial patch, got %+v", updated)
	}
}
