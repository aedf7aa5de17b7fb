package httpadapter

import (
	"context"
	"log/slog"

	"campus/contexts/identity-access/accesspolicy"
	"campus/contexts/identity-access/identity-service/application"
	"campus/contexts/identity-access/identity-service/domain/entities"
	"campus/contexts/identity-access/identity-service/ports"
	httptransport "campus/contexts/identity-access/identity-service/transport/http"
)

// Handler maps HTTP DTOs to identity application calls.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) RegisterHandler(ctx context.Context, request httptransport.RegisterRequest) (httptransport.UserDTO, error) {
	user, err := h.Service.Register(ctx, application.RegisterInput{
		Username:   request.Username,
		Email:      request.Email,
		Password:   request.Password,
		Role:       request.Role,
		FirstName:  request.FirstName,
		LastName:   request.LastName,
		Bio:        request.Bio,
		GithubURL:  request.GithubURL,
		Mobile:     request.Mobile,
		Specialism: request.Specialism,
	})
	if err != nil {
		return httptransport.UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (h Handler) LoginHandler(ctx context.Context, request httptransport.LoginRequest) (httptransport.LoginResponse, error) {
	token, user, err := h.Service.Login(ctx, request.Email, request.Password)
	if err != nil {
		return httptransport.LoginResponse{}, err
	}
	return httptransport.LoginResponse{Token: token, User: toUserDTO(user)}, nil
}

func (h Handler) LogoutHandler(ctx context.Context, token string) error {
	return h.Service.Logout(ctx, token)
}

func (h Handler) ResolveActor(ctx context.Context, token string) (accesspolicy.Actor, error) {
	return h.Service.ResolveActor(ctx, token)
}

func (h Handler) GetUserHandler(ctx context.Context, id int64) (httptransport.UserDTO, error) {
	user, err := h.Service.GetUser(ctx, id)
	if err != nil {
		return httptransport.UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (h Handler) ListUsersHandler(ctx context.Context) (httptransport.ListUsersResponse, error) {
	users, err := h.Service.ListUsers(ctx)
	if err != nil {
		return httptransport.ListUsersResponse{}, err
	}
	items := make([]httptransport.UserDTO, 0, len(users))
	for _, user := range users {
		items = append(items, toUserDTO(user))
	}
	return httptransport.ListUsersResponse{Users: items}, nil
}

func (h Handler) UpdateUserHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	id int64,
	request httptransport.UpdateUserRequest,
) (httptransport.UserDTO, error) {
	user, err := h.Service.UpdateUser(ctx, actor, id, ports.UpdateUserInput{
		Username:   request.Username,
		FirstName:  request.FirstName,
		LastName:   request.LastName,
		Bio:        request.Bio,
		GithubURL:  request.GithubURL,
		Mobile:     request.Mobile,
		Specialism: request.Specialism,
	})
	if err != nil {
		return httptransport.UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func toUserDTO(user entities.User) httptransport.UserDTO {
	return httptransport.UserDTO{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       string(user.Role),
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Bio:        user.Bio,
		GithubURL:  user.GithubURL,
		Mobile:     user.Mobile,
		Specialism: user.Specialism,
		CreatedAt:  user.CreatedAt,
	}
}
