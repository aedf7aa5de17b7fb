package httpadapter

import (
	"context"
	"log/slog"

	"campus/contexts/community/content-service/application"
	"campus/contexts/community/content-service/domain/entities"
	httptransport "campus/contexts/community/content-service/transport/http"
	"campus/contexts/identity-access/accesspolicy"
)

// Handler maps HTTP DTOs to content application calls.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreatePostHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	request httptransport.CreatePostRequest,
) (httptransport.PostDTO, error) {
	view, err := h.Service.CreatePost(ctx, actor, request.Content)
	if err != nil {
		return httptransport.PostDTO{}, err
	}
	return toPostDTO(view), nil
}

func (h Handler) GetAllPostsHandler(ctx context.Context, actor accesspolicy.Actor) (httptransport.ListPostsResponse, error) {
	views, err := h.Service.GetAllPosts(ctx, actor)
	if err != nil {
		return httptransport.ListPostsResponse{}, err
	}
	return toListPostsResponse(views), nil
}

func (h Handler) GetPostsByUserHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	userID int64,
) (httptransport.ListPostsResponse, error) {
	views, err := h.Service.GetPostsByUser(ctx, actor, userID)
	if err != nil {
		return httptransport.ListPostsResponse{}, err
	}
	return toListPostsResponse(views), nil
}

func (h Handler) UpdatePostHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	postID int64,
	request httptransport.CreatePostRequest,
) (httptransport.PostDTO, error) {
	view, err := h.Service.UpdatePost(ctx, actor, postID, request.Content)
	if err != nil {
		return httptransport.PostDTO{}, err
	}
	return toPostDTO(view), nil
}

func (h Handler) DeletePostHandler(ctx context.Context, actor accesspolicy.Actor, postID int64) error {
	return h.Service.DeletePost(ctx, actor, postID)
}

func (h Handler) AddCommentHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	postID int64,
	request httptransport.CreateCommentRequest,
) (httptransport.CommentDTO, error) {
	view, err := h.Service.AddComment(ctx, actor, postID, request.Content)
	if err != nil {
		return httptransport.CommentDTO{}, err
	}
	return toCommentDTO(view), nil
}

func (h Handler) GetCommentsForPostHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	postID int64,
) (httptransport.ListCommentsResponse, error) {
	views, err := h.Service.GetCommentsForPost(ctx, actor, postID)
	if err != nil {
		return httptransport.ListCommentsResponse{}, err
	}
	return toListCommentsResponse(views), nil
}

func (h Handler) GetCommentsByUserHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	userID int64,
) (httptransport.ListCommentsResponse, error) {
	views, err := h.Service.GetCommentsByUser(ctx, actor, userID)
	if err != nil {
		return httptransport.ListCommentsResponse{}, err
	}
	return toListCommentsResponse(views), nil
}

func (h Handler) UpdateCommentHandler(
	ctx context.Context,
	actor accesspolicy.Actor,
	commentID int64,
	request httptransport.CreateCommentRequest,
) (httptransport.CommentDTO, error) {
	view, err := h.Service.UpdateComment(ctx, actor, commentID, request.Content)
	if err != nil {
		return httptransport.CommentDTO{}, err
	}
	return toCommentDTO(view), nil
}

func (h Handler) DeleteCommentHandler(ctx context.Context, actor accesspolicy.Actor, commentID int64) error {
	return h.Service.DeleteComment(ctx, actor, commentID)
}

func toListPostsResponse(views []entities.PostView) httptransport.ListPostsResponse {
	items := make([]httptransport.PostDTO, 0, len(views))
	for _, view := range views {
		items = append(items, toPostDTO(view))
	}
	return httptransport.ListPostsResponse{Posts: items}
}

func toListCommentsResponse(views []entities.CommentView) httptransport.ListCommentsResponse {
	items := make([]httptransport.CommentDTO, 0, len(views))
	for _, view := range views {
		items = append(items, toCommentDTO(view))
	}
	return httptransport.ListCommentsResponse{Comments: items}
}

func toPostDTO(view entities.PostView) httptransport.PostDTO {
	comments := make([]httptransport.CommentDTO, 0, len(view.Comments))
	for _, comment := range view.Comments {
		comments = append(comments, toCommentDTO(comment))
	}
	return httptransport.PostDTO{
		ID:        view.ID,
		Content:   view.Content,
		NumLikes:  view.NumLikes,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
		Author:    toAuthorDTO(view.Author),
		Comments:  comments,
	}
}

func toCommentDTO(view entities.CommentView) httptransport.CommentDTO {
	return httptransport.CommentDTO{
		ID:        view.ID,
		PostID:    view.PostID,
		Content:   view.Content,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
		Author:    toAuthorDTO(view.Author),
	}
}

func toAuthorDTO(author entities.Author) httptransport.AuthorDTO {
	return httptransport.AuthorDTO{
		ID:        author.ID,
		Username:  author.Username,
		FirstName: author.FirstName,
		LastName:  author.LastName,
		Role:      author.Role,
	}
}
