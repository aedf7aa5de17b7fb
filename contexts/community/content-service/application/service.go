package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campus/contexts/community/content-service/domain/entities"
	domainerrors "campus/contexts/community/content-service/domain/errors"
	"campus/contexts/community/content-service/ports"
	"campus/contexts/identity-access/accesspolicy"
	"campus/internal/shared/apperror"
	"campus/internal/shared/events"
)

// Service orchestrates post and comment operations.
type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Events ports.EventPublisher
	Logger *slog.Logger
}

// CreatePost publishes a new post authored by the actor.
func (s Service) CreatePost(ctx context.Context, actor accesspolicy.Actor, content string) (entities.PostView, error) {
	if err := s.authorize(actor, accesspolicy.ResourcePost, accesspolicy.ActionCreate, nil); err != nil {
		return entities.PostView{}, err
	}
	if strings.TrimSpace(content) == "" {
		return entities.PostView{}, domainerrors.ErrEmptyPostContent
	}

	post, err := s.Repo.CreatePost(ctx, entities.Post{
		AuthorID:  actor.ID,
		Content:   content,
		NumLikes:  0,
		CreatedAt: s.now(),
	})
	if err != nil {
		return entities.PostView{}, err
	}

	resolveLogger(s.Logger).Info("post created",
		"event", "post_created",
		"module", "community/content-service",
		"layer", "application",
		"post_id", post.ID,
		"author_id", actor.ID,
	)
	return s.postView(ctx, post.ID)
}

func (s Service) GetAllPosts(ctx context.Context, actor accesspolicy.Actor) ([]entities.PostView, error) {
	if err := s.authorize(actor, accesspolicy.ResourcePost, accesspolicy.ActionList, nil); err != nil {
		return nil, err
	}
	return s.Repo.ListPostViews(ctx)
}

// GetPostsByUser returns all posts authored by one user. An author with no
// posts is reported as not found, matching caller expectations.
func (s Service) GetPostsByUser(ctx context.Context, actor accesspolicy.Actor, userID int64) ([]entities.PostView, error) {
	if err := s.authorize(actor, accesspolicy.ResourcePost, accesspolicy.ActionList, nil); err != nil {
		return nil, err
	}
	views, err := s.Repo.ListPostViewsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, domainerrors.ErrNoPostsForUser
	}
	return views, nil
}

// UpdatePost replaces a post's content. Resolution, validation and ownership
// are checked in that order so error precedence stays fixed.
func (s Service) UpdatePost(ctx context.Context, actor accesspolicy.Actor, postID int64, content string) (entities.PostView, error) {
	post, found, err := s.Repo.GetPost(ctx, postID)
	if err != nil {
		return entities.PostView{}, err
	}
	if !found {
		return entities.PostView{}, domainerrors.ErrPostNotFound
	}
	if strings.TrimSpace(content) == "" {
		return entities.PostView{}, domainerrors.ErrEmptyPostContent
	}
	if err := s.authorize(actor, accesspolicy.ResourcePost, accesspolicy.ActionUpdate, &post.AuthorID); err != nil {
		return entities.PostView{}, err
	}

	now := s.now()
	post.Content = content
	post.UpdatedAt = &now
	if err := s.Repo.UpdatePost(ctx, post); err != nil {
		return entities.PostView{}, err
	}

	resolveLogger(s.Logger).Info("post updated",
		"event", "post_updated",
		"module", "community/content-service",
		"layer", "application",
		"post_id", post.ID,
		"actor_id", actor.ID,
	)
	return s.postView(ctx, post.ID)
}

// DeletePost removes a post together with all of its comments.
func (s Service) DeletePost(ctx context.Context, actor accesspolicy.Actor, postID int64) error {
	post, found, err := s.Repo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrPostNotFound
	}
	if err := s.authorize(actor, accesspolicy.ResourcePost, accesspolicy.ActionDelete, &post.AuthorID); err != nil {
		return err
	}

	if err := s.Repo.DeletePost(ctx, postID); err != nil {
		return err
	}

	s.publish(ctx, "post.deleted", "post", fmt.Sprintf("%d", postID), post)
	resolveLogger(s.Logger).Info("post deleted",
		"event", "post_deleted",
		"module", "community/content-service",
		"layer", "application",
		"post_id", postID,
		"actor_id", actor.ID,
	)
	return nil
}

// AddComment attaches a new comment by the actor to an existing post.
func (s Service) AddComment(ctx context.Context, actor accesspolicy.Actor, postID int64, content string) (entities.CommentView, error) {
	if err := s.authorize(actor, accesspolicy.ResourceComment, accesspolicy.ActionCreate, nil); err != nil {
		return entities.CommentView{}, err
	}
	_, found, err := s.Repo.GetPost(ctx, postID)
	if err != nil {
		return entities.CommentView{}, err
	}
	if !found {
		return entities.CommentView{}, domainerrors.ErrCommentPostNotFound
	}
	if strings.TrimSpace(content) == "" {
		return entities.CommentView{}, domainerrors.ErrEmptyCommentContent
	}

	comment, err := s.Repo.CreateComment(ctx, entities.Comment{
		PostID:    postID,
		AuthorID:  actor.ID,
		Content:   content,
		CreatedAt: s.now(),
	})
	if err != nil {
		return entities.CommentView{}, err
	}

	resolveLogger(s.Logger).Info("comment added",
		"event", "comment_added",
		"module", "community/content-service",
		"layer", "application",
		"post_id", postID,
		"comment_id", comment.ID,
		"author_id", actor.ID,
	)
	view, found, err := s.Repo.GetCommentView(ctx, comment.ID)
	if err != nil {
		return entities.CommentView{}, err
	}
	if !found {
		return entities.CommentView{Comment: comment}, nil
	}
	return view, nil
}

func (s Service) GetCommentsForPost(ctx context.Context, actor accesspolicy.Actor, postID int64) ([]entities.CommentView, error) {
	if err := s.authorize(actor, accesspolicy.ResourceComment, accesspolicy.ActionList, nil); err != nil {
		return nil, err
	}
	_, found, err := s.Repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.ErrPostNotFound
	}
	return s.Repo.ListCommentViewsForPost(ctx, postID)
}

// GetCommentsByUser returns all comments authored by one user. An author with
// no comments is reported as not found, matching caller expectations.
func (s Service) GetCommentsByUser(ctx context.Context, actor accesspolicy.Actor, userID int64) ([]entities.CommentView, error) {
	if err := s.authorize(actor, accesspolicy.ResourceComment, accesspolicy.ActionList, nil); err != nil {
		return nil, err
	}
	views, err := s.Repo.ListCommentViewsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, domainerrors.ErrNoCommentsForUser
	}
	return views, nil
}

// UpdateComment replaces a comment's content with the same resolution,
// validation, ownership order as UpdatePost.
func (s Service) UpdateComment(ctx context.Context, actor accesspolicy.Actor, commentID int64, content string) (entities.CommentView, error) {
	comment, found, err := s.Repo.GetComment(ctx, commentID)
	if err != nil {
		return entities.CommentView{}, err
	}
	if !found {
		return entities.CommentView{}, domainerrors.ErrCommentNotFound
	}
	if strings.TrimSpace(content) == "" {
		return entities.CommentView{}, domainerrors.ErrEmptyCommentUpdate
	}
	if err := s.authorize(actor, accesspolicy.ResourceComment, accesspolicy.ActionUpdate, &comment.AuthorID); err != nil {
		return entities.CommentView{}, err
	}

	now := s.now()
	comment.Content = content
	comment.UpdatedAt = &now
	if err := s.Repo.UpdateComment(ctx, comment); err != nil {
		return entities.CommentView{}, err
	}

	resolveLogger(s.Logger).Info("comment updated",
		"event", "comment_updated",
		"module", "community/content-service",
		"layer", "application",
		"comment_id", commentID,
		"actor_id", actor.ID,
	)
	view, found, err := s.Repo.GetCommentView(ctx, commentID)
	if err != nil {
		return entities.CommentView{}, err
	}
	if !found {
		return entities.CommentView{Comment: comment}, nil
	}
	return view, nil
}

// DeleteComment removes a single comment.
func (s Service) DeleteComment(ctx context.Context, actor accesspolicy.Actor, commentID int64) error {
	comment, found, err := s.Repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrCommentNotFound
	}
	if err := s.authorize(actor, accesspolicy.ResourceComment, accesspolicy.ActionDelete, &comment.AuthorID); err != nil {
		return err
	}

	if err := s.Repo.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.publish(ctx, "comment.deleted", "comment", fmt.Sprintf("%d", commentID), comment)
	resolveLogger(s.Logger).Info("comment deleted",
		"event", "comment_deleted",
		"module", "community/content-service",
		"layer", "application",
		"comment_id", commentID,
		"actor_id", actor.ID,
	)
	return nil
}

func (s Service) postView(ctx context.Context, postID int64) (entities.PostView, error) {
	view, found, err := s.Repo.GetPostView(ctx, postID)
	if err != nil {
		return entities.PostView{}, err
	}
	if !found {
		return entities.PostView{}, domainerrors.ErrPostNotFound
	}
	return view, nil
}

func (s Service) authorize(actor accesspolicy.Actor, resource accesspolicy.Resource, action accesspolicy.Action, ownerID *int64) error {
	decision := accesspolicy.Decide(actor, resource, action, ownerID)
	if decision.Allowed {
		return nil
	}
	resolveLogger(s.Logger).Warn("content action denied",
		"event", "content_action_denied",
		"module", "community/content-service",
		"layer", "application",
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"resource", resource,
		"action", action,
	)
	return apperror.Forbidden(decision.Reason)
}

func (s Service) publish(ctx context.Context, eventType string, entityType string, entityID string, payload any) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, events.Envelope{
		EventType:     eventType,
		SourceService: "community/content-service",
		OccurredAtUTC: s.now(),
		EntityType:    entityType,
		EntityID:      entityID,
		Payload:       payload,
	})
	if err != nil {
		resolveLogger(s.Logger).Warn("audit event publish failed",
			"event", "content_audit_publish_failed",
			"module", "community/content-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
