package ports

import (
	"context"
	"time"

	"campus/contexts/community/content-service/domain/entities"
	"campus/internal/shared/events"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// EventPublisher emits audit events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Envelope) error
}

// Repository is the persistence boundary for posts and comments. Deleting a
// post deletes its comments in the same operation.
type Repository interface {
	CreatePost(ctx context.Context, post entities.Post) (entities.Post, error)
	GetPost(ctx context.Context, postID int64) (entities.Post, bool, error)
	UpdatePost(ctx context.Context, post entities.Post) error
	DeletePost(ctx context.Context, postID int64) error

	GetPostView(ctx context.Context, postID int64) (entities.PostView, bool, error)
	ListPostViews(ctx context.Context) ([]entities.PostView, error)
	ListPostViewsByAuthor(ctx context.Context, authorID int64) ([]entities.PostView, error)

	CreateComment(ctx context.Context, comment entities.Comment) (entities.Comment, error)
	GetComment(ctx context.Context, commentID int64) (entities.Comment, bool, error)
	UpdateComment(ctx context.Context, comment entities.Comment) error
	DeleteComment(ctx context.Context, commentID int64) error

	GetCommentView(ctx context.Context, commentID int64) (entities.CommentView, bool, error)
	ListCommentViewsForPost(ctx context.Context, postID int64) ([]entities.CommentView, error)
	ListCommentViewsByAuthor(ctx context.Context, authorID int64) ([]entities.CommentView, error)
}
