package unit

import (
	"context"
	"errors"
	"testing"

	content "campus/contexts/community/content-service"
	"campus/contexts/community/content-service/domain/entities"
	domainerrors "campus/contexts/community/content-service/domain/errors"
	httptransport "campus/contexts/community/content-service/transport/http"
	"campus/contexts/identity-access/accesspolicy"
	"campus/internal/shared/apperror"
)

var (
	contentTeacher = accesspolicy.Actor{ID: 1, Role: accesspolicy.RoleTeacher, Authenticated: true}
	contentAuthor  = accesspolicy.Actor{ID: 2, Role: accesspolicy.RoleStudent, Authenticated: true}
	contentOther   = accesspolicy.Actor{ID: 3, Role: accesspolicy.RoleStudent, Authenticated: true}
)

func newContentModule(t *testing.T) content.Module {
	t.Helper()
	module := content.NewInMemoryModule(nil, nil)
	module.Store.PutUser(entities.Author{ID: 1, Username: "prof", FirstName: "Pat", LastName: "Moss", Role: "teacher"})
	module.Store.PutUser(entities.Author{ID: 2, Username: "sam", FirstName: "Sam", LastName: "Reyes", Role: "student"})
	module.Store.PutUser(entities.Author{ID: 3, Username: "kit", FirstName: "Kit", LastName: "Doyle", Role: "student"})
	return module
}

func createPost(t *testing.T, module content.Module, actor accesspolicy.Actor, text string) httptransport.PostDTO {
	t.Helper()
	post, err := module.Handler.CreatePostHandler(context.Background(), actor, httptransport.CreatePostRequest{Content: text})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	return post
}

func TestContentServiceCreatePost(t *testing.T) {
	module := newContentModule(t)

	post := createPost(t, module, contentAuthor, "first day of the cohort")
	if post.Content != "first day of the cohort" || post.Author.ID != 2 {
		t.Fatalf("unexpected post %+v", post)
	}

	_, err := module.Handler.CreatePostHandler(context.Background(), contentAuthor, httptransport.CreatePostRequest{Content: "   "})
	if !errors.Is(err, domainerrors.ErrEmptyPostContent) {
		t.Fatalf("expected empty-content violation, got %v", err)
	}
	if err.Error() != "Content cannot be empty" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestContentServiceUpdatePostOwnership(t *testing.T) {
	module := newContentModule(t)
	ctx := context.Background()
	post := createPost(t, module, contentAuthor, "draft")

	_, err := module.Handler.UpdatePostHandler(ctx, contentOther, post.ID, httptransport.CreatePostRequest{Content: "hijack"})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	updated, err := module.Handler.UpdatePostHandler(ctx, contentAuthor, post.ID, httptransport.CreatePostRequest{Content: "edited"})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Content != "edited" || updated.UpdatedAt == nil {
		t.Fatalf("expected edited post with update timestamp, got %+v", updated)
	}

	if _, err := module.Handler.UpdatePostHandler(ctx, contentTeacher, post.ID, httptransport.CreatePostRequest{Content: "moderated"}); err != nil {
		t.Fatalf("teacher update failed: %v", err)
	}
}

func TestContentServiceUpdatePostPrecedence(t *testing.T) {
	module := newContentModule(t)
	ctx := context.Background()
	post := createPost(t, module, contentAuthor, "draft")

	// Missing post wins over empty content.
	_, err := module.Handler.UpdatePostHandler(ctx, contentAuthor, 404, httptransport.CreatePostRequest{Content: ""})
	if !errors.Is(err, domainerrors.ErrPostNotFound) {
		t.Fatalf("expected post not found, got %v", err)
	}

	// Empty content wins over ownership.
	_, err = module.Handler.UpdatePostHandler(ctx, contentOther, post.ID, httptransport.CreatePostRequest{Content: ""})
	if !errors.Is(err, domainerrors.ErrEmptyPostContent) {
		t.Fatalf("expected empty-content violation, got %v", err)
	}
}

func TestContentServiceDeletePostCascades(t *testing.T) {
	module := newContentModule(t)
	ctx := context.Background()
	post := createPost(t, module, contentAuthor, "to be removed")

	comment, err := module.Handler.AddCommentHandler(ctx, contentOther, post.ID, httptransport.CreateCommentRequest{Content: "nice"})
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}

	if err := module.Handler.DeletePostHandler(ctx, contentOther, post.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden delete for non-owner, got %v", err)
	}
	if err := module.Handler.DeletePostHandler(ctx, contentAuthor, post.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if err := module.Handler.DeletePostHandler(ctx, contentAuthor, post.ID); !errors.Is(err, domainerrors.ErrPostNotFound) {
		t.Fatalf("expected not found on repeat delete, got %v", err)
	}

	_, err = module.Handler.UpdateCommentHandler(ctx, contentOther, comment.ID, httptransport.CreateCommentRequest{Content: "still here?"})
	if !errors.Is(err, domainerrors.ErrCommentNotFound) {
		t.Fatalf("expected cascaded comment to be gone, got %v", err)
	}
}

func TestContentServiceCommentValidation(t *testing.T) {
	module := newContentModule(t)
	ctx := context.Background()
	post := createPost(t, module, contentAuthor, "open thread")

	_, err := module.Handler.AddCommentHandler(ctx, contentOther, 404, httptransport.CreateCommentRequest{Content: "hello"})
	if !errors.Is(err, domainerrors.ErrCommentPostNotFound) {
		t.Fatalf("expected post not found, got %v", err)
	}
	if err.Error() != "Post not found." {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	_, err = module.Handler.AddCommentHandler(ctx, contentOther, post.ID, httptransport.CreateCommentRequest{Content: ""})
	if !errors.Is(err, domainerrors.ErrEmptyCommentContent) {
		t.Fatalf("expected empty-comment violation, got %v", err)
	}
	if err.Error() != "Comment content cannot be empty." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestContentServiceUpdateCommentOwnership(t *testing.T) {
	module := newContentModule(t)
	ctx := context.Background()
	post := createPost(t, module, contentAuthor, "open thread")
	comment, err := module.Handler.AddCommentHandler(ctx, contentOther, post.ID, httptransport.CreateCommentRequest{Content: "first"})
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}

	_, err = module.Handler.UpdateCommentHandler(ctx, contentOther, comment.ID, httptransport.CreateCommentRequest{Content: ""})
	if !errors.Is(err, domainerrors.ErrEmptyCommentUpdate) {
		t.Fatalf("expected empty-update violation, got %v", err)
	}
	if err.Error() != "Content cannot be empty." {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	_, err = module.Handler.UpdateCommentHandler(ctx, contentAuthor, comment.ID, httptransport.CreateCommentRequest{Content: "hijack"})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	updated, err := module.Handler.UpdateCommentHandler(ctx, contentOther, comment.ID, httptransport.CreateCommentRequest{Content: "second"})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Content != "second" {
		t.Fatalf("expected updated comment, got %+v", updated)
	}

	if err := module.Handler.DeleteCommentHandler(ctx, contentTeacher, comment.ID); err != nil {
		t.Fatalf("teacher delete failed: %v", err)
	}
	if err := module.Handler.DeleteCommentHandler(ctx, contentTeacher, comment.ID); !errors.Is(err, domainerrors.ErrCommentNotFound) {
		t.Fatalf("expected not found on repeat delete, got %v", err)
	}
}

func TestContentServiceFeedsAndUserLookups(t *testing.T) {
	module := newContentModule(t)
	ctx := context.Background()
	first := createPost(t, module, contentAuthor, "alpha")
	createPost(t, module, contentTeacher, "beta")
	if _, err := module.Handler.AddCommentHandler(ctx, contentOther, first.ID, httptransport.CreateCommentRequest{Content: "reply"}); err != nil {
		t.Fatalf("add comment failed: %v", err)
	}

	feed, err := module.Handler.GetAllPostsHandler(ctx, contentOther)
	if err != nil {
		t.Fatalf("get all posts failed: %v", err)
	}
	if len(feed.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(feed.Posts))
	}
	if len(feed.Posts[0].Comments) != 1 || feed.Posts[0].Comments[0].Author.ID != 3 {
		t.Fatalf("expected nested comment with author, got %+v", feed.Posts[0])
	}

	_, err = module.Handler.GetPostsByUserHandler(ctx, contentOther, 3)
	if !errors.Is(err, domainerrors.ErrNoPostsForUser) {
		t.Fatalf("expected no-posts violation, got %v", err)
	}
	if err.Error() != "No posts found for this user" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	comments, err := module.Handler.GetCommentsByUserHandler(ctx, contentAuthor, 3)
	if err != nil {
		t.Fatalf("comments by user failed: %v", err)
	}
	if len(comments.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments.Comments))
	}

	_, err = module.Handler.GetCommentsByUserHandler(ctx, contentAuthor, 1)
	if !errors.Is(err, domainerrors.ErrNoCommentsForUser) {
		t.Fatalf("expected no-comments violation, got %v", err)
	}

	_, err = module.Handler.GetCommentsForPostHandler(ctx, contentAuthor, 404)
	if !errors.Is(err, domainerrors.ErrPostNotFound) {
		t.Fatalf("expected post not found, got %v", err)
	}
}
