package errors

import "campus/internal/shared/apperror"

// Canonical content violation messages. These strings are part of the
// observable contract; callers surface them verbatim. The post not-found
// message differs by one period depending on the operation, matching
// long-standing caller expectations.
var (
	ErrEmptyPostContent    = apperror.Invariant("Content cannot be empty")
	ErrEmptyCommentUpdate  = apperror.Invariant("Content cannot be empty.")
	ErrEmptyCommentContent = apperror.Invariant("Comment content cannot be empty.")
	ErrPostNotFound        = apperror.NotFound("Post not found")
	ErrCommentPostNotFound = apperror.NotFound("Post not found.")
	ErrCommentNotFound     = apperror.NotFound("Comment not found.")
	ErrNoPostsForUser      = apperror.NotFound("No posts found for this user")
	ErrNoCommentsForUser   = apperror.NotFound("No comments found for this user")
)
