package httptransport

import "time"

// CreatePostRequest doubles as the post update body.
type CreatePostRequest struct {
	Content string `json:"content"`
}

// CreateCommentRequest doubles as the comment update body.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

type AuthorDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type CommentDTO struct {
	ID        int64      `json:"id"`
	PostID    int64      `json:"post_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Author    AuthorDTO  `json:"author"`
}

type PostDTO struct {
	ID        int64        `json:"id"`
	Content   string       `json:"content"`
	NumLikes  int          `json:"num_likes"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
	Author    AuthorDTO    `json:"author"`
	Comments  []CommentDTO `json:"comments"`
}

type ListPostsResponse struct {
	Posts []PostDTO `json:"posts"`
}

type ListCommentsResponse struct {
	Comments []CommentDTO `json:"comments"`
}
