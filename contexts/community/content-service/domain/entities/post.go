package entities

import "time"

// Post is a feed entry authored by one user.
type Post struct {
	ID        int64
	AuthorID  int64
	Content   string
	NumLikes  int
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Comment is a reply attached to one post.
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
