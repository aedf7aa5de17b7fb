package entities

// Author is the public slice of a user attached to posts and comments.
type Author struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Role      string
}

// CommentView is a comment joined with its author.
type CommentView struct {
	Comment
	Author Author
}

// PostView is a post joined with its author and nested comments.
type PostView struct {
	Post
	Author   Author
	Comments []CommentView
}
