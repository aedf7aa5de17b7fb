package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"campus/contexts/community/content-service/domain/entities"
	"campus/contexts/community/content-service/ports"
)

// Store is the in-memory post/comment adapter used by tests and local runs.
type Store struct {
	mu sync.RWMutex

	usersByID    map[int64]entities.Author
	postsByID    map[int64]entities.Post
	commentsByID map[int64]entities.Comment

	nextPostID    int64
	nextCommentID int64
}

func NewStore() *Store {
	return &Store{
		usersByID:     make(map[int64]entities.Author),
		postsByID:     make(map[int64]entities.Post),
		commentsByID:  make(map[int64]entities.Comment),
		nextPostID:    1,
		nextCommentID: 1,
	}
}

// PutUser seeds the cross-context author projection.
func (s *Store) PutUser(author entities.Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByID[author.ID] = author
}

func (s *Store) CreatePost(ctx context.Context, post entities.Post) (entities.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = s.nextPostID
	s.nextPostID++
	s.postsByID[post.ID] = post
	return post, nil
}

func (s *Store) GetPost(ctx context.Context, postID int64) (entities.Post, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.postsByID[postID]
	return post, ok, nil
}

func (s *Store) UpdatePost(ctx context.Context, post entities.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postsByID[post.ID] = post
	return nil
}

// DeletePost removes the post and every comment attached to it.
func (s *Store) DeletePost(ctx context.Context, postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.postsByID, postID)
	for id, comment := range s.commentsByID {
		if comment.PostID == postID {
			delete(s.commentsByID, id)
		}
	}
	return nil
}

func (s *Store) GetPostView(ctx context.Context, postID int64) (entities.PostView, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.postsByID[postID]
	if !ok {
		return entities.PostView{}, false, nil
	}
	return s.postViewLocked(post), true, nil
}

func (s *Store) ListPostViews(ctx context.Context) ([]entities.PostView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPostViewsLocked(func(entities.Post) bool { return true }), nil
}

func (s *Store) ListPostViewsByAuthor(ctx context.Context, authorID int64) ([]entities.PostView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPostViewsLocked(func(p entities.Post) bool { return p.AuthorID == authorID }), nil
}

func (s *Store) CreateComment(ctx context.Context, comment entities.Comment) (entities.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = s.nextCommentID
	s.nextCommentID++
	s.commentsByID[comment.ID] = comment
	return comment, nil
}

func (s *Store) GetComment(ctx context.Context, commentID int64) (entities.Comment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.commentsByID[commentID]
	return comment, ok, nil
}

func (s *Store) UpdateComment(ctx context.Context, comment entities.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commentsByID[comment.ID] = comment
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, commentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.commentsByID, commentID)
	return nil
}

func (s *Store) GetCommentView(ctx context.Context, commentID int64) (entities.CommentView, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.commentsByID[commentID]
	if !ok {
		return entities.CommentView{}, false, nil
	}
	return entities.CommentView{Comment: comment, Author: s.usersByID[comment.AuthorID]}, true, nil
}

func (s *Store) ListCommentViewsForPost(ctx context.Context, postID int64) ([]entities.CommentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listCommentViewsLocked(func(c entities.Comment) bool { return c.PostID == postID }), nil
}

func (s *Store) ListCommentViewsByAuthor(ctx context.Context, authorID int64) ([]entities.CommentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listCommentViewsLocked(func(c entities.Comment) bool { return c.AuthorID == authorID }), nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) listPostViewsLocked(match func(entities.Post) bool) []entities.PostView {
	ids := make([]int64, 0, len(s.postsByID))
	for id, post := range s.postsByID {
		if match(post) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	views := make([]entities.PostView, 0, len(ids))
	for _, id := range ids {
		views = append(views, s.postViewLocked(s.postsByID[id]))
	}
	return views
}

func (s *Store) listCommentViewsLocked(match func(entities.Comment) bool) []entities.CommentView {
	ids := make([]int64, 0)
	for id, comment := range s.commentsByID {
		if match(comment) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	views := make([]entities.CommentView, 0, len(ids))
	for _, id := range ids {
		comment := s.commentsByID[id]
		views = append(views, entities.CommentView{Comment: comment, Author: s.usersByID[comment.AuthorID]})
	}
	return views
}

func (s *Store) postViewLocked(post entities.Post) entities.PostView {
	return entities.PostView{
		Post:     post,
		Author:   s.usersByID[post.AuthorID],
		Comments: s.listCommentViewsLocked(func(c entities.Comment) bool { return c.PostID == post.ID }),
	}
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
