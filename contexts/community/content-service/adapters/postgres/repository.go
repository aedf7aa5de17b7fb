package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"campus/contexts/community/content-service/domain/entities"
	"campus/contexts/community/content-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) CreatePost(ctx context.Context, post entities.Post) (entities.Post, error) {
	row := postModel{
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		NumLikes:  post.NumLikes,
		CreatedAt: post.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Post{}, r.logError("content_repo_create_post_failed", err, "author_id", post.AuthorID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetPost(ctx context.Context, postID int64) (entities.Post, bool, error) {
	var row postModel
	err := r.db.WithContext(ctx).Where("id = ?", postID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Post{}, false, nil
		}
		return entities.Post{}, false, r.logError("content_repo_get_post_failed", err, "post_id", postID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdatePost(ctx context.Context, post entities.Post) error {
	updates := map[string]any{
		"content":    post.Content,
		"updated_at": post.UpdatedAt,
	}
	err := r.db.WithContext(ctx).
		Model(&postModel{}).
		Where("id = ?", post.ID).
		Updates(updates).
		Error
	if err != nil {
		return r.logError("content_repo_update_post_failed", err, "post_id", post.ID)
	}
	return nil
}

// DeletePost removes the post and its comments in one transaction.
func (r *Repository) DeletePost(ctx context.Context, postID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&commentModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", postID).Delete(&postModel{}).Error
	})
	if err != nil {
		return r.logError("content_repo_delete_post_failed", err, "post_id", postID)
	}
	return nil
}

func (r *Repository) GetPostView(ctx context.Context, postID int64) (entities.PostView, bool, error) {
	var row postModel
	err := r.db.WithContext(ctx).Where("id = ?", postID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PostView{}, false, nil
		}
		return entities.PostView{}, false, r.logError("content_repo_get_post_view_failed", err, "post_id", postID)
	}
	views, err := r.buildPostViews(ctx, []postModel{row})
	if err != nil {
		return entities.PostView{}, false, err
	}
	return views[0], true, nil
}

func (r *Repository) ListPostViews(ctx context.Context) ([]entities.PostView, error) {
	var rows []postModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("content_repo_list_posts_failed", err)
	}
	return r.buildPostViews(ctx, rows)
}

func (r *Repository) ListPostViewsByAuthor(ctx context.Context, authorID int64) ([]entities.PostView, error) {
	var rows []postModel
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("content_repo_list_posts_by_author_failed", err, "author_id", authorID)
	}
	return r.buildPostViews(ctx, rows)
}

func (r *Repository) CreateComment(ctx context.Context, comment entities.Comment) (entities.Comment, error) {
	row := commentModel{
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Comment{}, r.logError("content_repo_create_comment_failed", err,
			"post_id", comment.PostID, "author_id", comment.AuthorID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetComment(ctx context.Context, commentID int64) (entities.Comment, bool, error) {
	var row commentModel
	err := r.db.WithContext(ctx).Where("id = ?", commentID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Comment{}, false, nil
		}
		return entities.Comment{}, false, r.logError("content_repo_get_comment_failed", err, "comment_id", commentID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdateComment(ctx context.Context, comment entities.Comment) error {
	updates := map[string]any{
		"content":    comment.Content,
		"updated_at": comment.UpdatedAt,
	}
	err := r.db.WithContext(ctx).
		Model(&commentModel{}).
		Where("id = ?", comment.ID).
		Updates(updates).
		Error
	if err != nil {
		return r.logError("content_repo_update_comment_failed", err, "comment_id", comment.ID)
	}
	return nil
}

func (r *Repository) DeleteComment(ctx context.Context, commentID int64) error {
	err := r.db.WithContext(ctx).Where("id = ?", commentID).Delete(&commentModel{}).Error
	if err != nil {
		return r.logError("content_repo_delete_comment_failed", err, "comment_id", commentID)
	}
	return nil
}

func (r *Repository) GetCommentView(ctx context.Context, commentID int64) (entities.CommentView, bool, error) {
	var row commentModel
	err := r.db.WithContext(ctx).Where("id = ?", commentID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CommentView{}, false, nil
		}
		return entities.CommentView{}, false, r.logError("content_repo_get_comment_view_failed", err, "comment_id", commentID)
	}
	authors, err := r.loadAuthors(ctx, []int64{row.AuthorID})
	if err != nil {
		return entities.CommentView{}, false, err
	}
	return entities.CommentView{Comment: row.toEntity(), Author: authors[row.AuthorID]}, true, nil
}

func (r *Repository) ListCommentViewsForPost(ctx context.Context, postID int64) ([]entities.CommentView, error) {
	var rows []commentModel
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("content_repo_list_comments_for_post_failed", err, "post_id", postID)
	}
	return r.buildCommentViews(ctx, rows)
}

func (r *Repository) ListCommentViewsByAuthor(ctx context.Context, authorID int64) ([]entities.CommentView, error) {
	var rows []commentModel
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("content_repo_list_comments_by_author_failed", err, "author_id", authorID)
	}
	return r.buildCommentViews(ctx, rows)
}

func (r *Repository) buildPostViews(ctx context.Context, rows []postModel) ([]entities.PostView, error) {
	if len(rows) == 0 {
		return []entities.PostView{}, nil
	}

	postIDs := make([]int64, 0, len(rows))
	authorIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		postIDs = append(postIDs, row.ID)
		authorIDs = append(authorIDs, row.AuthorID)
	}

	var comments []commentModel
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("id ASC").
		Find(&comments).
		Error
	if err != nil {
		return nil, r.logError("content_repo_load_comments_failed", err)
	}
	for _, comment := range comments {
		authorIDs = append(authorIDs, comment.AuthorID)
	}

	authors, err := r.loadAuthors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	commentsByPost := make(map[int64][]entities.CommentView)
	for _, comment := range comments {
		commentsByPost[comment.PostID] = append(commentsByPost[comment.PostID], entities.CommentView{
			Comment: comment.toEntity(),
			Author:  authors[comment.AuthorID],
		})
	}

	views := make([]entities.PostView, 0, len(rows))
	for _, row := range rows {
		nested := commentsByPost[row.ID]
		if nested == nil {
			nested = []entities.CommentView{}
		}
		views = append(views, entities.PostView{
			Post:     row.toEntity(),
			Author:   authors[row.AuthorID],
			Comments: nested,
		})
	}
	return views, nil
}

func (r *Repository) buildCommentViews(ctx context.Context, rows []commentModel) ([]entities.CommentView, error) {
	if len(rows) == 0 {
		return []entities.CommentView{}, nil
	}
	authorIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		authorIDs = append(authorIDs, row.AuthorID)
	}
	authors, err := r.loadAuthors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	views := make([]entities.CommentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, entities.CommentView{Comment: row.toEntity(), Author: authors[row.AuthorID]})
	}
	return views, nil
}

func (r *Repository) loadAuthors(ctx context.Context, authorIDs []int64) (map[int64]entities.Author, error) {
	authors := make(map[int64]entities.Author)
	if len(authorIDs) == 0 {
		return authors, nil
	}
	var rows []authorModel
	if err := r.db.WithContext(ctx).Where("id IN ?", authorIDs).Find(&rows).Error; err != nil {
		return nil, r.logError("content_repo_load_authors_failed", err)
	}
	for _, row := range rows {
		authors[row.ID] = row.toAuthor()
	}
	return authors, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community/content-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("content repository operation failed", fields...)
	return err
}

type postModel struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement"`
	AuthorID  int64      `gorm:"column:author_id"`
	Content   string     `gorm:"column:content"`
	NumLikes  int        `gorm:"column:num_likes"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at"`
}

func (postModel) TableName() string {
	return "posts"
}

func (m postModel) toEntity() entities.Post {
	return entities.Post{
		ID:        m.ID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		NumLikes:  m.NumLikes,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt,
	}
}

type commentModel struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement"`
	PostID    int64      `gorm:"column:post_id"`
	AuthorID  int64      `gorm:"column:author_id"`
	Content   string     `gorm:"column:content"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at"`
}

func (commentModel) TableName() string {
	return "post_comments"
}

func (m commentModel) toEntity() entities.Comment {
	return entities.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt,
	}
}

type authorModel struct {
	ID        int64   `gorm:"column:id;primaryKey"`
	Username  *string `gorm:"column:username"`
	FirstName string  `gorm:"column:first_name"`
	LastName  string  `gorm:"column:last_name"`
	Role      string  `gorm:"column:role"`
}

func (authorModel) TableName() string {
	return "users"
}

func (m authorModel) toAuthor() entities.Author {
	username := ""
	if m.Username != nil {
		username = *m.Username
	}
	return entities.Author{
		ID:        m.ID,
		Username:  username,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Role:      m.Role,
	}
}

var _ ports.Repository = (*Repository)(nil)
