package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"campus/contexts/identity-access/accesspolicy"
	"campus/contexts/identity-access/identity-service/domain/entities"
	domainerrors "campus/contexts/identity-access/identity-service/domain/errors"
	"campus/contexts/identity-access/identity-service/ports"
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

func (r *Repository) CreateUser(ctx context.Context, input ports.CreateUserInput) (entities.User, error) {
	row := userModel{
		Username:     nullableString(input.Username),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Bio:          input.Bio,
		GithubURL:    input.GithubURL,
		Mobile:       input.Mobile,
		Specialism:   input.Specialism,
		CreatedAt:    input.CreatedAt.UTC(),
		UpdatedAt:    input.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "username") {
				return entities.User{}, domainerrors.ErrUsernameTaken
			}
			return entities.User{}, domainerrors.ErrEmailTaken
		}
		return entities.User{}, r.logError("identity_repo_create_user_failed", err, "email", row.Email)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (entities.User, bool, error) {
	var row userModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, false, nil
		}
		return entities.User{}, false, r.logError("identity_repo_get_user_failed", err, "user_id", id)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (entities.User, bool, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, false, nil
		}
		return entities.User{}, false, r.logError("identity_repo_get_user_by_email_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (entities.User, bool, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, false, nil
		}
		return entities.User{}, false, r.logError("identity_repo_get_user_by_username_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]entities.User, error) {
	var rows []userModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("identity_repo_list_users_failed", err)
	}
	items := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateUser(ctx context.Context, id int64, patch ports.UpdateUserInput, now time.Time) (entities.User, bool, error) {
	updates := map[string]any{"updated_at": now.UTC()}
	if patch.Username != nil {
		updates["username"] = nullableString(*patch.Username)
	}
	if patch.FirstName != nil {
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["last_name"] = *patch.LastName
	}
	if patch.Bio != nil {
		updates["bio"] = *patch.Bio
	}
	if patch.GithubURL != nil {
		updates["github_url"] = *patch.GithubURL
	}
	if patch.Mobile != nil {
		updates["mobile"] = *patch.Mobile
	}
	if patch.Specialism != nil {
		updates["specialism"] = *patch.Specialism
	}

	result := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return entities.User{}, false, domainerrors.ErrUsernameTaken
		}
		return entities.User{}, false, r.logError("identity_repo_update_user_failed", result.Error, "user_id", id)
	}
	if result.RowsAffected == 0 {
		return entities.User{}, false, nil
	}
	return r.GetUserByID(ctx, id)
}

func (r *Repository) CreateSession(ctx context.Context, session entities.Session) error {
	row := sessionModel{
		Token:     session.Token,
		UserID:    session.UserID,
		CreatedAt: session.CreatedAt.UTC(),
		ExpiresAt: session.ExpiresAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("identity_repo_create_session_failed", err, "user_id", session.UserID)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, token string, now time.Time) (entities.Session, bool, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Session{}, false, nil
		}
		return entities.Session{}, false, r.logError("identity_repo_get_session_failed", err)
	}
	if now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&sessionModel{}).Error; err != nil {
			return entities.Session{}, false, r.logError("identity_repo_expire_session_failed", err)
		}
		return entities.Session{}, false, nil
	}
	return entities.Session{
		Token:     row.Token,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt.UTC(),
		ExpiresAt: row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&sessionModel{}).Error; err != nil {
		return r.logError("identity_repo_delete_session_failed", err)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/identity-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("identity repository operation failed", fields...)
	return err
}

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Username     *string   `gorm:"column:username"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Bio          string    `gorm:"column:bio"`
	GithubURL    string    `gorm:"column:github_url"`
	Mobile       string    `gorm:"column:mobile"`
	Specialism   string    `gorm:"column:specialism"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toEntity() entities.User {
	username := ""
	if m.Username != nil {
		username = *m.Username
	}
	return entities.User{
		ID:           m.ID,
		Username:     username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Bio:          m.Bio,
		GithubURL:    m.GithubURL,
		Mobile:       m.Mobile,
		Specialism:   m.Specialism,
		Role:         accesspolicy.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type sessionModel struct {
	Token     string    `gorm:"column:token;primaryKey"`
	UserID    int64     `gorm:"column:user_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
}

func (sessionModel) TableName() string {
	return "sessions"
}

func nullableString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.SessionStore = (*Repository)(nil)
