package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus/contexts/learning/enrollment-service/domain/entities"
	domainerrors "campus/contexts/learning/enrollment-service/domain/errors"
	"campus/contexts/learning/enrollment-service/ports"
	"campus/internal/shared/apperror"
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

func (r *Repository) GetUser(ctx context.Context, userID int64) (ports.UserProjection, bool, error) {
	var row userProjectionModel
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UserProjection{}, false, nil
		}
		return ports.UserProjection{}, false, r.logError("enrollment_repo_get_user_failed", err, "user_id", userID)
	}
	return row.toProjection(), true, nil
}

func (r *Repository) CohortTitleExists(ctx context.Context, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&cohortModel{}).
		Where("LOWER(title) = LOWER(?)", strings.TrimSpace(title)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("enrollment_repo_cohort_title_exists_failed", err, "title", title)
	}
	return count > 0, nil
}

// CreateCohort persists the cohort plus one association row per standard
// course in a single transaction. Course rows are shared by title; the
// insert-or-ignore plus re-read keeps concurrent first-time creation safe
// behind the unique title constraint.
func (r *Repository) CreateCohort(ctx context.Context, input ports.CreateCohortInput) (entities.CohortView, error) {
	var view entities.CohortView

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cohort := cohortModel{
			Title:     input.Title,
			StartDate: input.StartDate.UTC(),
			EndDate:   input.EndDate.UTC(),
			CreatedAt: input.CreatedAt.UTC(),
		}
		if err := tx.Create(&cohort).Error; err != nil {
			if isUniqueViolation(err) {
				// Racing create slipped past the title pre-check; the unique
				// index on LOWER(title) is the backstop.
				return domainerrors.DuplicateCohortTitle(input.Title)
			}
			return err
		}

		view = entities.CohortView{
			ID:        cohort.ID,
			Title:     cohort.Title,
			StartDate: cohort.StartDate,
			EndDate:   cohort.EndDate,
			Courses:   []entities.CourseRoster{},
		}

		for _, title := range input.CourseTitles {
			insert := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "title"}},
				DoNothing: true,
			}).Create(&courseModel{Title: title})
			if insert.Error != nil {
				return insert.Error
			}
			var course courseModel
			if err := tx.Where("title = ?", title).First(&course).Error; err != nil {
				return err
			}
			if err := tx.Create(&cohortCourseModel{
				CohortID: cohort.ID,
				CourseID: course.ID,
			}).Error; err != nil {
				return err
			}
			view.Courses = append(view.Courses, entities.CourseRoster{
				CourseID: course.ID,
				Title:    course.Title,
				Students: []entities.Member{},
				Teachers: []entities.Member{},
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrInvariant) {
			return entities.CohortView{}, err
		}
		return entities.CohortView{}, r.logError("enrollment_repo_create_cohort_failed", err, "title", input.Title)
	}
	return view, nil
}

func (r *Repository) GetCohort(ctx context.Context, cohortID int64) (entities.Cohort, []entities.CohortCourse, bool, error) {
	var row cohortModel
	err := r.db.WithContext(ctx).Where("id = ?", cohortID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Cohort{}, nil, false, nil
		}
		return entities.Cohort{}, nil, false, r.logError("enrollment_repo_get_cohort_failed", err, "cohort_id", cohortID)
	}

	associations, err := r.loadCohortCourses(ctx, cohortID)
	if err != nil {
		return entities.Cohort{}, nil, false, err
	}
	return row.toEntity(), associations, true, nil
}

func (r *Repository) EnrollmentExists(ctx context.Context, cohortID int64, courseID int64, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&enrollmentModel{}).
		Where("cohort_id = ? AND course_id = ? AND user_id = ?", cohortID, courseID, userID).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("enrollment_repo_enrollment_exists_failed", err,
			"cohort_id", cohortID, "course_id", courseID, "user_id", userID)
	}
	return count > 0, nil
}

func (r *Repository) UserInCohort(ctx context.Context, cohortID int64, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&enrollmentModel{}).
		Where("cohort_id = ? AND user_id = ?", cohortID, userID).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("enrollment_repo_user_in_cohort_failed", err,
			"cohort_id", cohortID, "user_id", userID)
	}
	return count > 0, nil
}

func (r *Repository) CreateEnrollment(ctx context.Context, enrollment entities.Enrollment) error {
	row := enrollmentModel{
		CohortID:   enrollment.CohortID,
		CourseID:   enrollment.CourseID,
		UserID:     enrollment.UserID,
		EnrolledAt: enrollment.EnrolledAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			// Concurrent duplicate insert caught by the composite primary
			// key; report it as the same violation the pipeline uses.
			return domainerrors.ErrAlreadyEnrolled
		}
		return r.logError("enrollment_repo_create_enrollment_failed", err,
			"cohort_id", enrollment.CohortID, "course_id", enrollment.CourseID, "user_id", enrollment.UserID)
	}
	return nil
}

func (r *Repository) DeleteEnrollment(ctx context.Context, cohortID int64, courseID int64, userID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("cohort_id = ? AND course_id = ? AND user_id = ?", cohortID, courseID, userID).
		Delete(&enrollmentModel{})
	if result.Error != nil {
		return false, r.logError("enrollment_repo_delete_enrollment_failed", result.Error,
			"cohort_id", cohortID, "course_id", courseID, "user_id", userID)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) GetCohortView(ctx context.Context, cohortID int64) (entities.CohortView, bool, error) {
	var row cohortModel
	err := r.db.WithContext(ctx).Where("id = ?", cohortID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CohortView{}, false, nil
		}
		return entities.CohortView{}, false, r.logError("enrollment_repo_get_cohort_view_failed", err, "cohort_id", cohortID)
	}
	view, err := r.buildView(ctx, row)
	if err != nil {
		return entities.CohortView{}, false, err
	}
	return view, true, nil
}

func (r *Repository) ListCohortViews(ctx context.Context) ([]entities.CohortView, error) {
	var rows []cohortModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("enrollment_repo_list_cohorts_failed", err)
	}
	views := make([]entities.CohortView, 0, len(rows))
	for _, row := range rows {
		view, err := r.buildView(ctx, row)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (r *Repository) ListCohortViewsByUser(ctx context.Context, userID int64) ([]entities.CohortView, error) {
	var cohortIDs []int64
	err := r.db.WithContext(ctx).
		Model(&enrollmentModel{}).
		Distinct("cohort_id").
		Where("user_id = ?", userID).
		Pluck("cohort_id", &cohortIDs).
		Error
	if err != nil {
		return nil, r.logError("enrollment_repo_list_cohorts_by_user_failed", err, "user_id", userID)
	}
	sort.Slice(cohortIDs, func(i, j int) bool { return cohortIDs[i] < cohortIDs[j] })

	views := make([]entities.CohortView, 0, len(cohortIDs))
	for _, cohortID := range cohortIDs {
		view, found, err := r.GetCohortView(ctx, cohortID)
		if err != nil {
			return nil, err
		}
		if found {
			views = append(views, view)
		}
	}
	return views, nil
}

func (r *Repository) loadCohortCourses(ctx context.Context, cohortID int64) ([]entities.CohortCourse, error) {
	var rows []cohortCourseModel
	err := r.db.WithContext(ctx).
		Where("cohort_id = ?", cohortID).
		Order("course_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("enrollment_repo_load_cohort_courses_failed", err, "cohort_id", cohortID)
	}
	if len(rows) == 0 {
		return []entities.CohortCourse{}, nil
	}

	courseIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		courseIDs = append(courseIDs, row.CourseID)
	}
	var courses []courseModel
	if err := r.db.WithContext(ctx).Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
		return nil, r.logError("enrollment_repo_load_courses_failed", err, "cohort_id", cohortID)
	}
	courseByID := make(map[int64]courseModel, len(courses))
	for _, course := range courses {
		courseByID[course.ID] = course
	}

	associations := make([]entities.CohortCourse, 0, len(rows))
	for _, row := range rows {
		associations = append(associations, entities.CohortCourse{
			CohortID: row.CohortID,
			CourseID: row.CourseID,
			Course: entities.Course{
				ID:    row.CourseID,
				Title: courseByID[row.CourseID].Title,
			},
		})
	}
	return associations, nil
}

func (r *Repository) buildView(ctx context.Context, cohort cohortModel) (entities.CohortView, error) {
	associations, err := r.loadCohortCourses(ctx, cohort.ID)
	if err != nil {
		return entities.CohortView{}, err
	}

	var enrollments []enrollmentModel
	err = r.db.WithContext(ctx).
		Where("cohort_id = ?", cohort.ID).
		Order("user_id ASC").
		Find(&enrollments).
		Error
	if err != nil {
		return entities.CohortView{}, r.logError("enrollment_repo_load_enrollments_failed", err, "cohort_id", cohort.ID)
	}

	memberByID := make(map[int64]entities.Member)
	if len(enrollments) > 0 {
		userIDs := make([]int64, 0, len(enrollments))
		for _, e := range enrollments {
			userIDs = append(userIDs, e.UserID)
		}
		var users []userProjectionModel
		if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return entities.CohortView{}, r.logError("enrollment_repo_load_members_failed", err, "cohort_id", cohort.ID)
		}
		for _, user := range users {
			memberByID[user.ID] = entities.Member{
				ID:        user.ID,
				Username:  user.usernameValue(),
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Role:      user.Role,
			}
		}
	}

	view := entities.CohortView{
		ID:        cohort.ID,
		Title:     cohort.Title,
		StartDate: cohort.StartDate.UTC(),
		EndDate:   cohort.EndDate.UTC(),
		Courses:   []entities.CourseRoster{},
	}
	for _, cc := range associations {
		roster := entities.CourseRoster{
			CourseID: cc.CourseID,
			Title:    cc.Course.Title,
			Students: []entities.Member{},
			Teachers: []entities.Member{},
		}
		for _, e := range enrollments {
			if e.CourseID != cc.CourseID {
				continue
			}
			member, ok := memberByID[e.UserID]
			if !ok {
				continue
			}
			if member.Role == "teacher" {
				roster.Teachers = append(roster.Teachers, member)
			} else {
				roster.Students = append(roster.Students, member)
			}
		}
		view.Courses = append(view.Courses, roster)
	}
	return view, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "learning/enrollment-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("enrollment repository operation failed", fields...)
	return err
}

type cohortModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title     string    `gorm:"column:title"`
	StartDate time.Time `gorm:"column:start_date"`
	EndDate   time.Time `gorm:"column:end_date"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (cohortModel) TableName() string {
	return "cohorts"
}

func (m cohortModel) toEntity() entities.Cohort {
	return entities.Cohort{
		ID:        m.ID,
		Title:     m.Title,
		StartDate: m.StartDate.UTC(),
		EndDate:   m.EndDate.UTC(),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type courseModel struct {
	ID    int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Title string `gorm:"column:title"`
}

func (courseModel) TableName() string {
	return "courses"
}

type cohortCourseModel struct {
	CohortID int64 `gorm:"column:cohort_id;primaryKey"`
	CourseID int64 `gorm:"column:course_id;primaryKey"`
}

func (cohortCourseModel) TableName() string {
	return "cohort_courses"
}

type enrollmentModel struct {
	CohortID   int64     `gorm:"column:cohort_id;primaryKey"`
	CourseID   int64     `gorm:"column:course_id;primaryKey"`
	UserID     int64     `gorm:"column:user_id;primaryKey"`
	EnrolledAt time.Time `gorm:"column:enrolled_at"`
}

func (enrollmentModel) TableName() string {
	return "cohort_course_users"
}

type userProjectionModel struct {
	ID        int64   `gorm:"column:id;primaryKey"`
	Username  *string `gorm:"column:username"`
	FirstName string  `gorm:"column:first_name"`
	LastName  string  `gorm:"column:last_name"`
	Role      string  `gorm:"column:role"`
}

func (userProjectionModel) TableName() string {
	return "users"
}

func (m userProjectionModel) usernameValue() string {
	if m.Username == nil {
		return ""
	}
	return *m.Username
}

func (m userProjectionModel) toProjection() ports.UserProjection {
	return ports.UserProjection{
		ID:        m.ID,
		Username:  m.usernameValue(),
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Role:      m.Role,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
