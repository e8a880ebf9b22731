package engagement

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ddsc-labs/community-backend/pkg/db/models"
	"github.com/ddsc-labs/community-backend/pkg/enums"
	"github.com/ddsc-labs/community-backend/pkg/pagination"
)

// Repository encapsulates engagement persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	InsertActivity(ctx context.Context, activity *models.ActivityLog) error
	IncrementScore(ctx context.Context, userID uuid.UUID, points int64) (int64, error)
	ListActivities(ctx context.Context, userID uuid.UUID, cursor string, limit int) (ActivitiesPageDTO, error)

	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)

	FindParticipation(ctx context.Context, userID uuid.UUID) (*models.ParticipationLevel, error)
	EnsureParticipation(ctx context.Context, userID uuid.UUID) (*models.ParticipationLevel, error)
	Leaderboard(ctx context.Context, limit int) ([]models.ParticipationLevel, error)
	ScoreAggregate(ctx context.Context) (sum int64, count int64, err error)

	CountActivities(ctx context.Context, userID uuid.UUID) (int64, error)
	SumPoints(ctx context.Context, userID uuid.UUID) (int64, error)
	SumPointsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)

	CreateGoal(ctx context.Context, goal *models.EngagementGoal) error
	FindGoalByID(ctx context.Context, id uuid.UUID) (*models.EngagementGoal, error)
	CountActiveGoals(ctx context.Context, userID uuid.UUID) (int64, error)
	UpdateGoal(ctx context.Context, id uuid.UUID, updates map[string]any) error

	FindOptionByID(ctx context.Context, id uuid.UUID) (*models.EngagementOption, error)

	ActivityTotalsSince(ctx context.Context, since time.Time) (activities int64, members int64, points int64, err error)
	ActivityCountsByTypeSince(ctx context.Context, since time.Time) (map[enums.ActivityType]int64, error)
	ActivityTotalsBetween(ctx context.Context, from, to time.Time) (activities int64, members int64, err error)
	InsertTrend(ctx context.Context, trend *models.EngagementTrend) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an engagement repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) InsertActivity(ctx context.Context, activity *models.ActivityLog) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(activity).Error
}

// IncrementScore atomically bumps the user's running score, creating the level
// row on first use. Returns the post-increment score.
func (r *repository) IncrementScore(ctx context.Context, userID uuid.UUID, points int64) (int64, error) {
	err := r.db.WithContext(ctx).
		Exec(`INSERT INTO participation_levels (id, user_id, level, score, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET score = participation_levels.score + ?, updated_at = ?`,
			uuid.New(), userID, enums.TierObserver, points, time.Now().UTC(), points, time.Now().UTC()).
		Error
	if err != nil {
		return 0, err
	}

	var score int64
	err = r.db.WithContext(ctx).
		Model(&models.ParticipationLevel{}).
		Select("score").
		Where("user_id = ?", userID).
		Scan(&score).Error
	return score, err
}

// ListActivities returns a cursor page of a user's activity history, newest first.
func (r *repository) ListActivities(ctx context.Context, userID uuid.UUID, cursor string, limit int) (ActivitiesPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	cursorValue := strings.TrimSpace(cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return ActivitiesPageDTO{}, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("user_id = ?", userID)

	if decodedCursor != nil {
		query = query.Where("(timestamp < ?) OR (timestamp = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.ActivityLog
	err = query.
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return ActivitiesPageDTO{}, err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.Timestamp,
			ID:        last.ID,
		})
	}

	return ActivitiesPageDTO{
		Items:      rows,
		NextCursor: nextCursor,
	}, nil
}

func (r *repository) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindParticipation(ctx context.Context, userID uuid.UUID) (*models.ParticipationLevel, error) {
	var level models.ParticipationLevel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// EnsureParticipation get-or-creates the per-user level row.
func (r *repository) EnsureParticipation(ctx context.Context, userID uuid.UUID) (*models.ParticipationLevel, error) {
	err := r.db.WithContext(ctx).
		Exec(`INSERT INTO participation_levels (id, user_id, level, score, updated_at)
VALUES (?, ?, ?, 0, ?)
ON CONFLICT (user_id) DO NOTHING`,
			uuid.New(), userID, enums.TierObserver, time.Now().UTC()).
		Error
	if err != nil {
		return nil, err
	}
	return r.FindParticipation(ctx, userID)
}

func (r *repository) Leaderboard(ctx context.Context, limit int) ([]models.ParticipationLevel, error) {
	var levels []models.ParticipationLevel
	err := r.db.WithContext(ctx).
		Order("score DESC").
		Order("id ASC").
		Limit(limit).
		Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repository) ScoreAggregate(ctx context.Context) (int64, int64, error) {
	var row struct {
		Sum   *int64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ParticipationLevel{}).
		Select("SUM(score) AS sum, COUNT(*) AS count").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	sum := int64(0)
	if row.Sum != nil {
		sum = *row.Sum
	}
	return sum, row.Count, nil
}

func (r *repository) CountActivities(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *repository) SumPoints(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.sumPoints(ctx, userID, nil)
}

func (r *repository) SumPointsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	return r.sumPoints(ctx, userID, &since)
}

func (r *repository) sumPoints(ctx context.Context, userID uuid.UUID, since *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("COALESCE(SUM(points_earned), 0)").
		Where("user_id = ?", userID)
	if since != nil {
		query = query.Where("timestamp >= ?", *since)
	}

	var total int64
	err := query.Scan(&total).Error
	return total, err
}

func (r *repository) CreateGoal(ctx context.Context, goal *models.EngagementGoal) error {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(goal).Error
}

func (r *repository) FindGoalByID(ctx context.Context, id uuid.UUID) (*models.EngagementGoal, error) {
	var goal models.EngagementGoal
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *repository) CountActiveGoals(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EngagementGoal{}).
		Where("user_id = ? AND status = ?", userID, enums.GoalStatusActive).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateGoal(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.EngagementGoal{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindOptionByID(ctx context.Context, id uuid.UUID) (*models.EngagementOption, error) {
	var option models.EngagementOption
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&option).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *repository) ActivityTotalsSince(ctx context.Context, since time.Time) (int64, int64, int64, error) {
	var row struct {
		Activities int64
		Members    int64
		Points     *int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("COUNT(*) AS activities, COUNT(DISTINCT user_id) AS members, SUM(points_earned) AS points").
		Where("timestamp >= ?", since).
		Scan(&row).Error
	if err != nil {
		return 0, 0, 0, err
	}
	points := int64(0)
	if row.Points != nil {
		points = *row.Points
	}
	return row.Activities, row.Members, points, nil
}

func (r *repository) ActivityCountsByTypeSince(ctx context.Context, since time.Time) (map[enums.ActivityType]int64, error) {
	var rows []struct {
		ActivityType enums.ActivityType
		Count        int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("activity_type, COUNT(*) AS count").
		Where("timestamp >= ?", since).
		Group("activity_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.ActivityType]int64, len(rows))
	for _, row := range rows {
		counts[row.ActivityType] = row.Count
	}
	return counts, nil
}

func (r *repository) ActivityTotalsBetween(ctx context.Context, from, to time.Time) (int64, int64, error) {
	var row struct {
		Activities int64
		Members    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("COUNT(*) AS activities, COUNT(DISTINCT user_id) AS members").
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Activities, row.Members, nil
}

func (r *repository) InsertTrend(ctx context.Context, trend *models.EngagementTrend) error {
	if trend.ID == uuid.Nil {
		trend.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(trend).Error
}
