package engagement

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ddsc-labs/community-backend/pkg/db/models"
	"github.com/ddsc-labs/community-backend/pkg/enums"
)

func setupEngagementTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  username TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS participation_levels (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  level TEXT NOT NULL DEFAULT 'observer',
  score INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_participation_levels_user
  ON participation_levels (user_id);`,
		`CREATE TABLE IF NOT EXISTS engagement_options (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  engagement_points INTEGER NOT NULL DEFAULT 10,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS activity_logs (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  activity_type TEXT NOT NULL,
  option_id TEXT,
  description TEXT NOT NULL DEFAULT '',
  points_earned INTEGER NOT NULL DEFAULT 0,
  metadata TEXT,
  timestamp DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS engagement_goals (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  target_points INTEGER NOT NULL,
  current_points INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  completed_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS engagement_trends (
  id TEXT PRIMARY KEY,
  date TEXT NOT NULL,
  total_activities INTEGER NOT NULL DEFAULT 0,
  active_members INTEGER NOT NULL DEFAULT 0,
  average_score REAL NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_engagement_trends_date
  ON engagement_trends (date);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Username: "member",
		IsActive: true,
	}
	user.Email = user.ID.String() + "@ddsc.club"
	require.NoError(t, db.Create(user).Error)
	return user.ID
}

func logRow(t *testing.T, db *gorm.DB, userID uuid.UUID, activityType enums.ActivityType, points int64, ts time.Time) *models.ActivityLog {
	t.Helper()

	row := &models.ActivityLog{
		ID:           uuid.New(),
		UserID:       userID,
		ActivityType: activityType,
		PointsEarned: points,
		Timestamp:    ts,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestRepositoryIncrementScore(t *testing.T) {
	db := setupEngagementTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	score, err := repo.IncrementScore(ctx, userID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), score)

	score, err = repo.IncrementScore(ctx, userID, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(25), score)

	// only one level row exists regardless of increments
	var count int64
	require.NoError(t, db.Model(&models.ParticipationLevel{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryEnsureParticipation(t *testing.T) {
	db := setupEngagementTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	level, err := repo.EnsureParticipation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, enums.TierObserver, level.Level)
	assert.Equal(t, int64(0), level.Score)

	again, err := repo.EnsureParticipation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, level.ID, again.ID)
}

func TestRepositoryLeaderboardOrdering(t *testing.T) {
	db := setupEngagementTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	users := make([]uuid.UUID, 4)
	scores := []int64{5, 40, 40, 12}
	for i := range users {
		users[i] = uuid.New()
		_, err := repo.IncrementScore(ctx, users[i], scores[i])
		require.NoError(t, err)
	}

	top, err := repo.Leaderboard(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, int64(40), top[0].Score)
	assert.Equal(t, int64(40), top[1].Score)
	assert.Equal(t, int64(12), top[2].Score)
	// equal scores break ties on id so the order is stable
	assert.Less(t, top[0].ID.String(), top[1].ID.String())
}

func TestRepositoryListActivitiesPagination(t *testing.T) {
	db := setupEngagementTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		logRow(t, db, userID, enums.ActivityEventAttend, 5, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.ListActivities(ctx, userID, "", 3)
	require.NoError(t, err)
	require.Len(t, first.Items, 3)
	require.NotEmpty(t, first.NextCursor)
	assert.True(t, first.Items[0].Timestamp.After(first.Items[1].Timestamp))

	second, err := repo.ListActivities(ctx, userID, first.NextCursor, 3)
	require.NoError(t, err)
	require.Len(t, second.Items, 3)
	assert.True(t, first.Items[2].Timestamp.After(second.Items[0].Timestamp))

	third, err := repo.ListActivities(ctx, userID, second.NextCursor, 3)
	require.NoError(t, err)
	require.Len(t, third.Items, 1)
	assert.Empty(t, third.NextCursor)
}

func TestRepositoryActivityAggregates(t *testing.T) {
	db := setupEngagementTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userA := uuid.New()
	userB := uuid.New()
	now := time.Now().UTC()

	logRow(t, db, userA, enums.ActivityEventAttend, 10, now.Add(-time.Hour))
	logRow(t, db, userA, enums.ActivityContentCreate, 20, now.Add(-2*time.Hour))
	logRow(t, db, userB, enums.ActivityEventAttend, 5, now.Add(-3*time.Hour))
	// outside the window
	logRow(t, db, userB, enums.ActivityHelpProvided, 99, now.Add(-48*time.Hour))

	cutoff := now.Add(-24 * time.Hour)
	activities, members, points, err := repo.ActivityTotalsSince(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), activities)
	assert.Equal(t, int64(2), members)
	assert.Equal(t, int64(35), points)

	byType, err := repo.ActivityCountsByTypeSince(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byType[enums.ActivityEventAttend])
	assert.Equal(t, int64(1), byType[enums.ActivityContentCreate])
	_, ok := byType[enums.ActivityHelpProvided]
	assert.False(t, ok)
}

func TestRepositoryScoreAggregate(t *testing.T) {
	db := setupEngagementTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sum, count, err := repo.ScoreAggregate(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum)
	assert.Zero(t, count)

	_, err = repo.IncrementScore(ctx, uuid.New(), 10)
	require.NoError(t, err)
	_, err = repo.IncrementScore(ctx, uuid.New(), 15)
	require.NoError(t, err)

	sum, count, err = repo.ScoreAggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), sum)
	assert.Equal(t, int64(2), count)
}
