package waitlist

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

	dbpkg "github.com/ddsc-labs/community-backend/pkg/db"
	"github.com/ddsc-labs/community-backend/pkg/db/models"
	"github.com/ddsc-labs/community-backend/pkg/enums"
)

func setupWaitlistTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	entries := `
CREATE TABLE IF NOT EXISTS waitlist_entries (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  event_name TEXT NOT NULL,
  position INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'waiting',
  joined_at DATETIME,
  promoted_at DATETIME,
  notified INTEGER NOT NULL DEFAULT 0
);`
	uniquePosition := `
CREATE UNIQUE INDEX IF NOT EXISTS ux_waitlist_event_position
  ON waitlist_entries (event_name, position);`
	outboxEvents := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(entries).Error)
	require.NoError(t, db.Exec(uniquePosition).Error)
	require.NoError(t, db.Exec(outboxEvents).Error)
	return db
}

func newEntry(t *testing.T, db *gorm.DB, email, eventName string, position int, status enums.WaitlistStatus) *models.WaitlistEntry {
	t.Helper()

	entry := &models.WaitlistEntry{
		ID:        uuid.New(),
		Email:     email,
		EventName: eventName,
		Position:  position,
		Status:    status,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestRepositoryMaxPosition(t *testing.T) {
	db := setupWaitlistTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	max, err := repo.MaxPosition(ctx, "go-meetup")
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	newEntry(t, db, "a@example.org", "go-meetup", 1, enums.WaitlistStatusWaiting)
	newEntry(t, db, "b@example.org", "go-meetup", 2, enums.WaitlistStatusCancelled)
	newEntry(t, db, "c@example.org", "other-event", 9, enums.WaitlistStatusWaiting)

	max, err = repo.MaxPosition(ctx, "go-meetup")
	require.NoError(t, err)
	assert.Equal(t, 2, max, "retired entries keep their position")
}

func TestRepositoryFindByEmail(t *testing.T) {
	db := setupWaitlistTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newEntry(t, db, "dup@example.org", "event-a", 3, enums.WaitlistStatusWaiting)
	newEntry(t, db, "dup@example.org", "event-a", 1, enums.WaitlistStatusPromoted)
	newEntry(t, db, "dup@example.org", "event-b", 2, enums.WaitlistStatusWaiting)
	newEntry(t, db, "other@example.org", "event-a", 2, enums.WaitlistStatusWaiting)

	all, err := repo.FindByEmail(ctx, "dup@example.org", "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	scoped, err := repo.FindByEmail(ctx, "dup@example.org", "event-a")
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	assert.Equal(t, 1, scoped[0].Position)
	assert.Equal(t, 3, scoped[1].Position)

	none, err := repo.FindByEmail(ctx, "missing@example.org", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepositoryNextWaiting(t *testing.T) {
	db := setupWaitlistTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newEntry(t, db, "a@example.org", "launch", 1, enums.WaitlistStatusPromoted)
	newEntry(t, db, "b@example.org", "launch", 2, enums.WaitlistStatusWaiting)
	newEntry(t, db, "c@example.org", "launch", 3, enums.WaitlistStatusWaiting)

	next, err := repo.NextWaiting(ctx, "launch")
	require.NoError(t, err)
	assert.Equal(t, "b@example.org", next.Email)
	assert.Equal(t, 2, next.Position)

	_, err = repo.NextWaiting(ctx, "empty-event")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryMarkPromoted(t *testing.T) {
	db := setupWaitlistTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	entry := newEntry(t, db, "a@example.org", "promo", 1, enums.WaitlistStatusWaiting)
	promotedAt := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.MarkPromoted(ctx, entry.ID, promotedAt))

	reloaded, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.WaitlistStatusPromoted, reloaded.Status)
	assert.True(t, reloaded.Notified)
	require.NotNil(t, reloaded.PromotedAt)
	assert.WithinDuration(t, promotedAt, *reloaded.PromotedAt, time.Second)
}

func TestRepositoryPositionUniqueness(t *testing.T) {
	db := setupWaitlistTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newEntry(t, db, "first@example.org", "clash", 1, enums.WaitlistStatusWaiting)

	err := repo.Create(ctx, &models.WaitlistEntry{
		Email:     "second@example.org",
		EventName: "clash",
		Position:  1,
		Status:    enums.WaitlistStatusWaiting,
	})
	require.Error(t, err)
	assert.True(t, dbpkg.IsUniqueViolation(err, "ux_waitlist_event_position"))
}
