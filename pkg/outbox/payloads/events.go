package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/ddsc-labs/community-backend/pkg/enums"
)

// WaitlistEntryJoinedEvent signals a new entry at the tail of an event waitlist.
type WaitlistEntryJoinedEvent struct {
	EntryID   uuid.UUID `json:"entry_id"`
	EventName string    `json:"event_name"`
	Email     string    `json:"email"`
	Position  int       `json:"position"`
	JoinedAt  time.Time `json:"joined_at"`
}

// WaitlistEntryPromotedEvent is emitted when the head of a waitlist is promoted.
// Downstream consumers use it to send the invitation email.
type WaitlistEntryPromotedEvent struct {
	EntryID    uuid.UUID `json:"entry_id"`
	EventName  string    `json:"event_name"`
	Email      string    `json:"email"`
	Position   int       `json:"position"`
	PromotedAt time.Time `json:"promoted_at"`
}

// ActivityLoggedEvent records a scored member activity.
type ActivityLoggedEvent struct {
	ActivityID   uuid.UUID          `json:"activity_id"`
	UserID       uuid.UUID          `json:"user_id"`
	ActivityType enums.ActivityType `json:"activity_type"`
	Points       int64              `json:"points"`
	NewScore     int64              `json:"new_score"`
}

// GoalCompletedEvent is emitted when recomputed progress crosses the target.
type GoalCompletedEvent struct {
	GoalID       uuid.UUID `json:"goal_id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	TargetPoints int64     `json:"target_points"`
	CompletedAt  time.Time `json:"completed_at"`
}

// DailySnapshotCreatedEvent summarizes the engagement rollup for a date.
type DailySnapshotCreatedEvent struct {
	SnapshotID      uuid.UUID `json:"snapshot_id"`
	Date            string    `json:"date"`
	TotalActivities int64     `json:"total_activities"`
	ActiveMembers   int64     `json:"active_members"`
	AverageScore    float64   `json:"average_score"`
}
