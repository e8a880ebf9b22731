package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateWaitlistEntry   OutboxAggregateType = "waitlist_entry"
	AggregateActivityLog     OutboxAggregateType = "activity_log"
	AggregateEngagementGoal  OutboxAggregateType = "engagement_goal"
	AggregateEngagementTrend OutboxAggregateType = "engagement_trend"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateWaitlistEntry,
	AggregateActivityLog,
	AggregateEngagementGoal,
	AggregateEngagementTrend,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventWaitlistEntryJoined   OutboxEventType = "waitlist_entry_joined"
	EventWaitlistEntryPromoted OutboxEventType = "waitlist_entry_promoted"
	EventActivityLogged        OutboxEventType = "activity_logged"
	EventGoalCompleted         OutboxEventType = "goal_completed"
	EventDailySnapshotCreated  OutboxEventType = "daily_snapshot_created"
)

var validOutboxEventTypes = []OutboxEventType{
	EventWaitlistEntryJoined,
	EventWaitlistEntryPromoted,
	EventActivityLogged,
	EventGoalCompleted,
	EventDailySnapshotCreated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
