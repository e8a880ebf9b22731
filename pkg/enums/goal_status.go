package enums

import "fmt"

// GoalStatus maps to the goal_status enum in Postgres.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
	GoalStatusCancelled GoalStatus = "cancelled"
)

var validGoalStatuses = []GoalStatus{
	GoalStatusActive,
	GoalStatusCompleted,
	GoalStatusPaused,
	GoalStatusCancelled,
}

// IsValid checks whether the given status matches the canonical enum.
func (g GoalStatus) IsValid() bool {
	for _, candidate := range validGoalStatuses {
		if candidate == g {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (g GoalStatus) IsTerminal() bool {
	return g == GoalStatusCompleted || g == GoalStatusCancelled
}

// ParseGoalStatus converts raw strings into GoalStatus.
func ParseGoalStatus(value string) (GoalStatus, error) {
	for _, candidate := range validGoalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid goal status %q", value)
}
