package enums

import "fmt"

// ActivityType maps to the activity_type enum in Postgres.
type ActivityType string

const (
	ActivityEventAttend        ActivityType = "event_attend"
	ActivityEventOrganize      ActivityType = "event_organize"
	ActivityContentCreate      ActivityType = "content_create"
	ActivityContentComment     ActivityType = "content_comment"
	ActivityHelpProvided       ActivityType = "help_provided"
	ActivitySkillShared        ActivityType = "skill_shared"
	ActivityFeedbackGiven      ActivityType = "feedback_given"
	ActivityChallengeCompleted ActivityType = "challenge_completed"
)

var validActivityTypes = []ActivityType{
	ActivityEventAttend,
	ActivityEventOrganize,
	ActivityContentCreate,
	ActivityContentComment,
	ActivityHelpProvided,
	ActivitySkillShared,
	ActivityFeedbackGiven,
	ActivityChallengeCompleted,
}

// IsValid checks whether the given type matches the canonical enum.
func (a ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityType converts raw strings into ActivityType.
func ParseActivityType(value string) (ActivityType, error) {
	for _, candidate := range validActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity type %q", value)
}
