package enums

import "fmt"

// EngagementCategory maps to the engagement_category enum in Postgres.
type EngagementCategory string

const (
	CategoryEvent      EngagementCategory = "event"
	CategoryContent    EngagementCategory = "content"
	CategoryCommunity  EngagementCategory = "community"
	CategoryLearning   EngagementCategory = "learning"
	CategoryLeadership EngagementCategory = "leadership"
)

var validEngagementCategories = []EngagementCategory{
	CategoryEvent,
	CategoryContent,
	CategoryCommunity,
	CategoryLearning,
	CategoryLeadership,
}

// IsValid checks whether the given category matches the canonical enum.
func (c EngagementCategory) IsValid() bool {
	for _, candidate := range validEngagementCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseEngagementCategory converts raw strings into EngagementCategory.
func ParseEngagementCategory(value string) (EngagementCategory, error) {
	for _, candidate := range validEngagementCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid engagement category %q", value)
}
