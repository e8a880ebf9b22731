package engagement

import (
	"github.com/ddsc-labs/community-backend/pkg/db/models"
	"github.com/ddsc-labs/community-backend/pkg/enums"
)

// UserStatsDTO aggregates one member's engagement figures.
type UserStatsDTO struct {
	TotalActivities    int64                   `json:"total_activities"`
	TotalPoints        int64                   `json:"total_points"`
	ActiveGoals        int64                   `json:"active_goals"`
	ParticipationLevel enums.ParticipationTier `json:"participation_level"`
}

// ActivityReportDTO summarizes community activity over a trailing window.
type ActivityReportDTO struct {
	Days            int                          `json:"days"`
	TotalActivities int64                        `json:"total_activities"`
	UniqueMembers   int64                        `json:"unique_members"`
	TotalPoints     int64                        `json:"total_points"`
	ByType          map[enums.ActivityType]int64 `json:"by_type"`
}

// ActivitiesPageDTO is one cursor page of a user's activity history.
type ActivitiesPageDTO struct {
	Items      []models.ActivityLog `json:"items"`
	NextCursor string               `json:"next_cursor,omitempty"`
}
