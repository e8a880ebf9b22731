package models

import (
	"time"

	"github.com/google/uuid"
)

// EngagementTrend is a daily rollup of community engagement. One row per
// calendar date, enforced by a unique index; a second snapshot attempt for the
// same date is a conflict, not an overwrite.
type EngagementTrend struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Date            string    `gorm:"column:date;type:date;not null;uniqueIndex:ux_engagement_trends_date"`
	TotalActivities int64     `gorm:"column:total_activities;not null;default:0"`
	ActiveMembers   int64     `gorm:"column:active_members;not null;default:0"`
	AverageScore    float64   `gorm:"column:average_score;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}
