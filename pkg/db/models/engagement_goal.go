package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ddsc-labs/community-backend/pkg/enums"
)

// EngagementGoal is a user-defined point target. Progress is recomputed on
// demand from activity logs created at or after the goal itself.
type EngagementGoal struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Title         string           `gorm:"column:title;type:text;not null"`
	Description   string           `gorm:"column:description;type:text;not null;default:''"`
	TargetPoints  int64            `gorm:"column:target_points;not null"`
	CurrentPoints int64            `gorm:"column:current_points;not null;default:0"`
	Status        enums.GoalStatus `gorm:"column:status;type:goal_status;not null;default:active"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	CompletedAt   *time.Time       `gorm:"column:completed_at"`
}
