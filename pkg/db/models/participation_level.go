package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ddsc-labs/community-backend/pkg/enums"
)

// ParticipationLevel holds the running engagement score for one user.
// Exactly one row per user; score only moves through atomic increments so it
// always equals the sum of that user's activity log points.
type ParticipationLevel struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID               `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_participation_levels_user"`
	Level     enums.ParticipationTier `gorm:"column:level;type:participation_tier;not null;default:observer"`
	Score     int64                   `gorm:"column:score;not null;default:0"`
	UpdatedAt time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
