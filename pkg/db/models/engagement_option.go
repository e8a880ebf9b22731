package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ddsc-labs/community-backend/pkg/enums"
)

// EngagementOption is read-mostly reference data describing an engagement
// opportunity and its default point value.
type EngagementOption struct {
	ID               uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string                   `gorm:"column:name;type:text;not null"`
	Category         enums.EngagementCategory `gorm:"column:category;type:engagement_category;not null"`
	Description      string                   `gorm:"column:description;type:text;not null;default:''"`
	EngagementPoints int64                    `gorm:"column:engagement_points;not null;default:10"`
	IsActive         bool                     `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
}
