package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ddsc-labs/community-backend/pkg/enums"
)

// ActivityLog is an append-only record of one engagement-worthy action.
type ActivityLog struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index:idx_activity_logs_user_ts"`
	ActivityType enums.ActivityType `gorm:"column:activity_type;type:activity_type;not null;index:idx_activity_logs_type_ts"`
	OptionID     *uuid.UUID         `gorm:"column:option_id;type:uuid"`
	Description  string             `gorm:"column:description;type:text;not null;default:''"`
	PointsEarned int64              `gorm:"column:points_earned;not null;default:0"`
	Metadata     json.RawMessage    `gorm:"column:metadata;type:jsonb"`
	Timestamp    time.Time          `gorm:"column:timestamp;autoCreateTime;index:idx_activity_logs_user_ts;index:idx_activity_logs_type_ts"`
}
