package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity. Authentication lives outside
// this service; the row exists as a foreign-key target for engagement data.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"type:text;not null;uniqueIndex"`
	Username  string    `gorm:"type:text;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
