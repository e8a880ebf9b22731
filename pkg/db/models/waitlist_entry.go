package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ddsc-labs/community-backend/pkg/enums"
)

// WaitlistEntry is one place in a per-event FIFO waiting list. Positions are
// contiguous from 1 within an event_name and never reused; entries are soft
// retired via status rather than deleted.
type WaitlistEntry struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email      string               `gorm:"column:email;type:text;not null"`
	EventName  string               `gorm:"column:event_name;type:text;not null;index:idx_waitlist_event_status;uniqueIndex:ux_waitlist_event_position,priority:1"`
	Position   int                  `gorm:"column:position;not null;uniqueIndex:ux_waitlist_event_position,priority:2"`
	Status     enums.WaitlistStatus `gorm:"column:status;type:waitlist_status;not null;default:waiting;index:idx_waitlist_event_status"`
	JoinedAt   time.Time            `gorm:"column:joined_at;autoCreateTime"`
	PromotedAt *time.Time           `gorm:"column:promoted_at"`
	Notified   bool                 `gorm:"column:notified;not null;default:false"`
}
