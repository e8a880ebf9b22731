package waitlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ddsc-labs/community-backend/pkg/db/models"
	"github.com/ddsc-labs/community-backend/pkg/enums"
)

// Repository encapsulates waitlist persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.WaitlistEntry) error
	MaxPosition(ctx context.Context, eventName string) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error)
	FindByEmail(ctx context.Context, email, eventName string) ([]models.WaitlistEntry, error)
	NextWaiting(ctx context.Context, eventName string) (*models.WaitlistEntry, error)
	MarkPromoted(ctx context.Context, id uuid.UUID, promotedAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a waitlist repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// MaxPosition returns the highest assigned position for the event, zero when
// the event has no entries yet. Retired entries keep their position so numbers
// are never reused.
func (r *repository) MaxPosition(ctx context.Context, eventName string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Select("MAX(position)").
		Where("event_name = ?", eventName).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindByEmail(ctx context.Context, email, eventName string) ([]models.WaitlistEntry, error) {
	query := r.db.WithContext(ctx).
		Where("email = ?", email)
	if eventName != "" {
		query = query.Where("event_name = ?", eventName)
	}

	var entries []models.WaitlistEntry
	err := query.
		Order("position ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) NextWaiting(ctx context.Context, eventName string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("event_name = ? AND status = ?", eventName, enums.WaitlistStatusWaiting).
		Order("position ASC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) MarkPromoted(ctx context.Context, id uuid.UUID, promotedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      enums.WaitlistStatusPromoted,
			"promoted_at": promotedAt,
			"notified":    true,
		}).Error
}
