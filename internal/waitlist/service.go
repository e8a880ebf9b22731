package waitlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/ddsc-labs/community-backend/pkg/db"
	"github.com/ddsc-labs/community-backend/pkg/db/models"
	"github.com/ddsc-labs/community-backend/pkg/enums"
	pkgerrors "github.com/ddsc-labs/community-backend/pkg/errors"
	"github.com/ddsc-labs/community-backend/pkg/logger"
	"github.com/ddsc-labs/community-backend/pkg/outbox"
	"github.com/ddsc-labs/community-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the per-event FIFO waitlist operations.
type Service interface {
	Join(ctx context.Context, email, eventName string) (*models.WaitlistEntry, error)
	Status(ctx context.Context, email, eventName string) ([]models.WaitlistEntry, error)
	NextInQueue(ctx context.Context, eventName string) (*models.WaitlistEntry, error)
	Promote(ctx context.Context, entryID uuid.UUID) (*models.WaitlistEntry, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService builds a waitlist service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "waitlist repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner required")
	}
	if publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: publisher,
		logg:   logg,
	}, nil
}

// Join appends the email at the tail of the event's queue. Position assignment
// is serialized by the unique (event_name, position) index: a concurrent join
// that lands on the same position fails the insert and is retried once with a
// freshly computed position.
func (s *service) Join(ctx context.Context, email, eventName string) (*models.WaitlistEntry, error) {
	email = strings.TrimSpace(email)
	eventName = strings.TrimSpace(eventName)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if eventName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event name is required")
	}

	var entry *models.WaitlistEntry
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		entry, err = s.join(ctx, email, eventName)
		if err == nil {
			return entry, nil
		}
		if !dbpkg.IsUniqueViolation(err, "ux_waitlist_event_position") {
			return nil, err
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "waitlist position contention")
}

func (s *service) join(ctx context.Context, email, eventName string) (*models.WaitlistEntry, error) {
	var created models.WaitlistEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		maxPos, err := repo.MaxPosition(ctx, eventName)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute queue tail")
		}

		created = models.WaitlistEntry{
			Email:     email,
			EventName: eventName,
			Position:  maxPos + 1,
			Status:    enums.WaitlistStatusWaiting,
		}
		if err := repo.Create(ctx, &created); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWaitlistEntryJoined,
			AggregateType: enums.AggregateWaitlistEntry,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{Email: email},
			Data: payloads.WaitlistEntryJoinedEvent{
				EntryID:   created.ID,
				EventName: created.EventName,
				Email:     created.Email,
				Position:  created.Position,
				JoinedAt:  created.JoinedAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithEventName(ctx, eventName)
		s.logg.Info(logCtx, "waitlist entry joined")
	}
	return &created, nil
}

// Status returns every entry for the email, optionally scoped to one event,
// ordered by position. No entries is an empty slice, not an error.
func (s *service) Status(ctx context.Context, email, eventName string) ([]models.WaitlistEntry, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	entries, err := s.repo.FindByEmail(ctx, email, strings.TrimSpace(eventName))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load waitlist entries")
	}
	if entries == nil {
		entries = []models.WaitlistEntry{}
	}
	return entries, nil
}

// NextInQueue returns the lowest-position waiting entry, or nil when the queue
// has no waiting entries.
func (s *service) NextInQueue(ctx context.Context, eventName string) (*models.WaitlistEntry, error) {
	eventName = strings.TrimSpace(eventName)
	if eventName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event name is required")
	}

	entry, err := s.repo.NextWaiting(ctx, eventName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load next waiting entry")
	}
	return entry, nil
}

// Promote marks the entry promoted and stamps promoted_at. Promoting an
// already-promoted entry re-stamps the timestamp without emitting another
// event; entries that were registered or cancelled cannot be promoted.
func (s *service) Promote(ctx context.Context, entryID uuid.UUID) (*models.WaitlistEntry, error) {
	if entryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry id is required")
	}

	var promoted models.WaitlistEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		entry, err := repo.FindByID(ctx, entryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "waitlist entry not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load waitlist entry")
		}

		switch entry.Status {
		case enums.WaitlistStatusWaiting, enums.WaitlistStatusPromoted:
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "entry cannot be promoted in current state")
		}

		now := time.Now().UTC()
		if err := repo.MarkPromoted(ctx, entry.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark entry promoted")
		}

		firstPromotion := entry.Status == enums.WaitlistStatusWaiting

		promoted = *entry
		promoted.Status = enums.WaitlistStatusPromoted
		promoted.PromotedAt = &now
		promoted.Notified = true

		if !firstPromotion {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWaitlistEntryPromoted,
			AggregateType: enums.AggregateWaitlistEntry,
			AggregateID:   promoted.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{Email: promoted.Email},
			Data: payloads.WaitlistEntryPromotedEvent{
				EntryID:    promoted.ID,
				EventName:  promoted.EventName,
				Email:      promoted.Email,
				Position:   promoted.Position,
				PromotedAt: now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithEventName(ctx, promoted.EventName)
		s.logg.Info(logCtx, "waitlist entry promoted")
	}
	return &promoted, nil
}
