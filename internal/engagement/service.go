package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ddsc-labs/community-backend/pkg/config"
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

// LogActivityInput captures one engagement-worthy action.
type LogActivityInput struct {
	UserID       uuid.UUID
	ActivityType enums.ActivityType
	OptionID     *uuid.UUID
	Description  string
	Points       int64
	Metadata     json.RawMessage
}

// CreateGoalInput captures a new point target for a member.
type CreateGoalInput struct {
	UserID       uuid.UUID
	Title        string
	Description  string
	TargetPoints int64
}

// Service exposes the engagement ledger operations.
type Service interface {
	LogActivity(ctx context.Context, input LogActivityInput) (*models.ActivityLog, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (UserStatsDTO, error)
	GetLeaderboard(ctx context.Context, topN int) ([]models.ParticipationLevel, error)
	ListActivities(ctx context.Context, userID uuid.UUID, cursor string, limit int) (ActivitiesPageDTO, error)
	CreateGoal(ctx context.Context, input CreateGoalInput) (*models.EngagementGoal, error)
	UpdateGoalProgress(ctx context.Context, goalID uuid.UUID) (*models.EngagementGoal, error)
	GetActivityReport(ctx context.Context, days int) (ActivityReportDTO, error)
	CreateDailySnapshot(ctx context.Context) (*models.EngagementTrend, error)
	EnsureParticipationLevel(ctx context.Context, userID uuid.UUID) (*models.ParticipationLevel, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	cfg    config.EngagementConfig
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds an engagement service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, cfg config.EngagementConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "engagement repository required")
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
		cfg:    cfg,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// LogActivity appends the activity row and atomically increments the user's
// running score in the same transaction, so concurrent logs never lose points.
func (s *service) LogActivity(ctx context.Context, input LogActivityInput) (*models.ActivityLog, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.ActivityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unrecognized activity type")
	}
	if input.Points < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points must be non-negative")
	}

	var activity models.ActivityLog
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := resolveUser(ctx, repo, input.UserID); err != nil {
			return err
		}

		if input.OptionID != nil {
			if _, err := repo.FindOptionByID(ctx, *input.OptionID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "engagement option not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load engagement option")
			}
		}

		activity = models.ActivityLog{
			UserID:       input.UserID,
			ActivityType: input.ActivityType,
			OptionID:     input.OptionID,
			Description:  input.Description,
			PointsEarned: input.Points,
			Metadata:     input.Metadata,
		}
		if err := repo.InsertActivity(ctx, &activity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert activity log")
		}

		newScore, err := repo.IncrementScore(ctx, input.UserID, input.Points)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment participation score")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventActivityLogged,
			AggregateType: enums.AggregateActivityLog,
			AggregateID:   activity.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: &input.UserID},
			Data: payloads.ActivityLoggedEvent{
				ActivityID:   activity.ID,
				UserID:       input.UserID,
				ActivityType: input.ActivityType,
				Points:       input.Points,
				NewScore:     newScore,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithUserID(ctx, input.UserID.String())
		s.logg.Info(logCtx, "activity logged")
	}
	return &activity, nil
}

// GetUserStats is a pure read aggregation over the user's ledger.
func (s *service) GetUserStats(ctx context.Context, userID uuid.UUID) (UserStatsDTO, error) {
	if userID == uuid.Nil {
		return UserStatsDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := resolveUser(ctx, s.repo, userID); err != nil {
		return UserStatsDTO{}, err
	}

	totalActivities, err := s.repo.CountActivities(ctx, userID)
	if err != nil {
		return UserStatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count activities")
	}
	totalPoints, err := s.repo.SumPoints(ctx, userID)
	if err != nil {
		return UserStatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum points")
	}
	activeGoals, err := s.repo.CountActiveGoals(ctx, userID)
	if err != nil {
		return UserStatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active goals")
	}

	tier := enums.TierObserver
	level, err := s.repo.FindParticipation(ctx, userID)
	switch {
	case err == nil:
		tier = level.Level
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no level row yet; default tier applies
	default:
		return UserStatsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participation level")
	}

	return UserStatsDTO{
		TotalActivities:    totalActivities,
		TotalPoints:        totalPoints,
		ActiveGoals:        activeGoals,
		ParticipationLevel: tier,
	}, nil
}

// GetLeaderboard returns the top members by score, id as the stable tiebreak.
func (s *service) GetLeaderboard(ctx context.Context, topN int) ([]models.ParticipationLevel, error) {
	if topN <= 0 {
		topN = s.cfg.LeaderboardSize
	}
	levels, err := s.repo.Leaderboard(ctx, topN)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load leaderboard")
	}
	return levels, nil
}

// ListActivities pages through a user's activity history, newest first.
func (s *service) ListActivities(ctx context.Context, userID uuid.UUID, cursor string, limit int) (ActivitiesPageDTO, error) {
	if userID == uuid.Nil {
		return ActivitiesPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := resolveUser(ctx, s.repo, userID); err != nil {
		return ActivitiesPageDTO{}, err
	}
	page, err := s.repo.ListActivities(ctx, userID, cursor, limit)
	if err != nil {
		return ActivitiesPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activities")
	}
	return page, nil
}

// CreateGoal records a new point target for the member.
func (s *service) CreateGoal(ctx context.Context, input CreateGoalInput) (*models.EngagementGoal, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.TargetPoints <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target points must be positive")
	}
	if err := resolveUser(ctx, s.repo, input.UserID); err != nil {
		return nil, err
	}

	goal := models.EngagementGoal{
		UserID:       input.UserID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		TargetPoints: input.TargetPoints,
		Status:       enums.GoalStatusActive,
	}
	if err := s.repo.CreateGoal(ctx, &goal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create goal")
	}
	return &goal, nil
}

// UpdateGoalProgress recomputes current_points from activity logged at or after
// the goal's creation. An active goal flips to completed exactly when the sum
// reaches target_points; completed_at is stamped once and never overwritten.
func (s *service) UpdateGoalProgress(ctx context.Context, goalID uuid.UUID) (*models.EngagementGoal, error) {
	if goalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goal id is required")
	}

	var result models.EngagementGoal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		goal, err := repo.FindGoalByID(ctx, goalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "goal not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load goal")
		}

		result = *goal
		if goal.Status != enums.GoalStatusActive {
			return nil
		}

		current, err := repo.SumPointsSince(ctx, goal.UserID, goal.CreatedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum goal progress")
		}

		updates := map[string]any{"current_points": current}
		completed := current >= goal.TargetPoints
		var completedAt time.Time
		if completed {
			completedAt = s.now()
			updates["status"] = enums.GoalStatusCompleted
			updates["completed_at"] = completedAt
		}
		if err := repo.UpdateGoal(ctx, goal.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update goal progress")
		}

		result.CurrentPoints = current
		if !completed {
			return nil
		}
		result.Status = enums.GoalStatusCompleted
		result.CompletedAt = &completedAt

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGoalCompleted,
			AggregateType: enums.AggregateEngagementGoal,
			AggregateID:   goal.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: &goal.UserID},
			Data: payloads.GoalCompletedEvent{
				GoalID:       goal.ID,
				UserID:       goal.UserID,
				Title:        goal.Title,
				TargetPoints: goal.TargetPoints,
				CompletedAt:  completedAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetActivityReport summarizes activity over the trailing N days.
func (s *service) GetActivityReport(ctx context.Context, days int) (ActivityReportDTO, error) {
	if days <= 0 {
		days = s.cfg.ReportDays
	}
	cutoff := s.now().AddDate(0, 0, -days)

	activities, members, points, err := s.repo.ActivityTotalsSince(ctx, cutoff)
	if err != nil {
		return ActivityReportDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate activity totals")
	}
	byType, err := s.repo.ActivityCountsByTypeSince(ctx, cutoff)
	if err != nil {
		return ActivityReportDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate activity types")
	}

	return ActivityReportDTO{
		Days:            days,
		TotalActivities: activities,
		UniqueMembers:   members,
		TotalPoints:     points,
		ByType:          byType,
	}, nil
}

// CreateDailySnapshot writes today's rollup row. The unique date index makes a
// second snapshot for the same day a Conflict rather than an overwrite.
func (s *service) CreateDailySnapshot(ctx context.Context) (*models.EngagementTrend, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var trend models.EngagementTrend
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		activities, members, err := repo.ActivityTotalsBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate daily activity")
		}

		sum, count, err := repo.ScoreAggregate(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate scores")
		}
		average := 0.0
		if count > 0 {
			average = decimal.NewFromInt(sum).
				Div(decimal.NewFromInt(count)).
				Round(2).
				InexactFloat64()
		}

		trend = models.EngagementTrend{
			Date:            dayStart.Format("2006-01-02"),
			TotalActivities: activities,
			ActiveMembers:   members,
			AverageScore:    average,
		}
		if err := repo.InsertTrend(ctx, &trend); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_engagement_trends_date") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "snapshot already exists for today")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert snapshot")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDailySnapshotCreated,
			AggregateType: enums.AggregateEngagementTrend,
			AggregateID:   trend.ID,
			Version:       1,
			Data: payloads.DailySnapshotCreatedEvent{
				SnapshotID:      trend.ID,
				Date:            trend.Date,
				TotalActivities: trend.TotalActivities,
				ActiveMembers:   trend.ActiveMembers,
				AverageScore:    trend.AverageScore,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(ctx, "daily engagement snapshot created")
	}
	return &trend, nil
}

// resolveUser rejects writes against user ids with no users row; without this
// check the foreign keys on activity_logs and participation_levels would
// surface the miss as a database error instead of a NotFound.
func resolveUser(ctx context.Context, repo Repository, userID uuid.UUID) error {
	exists, err := repo.UserExists(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve user")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

// EnsureParticipationLevel get-or-creates the per-user level row.
func (s *service) EnsureParticipationLevel(ctx context.Context, userID uuid.UUID) (*models.ParticipationLevel, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := resolveUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	level, err := s.repo.EnsureParticipation(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure participation level")
	}
	return level, nil
}
