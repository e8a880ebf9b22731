package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ddsc-labs/community-backend/api/responses"
	"github.com/ddsc-labs/community-backend/api/validators"
	"github.com/ddsc-labs/community-backend/internal/engagement"
	"github.com/ddsc-labs/community-backend/pkg/db/models"
	"github.com/ddsc-labs/community-backend/pkg/enums"
	pkgerrors "github.com/ddsc-labs/community-backend/pkg/errors"
	"github.com/ddsc-labs/community-backend/pkg/logger"
	"github.com/ddsc-labs/community-backend/pkg/pagination"
)

type logActivityPayload struct {
	UserID       string          `json:"user_id" validate:"required,uuid4"`
	ActivityType string          `json:"activity_type" validate:"required"`
	OptionID     string          `json:"option_id,omitempty" validate:"omitempty,uuid4"`
	Description  string          `json:"description,omitempty" validate:"max=2000"`
	Points       int64           `json:"points" validate:"min=0"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

type createGoalPayload struct {
	UserID       string `json:"user_id" validate:"required,uuid4"`
	Title        string `json:"title" validate:"required,min=1,max=200"`
	Description  string `json:"description,omitempty" validate:"max=2000"`
	TargetPoints int64  `json:"target_points" validate:"required,min=1"`
}

type activityResponse struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	ActivityType string          `json:"activity_type"`
	OptionID     *uuid.UUID      `json:"option_id,omitempty"`
	Description  string          `json:"description"`
	PointsEarned int64           `json:"points_earned"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

type activitiesPageResponse struct {
	Items      []activityResponse `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type leaderboardEntryResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Level  string    `json:"level"`
	Score  int64     `json:"score"`
}

type goalResponse struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TargetPoints  int64      `json:"target_points"`
	CurrentPoints int64      `json:"current_points"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func toActivityResponse(row models.ActivityLog) activityResponse {
	return activityResponse{
		ID:           row.ID,
		UserID:       row.UserID,
		ActivityType: string(row.ActivityType),
		OptionID:     row.OptionID,
		Description:  row.Description,
		PointsEarned: row.PointsEarned,
		Metadata:     row.Metadata,
		Timestamp:    row.Timestamp,
	}
}

func toGoalResponse(goal models.EngagementGoal) goalResponse {
	return goalResponse{
		ID:            goal.ID,
		UserID:        goal.UserID,
		Title:         goal.Title,
		Description:   goal.Description,
		TargetPoints:  goal.TargetPoints,
		CurrentPoints: goal.CurrentPoints,
		Status:        string(goal.Status),
		CreatedAt:     goal.CreatedAt,
		CompletedAt:   goal.CompletedAt,
	}
}

// EngagementLogActivity records one scored activity for a member.
func EngagementLogActivity(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		var payload logActivityPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		userID, err := uuid.Parse(payload.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		input := engagement.LogActivityInput{
			UserID:       userID,
			ActivityType: enums.ActivityType(payload.ActivityType),
			Description:  strings.TrimSpace(payload.Description),
			Points:       payload.Points,
			Metadata:     payload.Metadata,
		}
		if payload.OptionID != "" {
			optionID, err := uuid.Parse(payload.OptionID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid option id"))
				return
			}
			input.OptionID = &optionID
		}

		activity, err := svc.LogActivity(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toActivityResponse(*activity))
	}
}

// EngagementUserStats aggregates one member's engagement figures.
func EngagementUserStats(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		userID, err := parseUserIDQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		stats, err := svc.GetUserStats(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// EngagementActivities lists a member's activity history, newest first.
func EngagementActivities(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		userID, err := parseUserIDQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		page, err := svc.ListActivities(ctx, userID, cursor, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]activityResponse, 0, len(page.Items))
		for _, row := range page.Items {
			items = append(items, toActivityResponse(row))
		}
		responses.WriteSuccess(w, activitiesPageResponse{Items: items, NextCursor: page.NextCursor})
	}
}

// EngagementLeaderboard returns the top members by score.
func EngagementLeaderboard(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		levels, err := svc.GetLeaderboard(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entries := make([]leaderboardEntryResponse, 0, len(levels))
		for _, level := range levels {
			entries = append(entries, leaderboardEntryResponse{
				UserID: level.UserID,
				Level:  string(level.Level),
				Score:  level.Score,
			})
		}
		responses.WriteSuccess(w, entries)
	}
}

// EngagementCreateGoal registers a new point target for a member.
func EngagementCreateGoal(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		var payload createGoalPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		userID, err := uuid.Parse(payload.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		goal, err := svc.CreateGoal(ctx, engagement.CreateGoalInput{
			UserID:       userID,
			Title:        payload.Title,
			Description:  strings.TrimSpace(payload.Description),
			TargetPoints: payload.TargetPoints,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toGoalResponse(*goal))
	}
}

// EngagementGoalProgress recomputes a goal's progress from the activity ledger.
func EngagementGoalProgress(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "goalId"))
		goalID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid goal id"))
			return
		}

		goal, err := svc.UpdateGoalProgress(ctx, goalID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toGoalResponse(*goal))
	}
}

// EngagementReport summarizes community activity over a trailing window.
func EngagementReport(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		days, err := validators.ParseQueryInt(r, "days", 0, 1, 365)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		report, err := svc.GetActivityReport(ctx, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func parseUserIDQuery(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id query parameter is required")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return userID, nil
}
