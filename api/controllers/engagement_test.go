package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ddsc-labs/community-backend/internal/engagement"
	"github.com/ddsc-labs/community-backend/pkg/db/models"
	"github.com/ddsc-labs/community-backend/pkg/enums"
	pkgerrors "github.com/ddsc-labs/community-backend/pkg/errors"
)

type stubEngagementService struct {
	activity *models.ActivityLog
	stats    engagement.UserStatsDTO
	levels   []models.ParticipationLevel
	page     engagement.ActivitiesPageDTO
	goal     *models.EngagementGoal
	report   engagement.ActivityReportDTO
	trend    *models.EngagementTrend
	err      error

	logged      []engagement.LogActivityInput
	leaderboard []int
}

func (s *stubEngagementService) LogActivity(ctx context.Context, input engagement.LogActivityInput) (*models.ActivityLog, error) {
	s.logged = append(s.logged, input)
	return s.activity, s.err
}

func (s *stubEngagementService) GetUserStats(ctx context.Context, userID uuid.UUID) (engagement.UserStatsDTO, error) {
	return s.stats, s.err
}

func (s *stubEngagementService) GetLeaderboard(ctx context.Context, topN int) ([]models.ParticipationLevel, error) {
	s.leaderboard = append(s.leaderboard, topN)
	return s.levels, s.err
}

func (s *stubEngagementService) ListActivities(ctx context.Context, userID uuid.UUID, cursor string, limit int) (engagement.ActivitiesPageDTO, error) {
	return s.page, s.err
}

func (s *stubEngagementService) CreateGoal(ctx context.Context, input engagement.CreateGoalInput) (*models.EngagementGoal, error) {
	return s.goal, s.err
}

func (s *stubEngagementService) UpdateGoalProgress(ctx context.Context, goalID uuid.UUID) (*models.EngagementGoal, error) {
	return s.goal, s.err
}

func (s *stubEngagementService) GetActivityReport(ctx context.Context, days int) (engagement.ActivityReportDTO, error) {
	return s.report, s.err
}

func (s *stubEngagementService) CreateDailySnapshot(ctx context.Context) (*models.EngagementTrend, error) {
	return s.trend, s.err
}

func (s *stubEngagementService) EnsureParticipationLevel(ctx context.Context, userID uuid.UUID) (*models.ParticipationLevel, error) {
	return nil, s.err
}

func TestEngagementLogActivitySuccess(t *testing.T) {
	userID := uuid.New()
	activity := &models.ActivityLog{
		ID:           uuid.New(),
		UserID:       userID,
		ActivityType: enums.ActivityEventAttend,
		PointsEarned: 10,
		Timestamp:    time.Now().UTC(),
	}
	svc := &stubEngagementService{activity: activity}
	handler := EngagementLogActivity(svc, nil)

	body := strings.NewReader(`{"user_id":"` + userID.String() + `","activity_type":"event_attend","points":10}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/engagement/activities", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if len(svc.logged) != 1 {
		t.Fatalf("expected one service call, got %d", len(svc.logged))
	}
	if svc.logged[0].ActivityType != enums.ActivityEventAttend {
		t.Fatalf("unexpected activity type: %s", svc.logged[0].ActivityType)
	}

	var envelope struct {
		Data activityResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PointsEarned != 10 {
		t.Fatalf("unexpected points: %d", envelope.Data.PointsEarned)
	}
}

func TestEngagementLogActivityRejectsUnknownType(t *testing.T) {
	userID := uuid.New()
	svc := &stubEngagementService{err: pkgerrors.New(pkgerrors.CodeValidation, "unknown activity type")}
	handler := EngagementLogActivity(svc, nil)

	body := strings.NewReader(`{"user_id":"` + userID.String() + `","activity_type":"levitating","points":5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/engagement/activities", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestEngagementLogActivityRejectsNegativePoints(t *testing.T) {
	userID := uuid.New()
	svc := &stubEngagementService{}
	handler := EngagementLogActivity(svc, nil)

	body := strings.NewReader(`{"user_id":"` + userID.String() + `","activity_type":"event_attend","points":-5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/engagement/activities", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(svc.logged) != 0 {
		t.Fatal("service should not be called on invalid payload")
	}
}

func TestEngagementUserStatsSuccess(t *testing.T) {
	svc := &stubEngagementService{stats: engagement.UserStatsDTO{
		TotalActivities:    7,
		TotalPoints:        120,
		ActiveGoals:        2,
		ParticipationLevel: enums.TierAttendee,
	}}
	handler := EngagementUserStats(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/engagement/stats?user_id="+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data engagement.UserStatsDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalPoints != 120 {
		t.Fatalf("unexpected total points: %d", envelope.Data.TotalPoints)
	}
	if envelope.Data.ParticipationLevel != enums.TierAttendee {
		t.Fatalf("unexpected level: %s", envelope.Data.ParticipationLevel)
	}
}

func TestEngagementUserStatsRequiresUserID(t *testing.T) {
	handler := EngagementUserStats(&stubEngagementService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/engagement/stats", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestEngagementLeaderboardDefaultsLimit(t *testing.T) {
	svc := &stubEngagementService{levels: []models.ParticipationLevel{
		{ID: uuid.New(), UserID: uuid.New(), Level: enums.TierOrganizer, Score: 300},
		{ID: uuid.New(), UserID: uuid.New(), Level: enums.TierAttendee, Score: 120},
	}}
	handler := EngagementLeaderboard(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/engagement/leaderboard", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	// No explicit limit: the service decides the default size.
	if len(svc.leaderboard) != 1 || svc.leaderboard[0] != 0 {
		t.Fatalf("expected passthrough limit 0, got %v", svc.leaderboard)
	}

	var envelope struct {
		Data []leaderboardEntryResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 entries got %d", len(envelope.Data))
	}
	if envelope.Data[0].Score != 300 {
		t.Fatalf("unexpected top score: %d", envelope.Data[0].Score)
	}
}

func TestEngagementLeaderboardRejectsOversizedLimit(t *testing.T) {
	handler := EngagementLeaderboard(&stubEngagementService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/engagement/leaderboard?limit=5000", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestEngagementCreateGoalSuccess(t *testing.T) {
	userID := uuid.New()
	goal := &models.EngagementGoal{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        "Attend five events",
		TargetPoints: 50,
		Status:       enums.GoalStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	handler := EngagementCreateGoal(&stubEngagementService{goal: goal}, nil)

	body := strings.NewReader(`{"user_id":"` + userID.String() + `","title":"Attend five events","target_points":50}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/engagement/goals", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data goalResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TargetPoints != 50 {
		t.Fatalf("unexpected target points: %d", envelope.Data.TargetPoints)
	}
	if envelope.Data.Status != string(enums.GoalStatusActive) {
		t.Fatalf("unexpected status: %s", envelope.Data.Status)
	}
}

func TestEngagementCreateGoalRejectsZeroTarget(t *testing.T) {
	handler := EngagementCreateGoal(&stubEngagementService{}, nil)

	body := strings.NewReader(`{"user_id":"` + uuid.NewString() + `","title":"No target","target_points":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/engagement/goals", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestEngagementGoalProgressSuccess(t *testing.T) {
	now := time.Now().UTC()
	goal := &models.EngagementGoal{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Title:         "Attend five events",
		TargetPoints:  50,
		CurrentPoints: 50,
		Status:        enums.GoalStatusCompleted,
		CreatedAt:     now.Add(-48 * time.Hour),
		CompletedAt:   &now,
	}
	handler := EngagementGoalProgress(&stubEngagementService{goal: goal}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/engagement/goals/"+goal.ID.String()+"/progress", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("goalId", goal.ID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data goalResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != string(enums.GoalStatusCompleted) {
		t.Fatalf("unexpected status: %s", envelope.Data.Status)
	}
	if envelope.Data.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
}

func TestEngagementGoalProgressInvalidID(t *testing.T) {
	handler := EngagementGoalProgress(&stubEngagementService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/engagement/goals/nope/progress", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("goalId", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestEngagementReportSuccess(t *testing.T) {
	svc := &stubEngagementService{report: engagement.ActivityReportDTO{
		Days:            30,
		TotalActivities: 42,
		UniqueMembers:   9,
		TotalPoints:     410,
		ByType: map[enums.ActivityType]int64{
			enums.ActivityEventAttend: 30,
		},
	}}
	handler := EngagementReport(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/engagement/report?days=30", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data engagement.ActivityReportDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.UniqueMembers != 9 {
		t.Fatalf("unexpected unique members: %d", envelope.Data.UniqueMembers)
	}
}

func TestEngagementReportRejectsOversizedWindow(t *testing.T) {
	handler := EngagementReport(&stubEngagementService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/engagement/report?days=800", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
