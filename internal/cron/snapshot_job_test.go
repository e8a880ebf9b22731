package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/ddsc-labs/community-backend/pkg/db/models"
	pkgerrors "github.com/ddsc-labs/community-backend/pkg/errors"
	"github.com/ddsc-labs/community-backend/pkg/logger"
)

type fakeSnapshotCreator struct {
	trend *models.EngagementTrend
	err   error
	calls int
}

func (f *fakeSnapshotCreator) CreateDailySnapshot(context.Context) (*models.EngagementTrend, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.trend, nil
}

func newSnapshotJob(t *testing.T, creator *fakeSnapshotCreator) *SnapshotJob {
	t.Helper()
	job, err := NewSnapshotJob(creator, logger.New(logger.Options{ServiceName: "cron-test"}))
	if err != nil {
		t.Fatalf("NewSnapshotJob: %v", err)
	}
	return job
}

func TestSnapshotJobRecordsTrend(t *testing.T) {
	creator := &fakeSnapshotCreator{
		trend: &models.EngagementTrend{
			Date:            "2026-08-30",
			TotalActivities: 12,
			ActiveMembers:   4,
			AverageScore:    17.5,
		},
	}
	job := newSnapshotJob(t, creator)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if creator.calls != 1 {
		t.Fatalf("expected one snapshot attempt, got %d", creator.calls)
	}
}

func TestSnapshotJobTreatsExistingSnapshotAsSuccess(t *testing.T) {
	creator := &fakeSnapshotCreator{
		err: pkgerrors.New(pkgerrors.CodeConflict, "snapshot already exists for date"),
	}
	job := newSnapshotJob(t, creator)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected conflict treated as success, got %v", err)
	}
}

func TestSnapshotJobPropagatesOtherErrors(t *testing.T) {
	creator := &fakeSnapshotCreator{err: errors.New("db unavailable")}
	job := newSnapshotJob(t, creator)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSnapshotJobName(t *testing.T) {
	job := newSnapshotJob(t, &fakeSnapshotCreator{trend: &models.EngagementTrend{}})
	if job.Name() != "engagement-daily-snapshot" {
		t.Fatalf("unexpected name %q", job.Name())
	}
}
