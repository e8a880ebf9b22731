package cron

import (
	"context"
	"fmt"

	"github.com/ddsc-labs/community-backend/pkg/db/models"
	pkgerrors "github.com/ddsc-labs/community-backend/pkg/errors"
	"github.com/ddsc-labs/community-backend/pkg/logger"
)

// snapshotCreator is the slice of the engagement service the job needs.
type snapshotCreator interface {
	CreateDailySnapshot(ctx context.Context) (*models.EngagementTrend, error)
}

// SnapshotJob rolls up the previous day's engagement activity into a
// single trend row. Re-running on a day that already has a snapshot is
// a no-op, so the job stays safe to retry.
type SnapshotJob struct {
	engagement snapshotCreator
	logg       *logger.Logger
}

// NewSnapshotJob builds the daily snapshot job.
func NewSnapshotJob(engagement snapshotCreator, logg *logger.Logger) (*SnapshotJob, error) {
	if engagement == nil {
		return nil, fmt.Errorf("engagement service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &SnapshotJob{engagement: engagement, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *SnapshotJob) Name() string {
	return "engagement-daily-snapshot"
}

// Run creates today's snapshot, treating an existing snapshot as success.
func (j *SnapshotJob) Run(ctx context.Context) error {
	trend, err := j.engagement.CreateDailySnapshot(ctx)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			j.logg.Info(ctx, "snapshot already recorded for today; skipping")
			return nil
		}
		return err
	}
	fields := j.logg.WithFields(ctx, map[string]any{
		"snapshot_date":    trend.Date,
		"total_activities": trend.TotalActivities,
		"active_members":   trend.ActiveMembers,
	})
	j.logg.Info(fields, "daily snapshot recorded")
	return nil
}
