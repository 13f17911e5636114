package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/easyukapp/easyuk-backend/internal/marketplace"
	"github.com/easyukapp/easyuk-backend/pkg/logger"
)

// trialExpirer runs the marketplace expiry sweep.
type trialExpirer interface {
	ExpireTrials(ctx context.Context, now time.Time) (marketplace.SweepResult, error)
}

// TrialExpiryJobParams configures the trial expiry sweep job.
type TrialExpiryJobParams struct {
	Logger      *logger.Logger
	Marketplace trialExpirer
	Now         func() time.Time
}

// NewTrialExpiryJob constructs the job that cancels unpaid expired trials.
func NewTrialExpiryJob(params TrialExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Marketplace == nil {
		return nil, fmt.Errorf("marketplace service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &trialExpiryJob{
		logg:        params.Logger,
		marketplace: params.Marketplace,
		now:         now,
	}, nil
}

type trialExpiryJob struct {
	logg        *logger.Logger
	marketplace trialExpirer
	now         func() time.Time
}

func (j *trialExpiryJob) Name() string { return "trial-expiry-sweep" }

func (j *trialExpiryJob) Run(ctx context.Context) error {
	result, err := j.marketplace.ExpireTrials(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("expire trials: %w", err)
	}
	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"inspected": result.Inspected,
		"cancelled": result.Cancelled,
		"skipped":   result.Skipped,
	})
	j.logg.Info(reportCtx, "trial expiry sweep complete")
	return nil
}
