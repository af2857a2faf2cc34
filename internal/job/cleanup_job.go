package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hoainiem-portal/internal/auth"
)

const cleanupTimeout = 30 * time.Second

// Sweepable drops the state it holds that was not used for idle
type Sweepable interface {
	Sweep(idle time.Duration) int
}

type sweepTarget struct {
	name string
	s    Sweepable
}

// CleanupJob expires idle sessions and drops the gateway state nobody has
// used for a while: open article feeds, thread view-models and cached threads
type CleanupJob struct {
	tokens      auth.TokenStore
	sessionIdle time.Duration
	stateIdle   time.Duration
	targets     []sweepTarget
	logger      *zap.Logger
}

// NewCleanupJob creates a new CleanupJob instance. A zero sessionIdle keeps
// sessions until they are rejected by the platform.
func NewCleanupJob(tokens auth.TokenStore, sessionIdle, stateIdle time.Duration, logger *zap.Logger) *CleanupJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupJob{
		tokens:      tokens,
		sessionIdle: sessionIdle,
		stateIdle:   stateIdle,
		logger:      logger,
	}
}

// Track adds a sweep target. name labels it in the logs.
func (j *CleanupJob) Track(name string, s Sweepable) *CleanupJob {
	j.targets = append(j.targets, sweepTarget{name: name, s: s})
	return j
}

// Run executes the cleanup job. It implements cron.Job.
func (j *CleanupJob) Run() {
	j.logger.Debug("Starting cleanup job")

	fields := make([]zap.Field, 0, len(j.targets)+1)
	if j.tokens != nil && j.sessionIdle > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		expired, err := j.tokens.ExpireIdle(ctx, j.sessionIdle)
		cancel()
		if err != nil {
			j.logger.Error("Failed to expire idle sessions", zap.Error(err))
		}
		fields = append(fields, zap.Int("sessions", expired))
	}

	total := 0
	for _, t := range j.targets {
		n := t.s.Sweep(j.stateIdle)
		total += n
		fields = append(fields, zap.Int(t.name, n))
	}

	if total == 0 {
		j.logger.Debug("Cleanup job completed, nothing idle", fields...)
		return
	}
	j.logger.Info("Cleanup job completed", fields...)
}
