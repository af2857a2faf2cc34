package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/service"
)

const sessionCheckTimeout = 30 * time.Second

// StatusChecker asks the platform whether the stored token is still valid
type StatusChecker interface {
	CheckStatus(ctx context.Context) (bool, error)
}

var _ StatusChecker = (service.AuthService)(nil)

// SessionKeeper drops stored sessions once they are no longer valid
type SessionKeeper struct {
	tokens  auth.TokenStore
	checker StatusChecker
	logger  *zap.Logger
	now     func() time.Time
}

// NewSessionKeeper creates a new SessionKeeper instance
func NewSessionKeeper(tokens auth.TokenStore, checker StatusChecker, logger *zap.Logger) *SessionKeeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionKeeper{
		tokens:  tokens,
		checker: checker,
		logger:  logger,
		now:     time.Now,
	}
}

// Run checks every known session. It implements cron.Job.
func (j *SessionKeeper) Run() {
	cleared := 0
	for _, id := range j.tokens.SessionIDs() {
		if j.runOne(id) {
			cleared++
		}
	}
	if cleared > 0 {
		j.logger.Info("Session check completed", zap.Int("cleared", cleared))
	}
}

func (j *SessionKeeper) runOne(id string) bool {
	ctx, cancel := context.WithTimeout(auth.WithSessionID(context.Background(), id), sessionCheckTimeout)
	defer cancel()

	cleared, err := j.Check(ctx)
	if err != nil {
		j.logger.Warn("Session check failed", zap.String("session_id", id), zap.Error(err))
	}
	return cleared
}

// Check clears the session of ctx when its token has expired or when the
// platform explicitly reports it unauthenticated. Errors never clear it.
func (j *SessionKeeper) Check(ctx context.Context) (bool, error) {
	session, err := j.tokens.Get(ctx)
	if err != nil {
		return false, err
	}
	if !session.Authenticated() {
		return false, nil
	}

	if session.Expired(j.now()) {
		j.logger.Info("Stored token expired, clearing session",
			zap.String("user_id", session.UserID),
			zap.Timep("expires_at", session.ExpiresAt),
		)
		return true, j.tokens.Clear(ctx)
	}

	ok, err := j.checker.CheckStatus(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		j.logger.Debug("Stored session still valid", zap.String("user_id", session.UserID))
		return false, nil
	}

	j.logger.Info("Platform rejected stored token, clearing session", zap.String("user_id", session.UserID))
	return true, j.tokens.Clear(ctx)
}

// Schedule pairs a job with its cron spec
type Schedule struct {
	Name string
	Spec string
	Job  cron.Job
}

// NewScheduler registers every job on a cron scheduler. The caller starts and
// stops the scheduler.
func NewScheduler(logger *zap.Logger, schedules ...Schedule) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})))
	for _, s := range schedules {
		if _, err := c.AddJob(s.Spec, s.Job); err != nil {
			return nil, fmt.Errorf("invalid %s schedule %q: %w", s.Name, s.Spec, err)
		}
	}
	return c, nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
