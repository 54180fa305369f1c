package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/store"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/logger"
)

const (
	defaultRetention = 24 * time.Hour
	defaultSchedule  = "@hourly"
)

// Cleaner purges ended sessions from the store once their retention window
// has passed. Ended sessions stay readable by id until then so that late
// analytics or debugging reads still work without any external persistence.
type Cleaner struct {
	sessions  *store.SessionStore
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention time.Duration
	schedule  string
	entryID   cron.EntryID
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetention adjusts how long ended sessions stay readable.
func WithRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.retention = retention
		}
	}
}

// WithSchedule overrides the cron specification for the purge sweep.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner for the supplied store.
func NewCleaner(sessions *store.SessionStore, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:  sessions,
		cron:      cron.New(),
		now:       time.Now,
		log:       logger.WithModule("maintenance"),
		retention: defaultRetention,
		schedule:  defaultSchedule,
	}
	for _, opt := range opts {
		opt(cleaner)
	}
	return cleaner
}

// Start registers the purge job and starts the scheduler.
func (c *Cleaner) Start() error {
	if c.sessions == nil {
		return errors.New("maintenance: session store is required")
	}

	id, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("session purge sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("maintenance: schedule purge job: %w", err)
	}
	c.entryID = id

	c.cron.Start()
	c.log.Info("maintenance jobs started",
		zap.String("schedule", c.schedule),
		zap.Duration("retention", c.retention),
	)
	return nil
}

// Stop halts the scheduler and returns a context that completes once any
// in-flight job finishes.
func (c *Cleaner) Stop() context.Context {
	return c.cron.Stop()
}

// RunOnce purges every ended session whose retention window has elapsed.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if c.sessions == nil {
		return errors.New("maintenance: session store is required")
	}

	threshold := c.now().Add(-c.retention)
	var errs error
	purged := 0

	for _, session := range c.sessions.List() {
		select {
		case <-ctx.Done():
			return multierr.Append(errs, ctx.Err())
		default:
		}

		if session.Status != models.SessionStatusEnded {
			continue
		}
		if session.EndedAt == nil || session.EndedAt.After(threshold) {
			continue
		}

		c.sessions.Delete(session.ID)
		logger.WithSession("maintenance", session.ID).Debug("purged ended session")
		purged++
	}

	if purged > 0 {
		c.log.Info("purged ended sessions", zap.Int("count", purged))
	}
	return errs
}
