// Package scheduler runs the periodic jobs of the API process.
package scheduler

import (
	"context"
	"time"

	"github.com/hoteza-pos/api/internal/domain"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RolloverSpec fires at local midnight.
const RolloverSpec = "0 0 * * *"

// Roller resets the daily order counter when the calendar day changed.
type Roller interface {
	RolloverIfNewDay(ctx context.Context, current domain.DateOnly) (bool, error)
}

type Scheduler struct {
	cron   *cron.Cron
	roller Roller
	today  func() domain.DateOnly
	log    *zap.SugaredLogger
}

// New builds a scheduler whose jobs run in loc. today reports the current
// calendar day in the same location.
func New(loc *time.Location, roller Roller, today func() domain.DateOnly, log *zap.SugaredLogger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		roller: roller,
		today:  today,
		log:    log,
	}
	if _, err := s.cron.AddFunc(RolloverSpec, func() { s.Rollover(context.Background()) }); err != nil {
		return nil, err
	}
	return s, nil
}

// Rollover runs the quota reset once. Failures are logged; the next run
// retries.
func (s *Scheduler) Rollover(ctx context.Context) {
	today := s.today()
	rolled, err := s.roller.RolloverIfNewDay(ctx, today)
	if err != nil {
		s.log.Errorw("daily rollover failed", "date", today.String(), "error", err)
		return
	}
	if rolled {
		s.log.Infow("daily order counter reset", "date", today.String())
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the cron loop and waits for a running job to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Entries lists the next run time of each job.
func (s *Scheduler) Entries() []time.Time {
	var next []time.Time
	for _, e := range s.cron.Entries() {
		next = append(next, e.Next)
	}
	return next
}
