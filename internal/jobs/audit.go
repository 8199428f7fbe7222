package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/baechuer/esemenyrendezo/internal/domain"
	"github.com/baechuer/esemenyrendezo/internal/metrics"
)

// DanglingSource lists saved relations whose event is gone.
type DanglingSource interface {
	DanglingRelations(ctx context.Context) ([]domain.RelationKey, error)
}

// sampleSize caps how many dangling keys one run logs.
const sampleSize = 20

// Auditor reports dangling saved relations. It never deletes them: cleanup
// stays with the user's own unsave.
type Auditor struct {
	src     DanglingSource
	log     zerolog.Logger
	timeout time.Duration
}

func NewAuditor(src DanglingSource, log zerolog.Logger) *Auditor {
	return &Auditor{src: src, log: log, timeout: 30 * time.Second}
}

// RunOnce counts dangling relations and records the gauge.
func (a *Auditor) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	keys, err := a.src.DanglingRelations(ctx)
	metrics.RecordAudit(len(keys), err)
	if err != nil {
		a.log.Error().Err(err).Msg("dangling relation audit failed")
		return 0, err
	}

	if len(keys) == 0 {
		a.log.Info().Msg("no dangling saved relations")
		return 0, nil
	}
	sample := keys
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	arr := zerolog.Arr()
	for _, k := range sample {
		arr.Str(k.String())
	}
	a.log.Warn().Int("count", len(keys)).Array("sample", arr).Msg("dangling saved relations found")
	return len(keys), nil
}

// Scheduler runs the auditor on a cron spec until ctx is done.
type Scheduler struct {
	c *cron.Cron
}

func NewScheduler(spec string, a *Auditor, log zerolog.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() {
		_, _ = a.RunOnce(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("invalid AUDIT_CRON %q: %w", spec, err)
	}
	log.Info().Str("spec", spec).Msg("audit job scheduled")
	return &Scheduler{c: c}, nil
}

// Run blocks until ctx is canceled, then waits for a running audit to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.c.Start()
	<-ctx.Done()
	<-s.c.Stop().Done()
}
