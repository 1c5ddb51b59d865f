// Package scheduler wires up the cron job that periodically imports
// internships from the job board.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jobmate/review-service/internal/internship"
)

// Importer runs one import cycle.
type Importer interface {
	Run(ctx context.Context) (internship.ImportStats, error)
}

// Scheduler wraps robfig/cron and manages the import loop.
type Scheduler struct {
	cron     *cron.Cron
	importer Importer
	spec     string // cron spec, e.g. "@every 6h"
	log      *zap.Logger
	wg       sync.WaitGroup
}

// New creates a Scheduler that fires every intervalHours hours. A cycle that
// is still running when the next tick arrives makes that tick a no-op.
func New(importer Importer, intervalHours int, log *zap.Logger) *Scheduler {
	return NewWithSpec(importer, fmt.Sprintf("@every %dh", intervalHours), log)
}

// NewWithSpec creates a Scheduler from a raw cron spec.
func NewWithSpec(importer Importer, spec string, log *zap.Logger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		importer: importer,
		spec:     spec,
		log:      log,
	}
}

// Start registers the job and starts the scheduler. Also runs one import
// immediately so the catalog is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runImport(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("cron started", zap.String("spec", s.spec))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runImport(ctx)
	}()
	return nil
}

// Run starts the scheduler and blocks until ctx is cancelled, then stops it.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop halts the scheduler and waits for running cycles to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("cron stopped")
}

func (s *Scheduler) runImport(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.importer.Run(ctx); err != nil {
		s.log.Warn("import cycle aborted", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ log *zap.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
