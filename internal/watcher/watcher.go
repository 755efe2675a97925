// Package watcher runs the organizer on a fixed interval until cancelled.
package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/kno2gether/screenshot-organizer/internal/organizer"
)

// Service polls a screenshot directory and organizes whatever has appeared
// since the last cycle.
type Service struct {
	processor *organizer.Processor
	dir       string
	interval  time.Duration
	logger    *slog.Logger
}

// NewService creates a watch service over dir.
func NewService(p *organizer.Processor, dir string, interval time.Duration, logger *slog.Logger) *Service {
	return &Service{
		processor: p,
		dir:       dir,
		interval:  interval,
		logger:    logger,
	}
}

// Run blocks until the context is cancelled. The first cycle runs
// immediately; a bad directory on any cycle stops the service since there is
// nothing left to watch.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("starting watch", "dir", s.dir, "interval", s.interval)

	if err := s.cycle(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watch stopped")
			return nil
		case <-ticker.C:
			if err := s.cycle(ctx); err != nil {
				if organizer.IsFatal(err) {
					return err
				}
				s.logger.Error("watch cycle failed", "err", err)
			}
		}
	}
}

func (s *Service) cycle(ctx context.Context) error {
	_, err := s.processor.Run(ctx, s.dir)
	return err
}
