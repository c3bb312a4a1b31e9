package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type runner interface {
	Run(ctx context.Context) error
}

type dependency struct {
	name   string
	pinger pinger
}

type ServiceParams struct {
	Logger       *logger.Logger
	Dependencies map[string]pinger
	Consumers    map[string]runner
}

// Service runs the notification consumers until one of them fails or the
// context ends.
type Service struct {
	logg      *logger.Logger
	deps      []dependency
	consumers map[string]runner
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if len(params.Consumers) == 0 {
		return nil, errors.New("at least one consumer is required")
	}
	deps := make([]dependency, 0, len(params.Dependencies))
	for name, p := range params.Dependencies {
		if p == nil {
			return nil, fmt.Errorf("%s client is required", name)
		}
		deps = append(deps, dependency{name: name, pinger: p})
	}
	for name, c := range params.Consumers {
		if c == nil {
			return nil, fmt.Errorf("%s consumer is required", name)
		}
	}
	return &Service{
		logg:      params.Logger,
		deps:      deps,
		consumers: params.Consumers,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	for _, dep := range s.deps {
		if err := dep.pinger.Ping(ctx); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("%s ping failed", dep.name), err)
			return fmt.Errorf("%s ping failed: %w", dep.name, err)
		}
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

// Run blocks until every consumer has returned. The first consumer to fail
// cancels the others; all non-cancellation errors are combined.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		name string
		err  error
	}
	results := make(chan result, len(s.consumers))
	for name, consumer := range s.consumers {
		go func(name string, consumer runner) {
			s.logg.Info(s.logg.WithField(runCtx, "consumer", name), "consumer started")
			results <- result{name: name, err: consumer.Run(runCtx)}
		}(name, consumer)
	}

	var errs error
	for range s.consumers {
		res := <-results
		if res.err != nil && !errors.Is(res.err, context.Canceled) {
			s.logg.Error(s.logg.WithField(ctx, "consumer", res.name), "consumer stopped unexpectedly", res.err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", res.name, res.err))
		}
		// a consumer that returns early takes the rest down with it
		cancel()
	}

	if errs != nil {
		return errs
	}
	return ctx.Err()
}
