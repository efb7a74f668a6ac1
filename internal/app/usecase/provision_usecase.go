// Package usecase provides the one-shot data provisioning logic.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/config"
	"github.com/whhaicheng/DB-Showdown/internal/domain/dataset"
)

// LoadStats describes the load of one backend.
type LoadStats struct {
	Backend benchmark.BackendID
	Rows    int64
	Elapsed time.Duration
}

// ProvisionUseCase generates the synthetic orders and bulk-loads them into
// every backend, dropping and recreating the Orders table each time.
type ProvisionUseCase struct {
	loaders []Loader
	cfg     config.ProvisionConfig
}

// NewProvisionUseCase creates a provisioning use case. Loaders run in the order given.
func NewProvisionUseCase(cfg config.ProvisionConfig, loaders ...Loader) (*ProvisionUseCase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate provision config: %w", err)
	}
	if len(loaders) == 0 {
		return nil, errors.New("at least one loader is required")
	}
	return &ProvisionUseCase{loaders: loaders, cfg: cfg}, nil
}

// Run provisions every backend in turn. All backends receive the same rows.
// Any failure, including an exhausted wait budget, is a provisioning error.
func (uc *ProvisionUseCase) Run(ctx context.Context) ([]LoadStats, error) {
	seed := uc.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	slog.Info("Provision: Starting data load", "rows", uc.cfg.Rows, "chunk_size", uc.cfg.ChunkSize)

	stats := make([]LoadStats, 0, len(uc.loaders))
	for _, l := range uc.loaders {
		s, err := uc.provision(ctx, l, seed)
		if err != nil {
			slog.Error("Provision: Failed", "backend", l.Backend(), "error", err)
			return stats, err
		}
		slog.Info("Provision: Load complete",
			"backend", s.Backend,
			"rows", s.Rows,
			"elapsed", s.Elapsed.Round(10*time.Millisecond))
		stats = append(stats, s)
	}
	return stats, nil
}

func (uc *ProvisionUseCase) provision(ctx context.Context, l Loader, seed int64) (LoadStats, error) {
	backend := l.Backend()

	if err := uc.WaitReady(ctx, l); err != nil {
		return LoadStats{}, err
	}

	if err := l.Recreate(ctx); err != nil {
		return LoadStats{}, benchmark.NewProvisioningError(backend, "recreate schema", err)
	}

	gen := dataset.NewGenerator(uc.cfg.Rows, seed)
	start := time.Now()
	for {
		chunk := gen.NextChunk(uc.cfg.ChunkSize)
		if chunk == nil {
			break
		}
		if err := l.LoadChunk(ctx, chunk); err != nil {
			op := fmt.Sprintf("load rows %d-%d", chunk[0].OrderID, chunk[len(chunk)-1].OrderID)
			return LoadStats{}, benchmark.NewProvisioningError(backend, op, err)
		}
		slog.Debug("Provision: Chunk loaded", "backend", backend, "remaining", gen.Remaining())
	}

	return LoadStats{Backend: backend, Rows: gen.Total(), Elapsed: time.Since(start)}, nil
}

// WaitReady pings l until it answers, with WaitAttempts tries spaced by a
// fixed WaitDelay. Exhausting the budget is a provisioning error.
func (uc *ProvisionUseCase) WaitReady(ctx context.Context, l Loader) error {
	backend := l.Backend()
	err := retry.Do(
		func() error {
			return l.Ping(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(uc.cfg.WaitAttempts),
		retry.Delay(uc.cfg.WaitDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Provision: Waiting for backend", "backend", backend, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return benchmark.NewProvisioningError(backend, fmt.Sprintf("wait ready (%d attempts)", uc.cfg.WaitAttempts), err)
	}
	return nil
}
