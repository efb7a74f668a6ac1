package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/config"
	"github.com/whhaicheng/DB-Showdown/internal/domain/dataset"
)

// fakeLoader records what it is asked to load.
type fakeLoader struct {
	backend benchmark.BackendID

	pingFailures int // Pings that fail before the first success
	pings        int
	recreateErr  error
	loadErr      error
	recreated    int
	chunks       []int
	firstIDs     []int32
	amounts      []string
}

func (l *fakeLoader) Backend() benchmark.BackendID { return l.backend }

func (l *fakeLoader) Ping(ctx context.Context) error {
	l.pings++
	if l.pings <= l.pingFailures {
		return errors.New("connection refused")
	}
	return nil
}

func (l *fakeLoader) Recreate(ctx context.Context) error {
	if l.recreateErr != nil {
		return l.recreateErr
	}
	l.recreated++
	return nil
}

func (l *fakeLoader) LoadChunk(ctx context.Context, orders []dataset.Order) error {
	if l.loadErr != nil {
		return l.loadErr
	}
	l.chunks = append(l.chunks, len(orders))
	l.firstIDs = append(l.firstIDs, orders[0].OrderID)
	for _, o := range orders {
		l.amounts = append(l.amounts, o.Amount.StringFixed(2))
	}
	return nil
}

func (l *fakeLoader) Close() error { return nil }

func testProvisionConfig() config.ProvisionConfig {
	return config.ProvisionConfig{
		Rows:         25,
		ChunkSize:    10,
		WaitAttempts: 3,
		WaitDelay:    time.Millisecond,
		Seed:         7,
	}
}

func TestProvisionUseCase_Run(t *testing.T) {
	ms := &fakeLoader{backend: benchmark.BackendSQLServer, pingFailures: 2}
	ch := &fakeLoader{backend: benchmark.BackendClickHouse}

	uc, err := NewProvisionUseCase(testProvisionConfig(), ms, ch)
	require.NoError(t, err)

	stats, err := uc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, benchmark.BackendSQLServer, stats[0].Backend)
	assert.Equal(t, int64(25), stats[0].Rows)

	assert.Equal(t, 3, ms.pings, "two failures then a success")
	for _, l := range []*fakeLoader{ms, ch} {
		assert.Equal(t, 1, l.recreated)
		assert.Equal(t, []int{10, 10, 5}, l.chunks)
		assert.Equal(t, []int32{1, 11, 21}, l.firstIDs)
	}
	assert.Equal(t, ms.amounts, ch.amounts, "both backends receive the same rows")
}

func TestProvisionUseCase_Failures(t *testing.T) {
	tests := []struct {
		name   string
		loader *fakeLoader
		wantOp string
	}{
		{
			name:   "wait budget exhausted",
			loader: &fakeLoader{backend: benchmark.BackendSQLServer, pingFailures: 100},
			wantOp: "wait ready",
		},
		{
			name:   "schema failure",
			loader: &fakeLoader{backend: benchmark.BackendSQLServer, recreateErr: errors.New("permission denied")},
			wantOp: "recreate schema",
		},
		{
			name:   "load failure",
			loader: &fakeLoader{backend: benchmark.BackendSQLServer, loadErr: errors.New("disk full")},
			wantOp: "load rows 1-10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &fakeLoader{backend: benchmark.BackendClickHouse}
			uc, err := NewProvisionUseCase(testProvisionConfig(), tt.loader, next)
			require.NoError(t, err)

			_, err = uc.Run(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, benchmark.ErrProvisioning)
			assert.Contains(t, err.Error(), tt.wantOp)
			assert.Zero(t, next.pings, "later backends are not touched")
		})
	}
}

func TestProvisionUseCase_WaitBudget(t *testing.T) {
	l := &fakeLoader{backend: benchmark.BackendClickHouse, pingFailures: 100}
	uc, err := NewProvisionUseCase(testProvisionConfig(), l)
	require.NoError(t, err)

	err = uc.WaitReady(context.Background(), l)
	require.Error(t, err)
	assert.Equal(t, 3, l.pings)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewProvisionUseCase_Validation(t *testing.T) {
	_, err := NewProvisionUseCase(testProvisionConfig())
	assert.Error(t, err)

	bad := testProvisionConfig()
	bad.ChunkSize = 0
	_, err = NewProvisionUseCase(bad, &fakeLoader{})
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)
}
