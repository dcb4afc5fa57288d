package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type runFunc func(ctx context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRunnerNamedErrors(t *testing.T) {
	boom := errors.New("boom")
	r := NewRunner()
	r.Go(NamedRun("worker", runFunc(func(context.Context) error { return boom })))
	r.Go(runFunc(func(context.Context) error { return nil }))

	err := r.Wait()
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "worker")
}

func TestRunnerCancellationIsNotFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx)
	r.Go(runFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, r.Wait())
}

func TestAggregatedError(t *testing.T) {
	var e AggregatedError
	require.NoError(t, e.Aggregate())

	one := errors.New("one")
	e.Add(nil, one)
	// a single collected error comes back as itself
	require.Equal(t, one, e.Aggregate())

	e.AddNamed("src", errors.New("two"))
	err := e.Aggregate()
	require.ErrorIs(t, err, one)
	require.Contains(t, err.Error(), "2 errors")
	require.Contains(t, err.Error(), "src: two")
}
