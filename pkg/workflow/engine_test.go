package workflow_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/dukex/conduit/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWorkflow fails the first failures attempts, then succeeds.
type fakeWorkflow struct {
	failures     int
	attempts     int
	valid        bool
	cleanupCalls int
	output       map[string]any
}

func (f *fakeWorkflow) Validate(_ context.Context, _ map[string]any) bool {
	return f.valid
}

func (f *fakeWorkflow) Process(_ context.Context, _ map[string]any) (map[string]any, error) {
	f.attempts++
	if f.attempts <= f.failures {
		return nil, errors.New("transient failure")
	}

	return f.output, nil
}

func (f *fakeWorkflow) Cleanup(_ context.Context) error {
	f.cleanupCalls++

	return nil
}

func testEngine() *workflow.Engine {
	return workflow.NewEngine(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func TestEngineSuccessFirstAttempt(t *testing.T) {
	t.Parallel()

	wf := &fakeWorkflow{valid: true, output: map[string]any{"ok": true}}
	cfg := workflow.Config{Name: "demo", MaxRetries: 3, Enabled: true}

	result := testEngine().Execute(context.Background(), wf, cfg, map[string]any{"in": 1})

	assert.True(t, result.Success)
	assert.Equal(t, map[string]any{"ok": true}, result.Data)
	assert.Empty(t, result.Error)
	assert.Equal(t, 1, wf.attempts)
	assert.GreaterOrEqual(t, result.ExecutionTime, 0.0)
}

func TestEngineRetryBound(t *testing.T) {
	t.Parallel()

	// A workflow that always fails runs exactly maxRetries+1 attempts.
	wf := &fakeWorkflow{valid: true, failures: 100}
	cfg := workflow.Config{Name: "demo", MaxRetries: 3, Enabled: true}

	result := testEngine().Execute(context.Background(), wf, cfg, nil)

	assert.False(t, result.Success)
	assert.Equal(t, "transient failure", result.Error)
	assert.Nil(t, result.Data)
	assert.Equal(t, 4, wf.attempts)
}

func TestEngineRetryThenSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		failures int
	}{
		{name: "one retry", failures: 1},
		{name: "two retries", failures: 2},
		{name: "all retries consumed", failures: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wf := &fakeWorkflow{valid: true, failures: tt.failures, output: map[string]any{"done": true}}
			cfg := workflow.Config{Name: "demo", MaxRetries: 3, Enabled: true}

			result := testEngine().Execute(context.Background(), wf, cfg, nil)

			require.True(t, result.Success)
			assert.Equal(t, map[string]any{"done": true}, result.Data)
			assert.Empty(t, result.Error)
			assert.Equal(t, tt.failures+1, wf.attempts)
		})
	}
}

func TestEngineResultMutualExclusivity(t *testing.T) {
	t.Parallel()

	success := testEngine().Execute(context.Background(),
		&fakeWorkflow{valid: true, output: map[string]any{"v": 1}},
		workflow.Config{Name: "demo", MaxRetries: 0}, nil)
	require.True(t, success.Success)
	assert.NotNil(t, success.Data)
	assert.Empty(t, success.Error)

	failure := testEngine().Execute(context.Background(),
		&fakeWorkflow{valid: true, failures: 10},
		workflow.Config{Name: "demo", MaxRetries: 0}, nil)
	require.False(t, failure.Success)
	assert.Nil(t, failure.Data)
	assert.NotEmpty(t, failure.Error)
}

func TestEngineValidationFailureSkipsProcess(t *testing.T) {
	t.Parallel()

	wf := &fakeWorkflow{valid: false}
	cfg := workflow.Config{Name: "demo", MaxRetries: 3, Enabled: true}

	result := testEngine().Execute(context.Background(), wf, cfg, map[string]any{"broken": true})

	assert.False(t, result.Success)
	assert.Equal(t, "input validation failed", result.Error)
	assert.Zero(t, wf.attempts, "process must not run on rejected input")
}

func TestEngineNegativeMaxRetriesUsesDefault(t *testing.T) {
	t.Parallel()

	wf := &fakeWorkflow{valid: true, failures: 100}
	cfg := workflow.Config{Name: "demo", MaxRetries: -1}

	result := testEngine().Execute(context.Background(), wf, cfg, nil)

	assert.False(t, result.Success)
	assert.Equal(t, workflow.DefaultMaxRetries+1, wf.attempts)
}

func TestEngineContextCancellationStopsRetries(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wf := &fakeWorkflow{valid: true, failures: 100}
	cfg := workflow.Config{Name: "demo", MaxRetries: 3}

	result := testEngine().Execute(ctx, wf, cfg, nil)

	assert.False(t, result.Success)
	assert.Zero(t, wf.attempts)
	assert.Contains(t, result.Error, "context canceled")
}
