package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Run Creation Tests
// =============================================================================

func TestNewRun_Defaults(t *testing.T) {
	run := NewRun("devstack", "dev", []string{"api"}, true)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "devstack", run.Cluster)
	assert.Equal(t, "dev", run.Namespace)
	assert.Equal(t, []string{"api"}, run.RealServices)
	assert.True(t, run.Seed)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.NotZero(t, run.StartedAt)
	assert.Nil(t, run.FinishedAt)
	assert.False(t, run.Finished())
}

func TestNewRun_UniqueIDs(t *testing.T) {
	run1 := NewRun("devstack", "dev", nil, false)
	run2 := NewRun("devstack", "dev", nil, false)

	assert.NotEqual(t, run1.ID, run2.ID)
}

// =============================================================================
// Run Completion Tests
// =============================================================================

func TestRun_Complete_Success(t *testing.T) {
	run := NewRun("devstack", "dev", nil, false)

	err := run.Complete(nil)
	require.NoError(t, err)

	assert.Equal(t, RunStatusSucceeded, run.Status)
	assert.Empty(t, run.ErrorMessage)
	require.NotNil(t, run.FinishedAt)
	assert.True(t, run.Finished())
}

func TestRun_Complete_Failure(t *testing.T) {
	run := NewRun("devstack", "dev", nil, false)

	err := run.Complete(errors.New("helm exploded"))
	require.NoError(t, err)

	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, "helm exploded", run.ErrorMessage)
	assert.True(t, run.Finished())
}

func TestRun_Complete_AlreadyFinished(t *testing.T) {
	run := NewRun("devstack", "dev", nil, false)
	require.NoError(t, run.Complete(nil))

	err := run.Complete(errors.New("too late"))
	assert.ErrorIs(t, err, ErrRunFinished)
	assert.Equal(t, RunStatusSucceeded, run.Status)
}

func TestRun_Duration_Finished(t *testing.T) {
	run := NewRun("devstack", "dev", nil, false)
	require.NoError(t, run.Complete(nil))

	assert.GreaterOrEqual(t, run.Duration().Nanoseconds(), int64(0))
	assert.Equal(t, run.FinishedAt.Sub(run.StartedAt), run.Duration())
}

// =============================================================================
// Status Transition Tests
// =============================================================================

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    RunStatus
		to      RunStatus
		wantErr bool
	}{
		{"running to succeeded", RunStatusRunning, RunStatusSucceeded, false},
		{"running to failed", RunStatusRunning, RunStatusFailed, false},
		{"succeeded is terminal", RunStatusSucceeded, RunStatusFailed, true},
		{"failed is terminal", RunStatusFailed, RunStatusSucceeded, true},
		{"unknown status", RunStatus("bogus"), RunStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
