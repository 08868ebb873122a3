package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadinessTransition(t *testing.T) {
	tests := []struct {
		name      string
		initial   string
		target    string
		wantErr   error
		wantPhase string
	}{
		{
			name:      "initializing to loading",
			initial:   PhaseInitializing,
			target:    PhaseLoading,
			wantPhase: PhaseLoading,
		},
		{
			name:      "loading to ready",
			initial:   PhaseLoading,
			target:    PhaseReady,
			wantPhase: PhaseReady,
		},
		{
			name:      "loading to error",
			initial:   PhaseLoading,
			target:    PhaseError,
			wantPhase: PhaseError,
		},
		{
			name:      "error retry to loading",
			initial:   PhaseError,
			target:    PhaseLoading,
			wantPhase: PhaseLoading,
		},
		{
			name:    "initializing straight to ready rejected",
			initial: PhaseInitializing,
			target:  PhaseReady,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "ready to error rejected",
			initial: PhaseReady,
			target:  PhaseError,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "ready to loading rejected",
			initial: PhaseReady,
			target:  PhaseLoading,
			wantErr: ErrInvalidTransition,
		},
		{
			name:      "teardown from ready",
			initial:   PhaseReady,
			target:    PhaseInitializing,
			wantPhase: PhaseInitializing,
		},
		{
			name:      "teardown from error",
			initial:   PhaseError,
			target:    PhaseInitializing,
			wantPhase: PhaseInitializing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Readiness{Phase: tt.initial}
			err := r.Transition(tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.initial, r.Phase, "phase must not change on rejected transition")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantPhase, r.Phase)
		})
	}
}

func TestReadinessFail(t *testing.T) {
	r := Readiness{Phase: PhaseLoading}
	assert.NoError(t, r.Fail("backend unreachable"))
	assert.Equal(t, PhaseError, r.Phase)
	assert.Equal(t, "backend unreachable", r.Message)

	// Teardown clears the message.
	assert.NoError(t, r.Transition(PhaseInitializing))
	assert.Empty(t, r.Message)
}

func TestReadinessFailFromReadyRejected(t *testing.T) {
	r := Readiness{Phase: PhaseReady}
	assert.ErrorIs(t, r.Fail("boom"), ErrInvalidTransition)
	assert.Empty(t, r.Message)
}

func TestNewReadiness(t *testing.T) {
	r := NewReadiness()
	assert.Equal(t, PhaseInitializing, r.Phase)
	assert.False(t, r.Ready())
}
