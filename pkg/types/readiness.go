package types

// Readiness phases. The coordinator moves through these during its
// lifecycle; Error is reachable only from Loading and absorbs until an
// explicit retry or teardown.
const (
	PhaseInitializing = "initializing"
	PhaseLoading      = "loading"
	PhaseReady        = "ready"
	PhaseError        = "error"
)

// validPhaseTransitions maps each phase to the phases it may move to.
// Teardown back to initializing is always allowed and handled separately.
var validPhaseTransitions = map[string]map[string]bool{
	PhaseInitializing: {PhaseLoading: true},
	PhaseLoading:      {PhaseReady: true, PhaseError: true},
	PhaseReady:        {},
	PhaseError:        {PhaseLoading: true}, // retry
}

// Readiness is the coordinator's top-level lifecycle state. Message is set
// only while Phase is PhaseError.
type Readiness struct {
	Phase   string
	Message string
}

// NewReadiness returns the initial readiness state.
func NewReadiness() Readiness {
	return Readiness{Phase: PhaseInitializing}
}

// Transition moves to the given phase. Returns ErrInvalidTransition if the
// move is not permitted from the current phase. Transitioning to any phase
// other than PhaseError clears the message.
func (r *Readiness) Transition(phase string) error {
	if phase == PhaseInitializing {
		// Teardown: permitted from every phase.
		r.Phase = PhaseInitializing
		r.Message = ""
		return nil
	}
	allowed, ok := validPhaseTransitions[r.Phase]
	if !ok || !allowed[phase] {
		return ErrInvalidTransition
	}
	r.Phase = phase
	if phase != PhaseError {
		r.Message = ""
	}
	return nil
}

// Fail moves to PhaseError with the given message.
func (r *Readiness) Fail(message string) error {
	if err := r.Transition(PhaseError); err != nil {
		return err
	}
	r.Message = message
	return nil
}

// Ready reports whether the phase is PhaseReady.
func (r Readiness) Ready() bool {
	return r.Phase == PhaseReady
}
