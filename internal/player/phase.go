package player

// Phase is what the session is doing right now
type Phase int

const (
	PhaseIdle       Phase = iota // Opened, not started yet
	PhaseExercising              // Active part of an exercise
	PhaseResting                 // Fixed rest between two exercises
	PhasePaused                  // Reported only: Exercising/Resting with the timer stopped
	PhaseCompleted               // Every exercise played
	PhaseAborted                 // Exited by the user
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseExercising:
		return "exercising"
	case PhaseResting:
		return "resting"
	case PhasePaused:
		return "paused"
	case PhaseCompleted:
		return "completed"
	case PhaseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Timed reports whether the phase counts down
func (p Phase) Timed() bool {
	return p == PhaseExercising || p == PhaseResting
}

// Terminal reports whether the session is over
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseAborted
}
