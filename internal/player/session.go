package player

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

// CountdownSeconds is the window at the end of an exercise in which every
// remaining second is spoken
const CountdownSeconds = 5

// Cue is something to tell the user
type Cue struct {
	Text      string
	Buzz      bool
	Countdown int // >0 for the spoken seconds at the end of an exercise
}

// Sink receives what a Session emits while it changes state.
// Calls are made synchronously from the Session's methods.
type Sink interface {
	Cue(c Cue)
	Completion(rec progress.CompletionRecord, skipped bool)
}

// Snapshot is a read-only view of a session for rendering
type Snapshot struct {
	SessionID           string
	PlanID              string
	PlanName            string
	CurrentExerciseID   string
	CurrentExerciseName string
	NextExerciseName    string // empty on the last exercise
	Instructions        []string
	Phase               Phase
	Activity            Phase // Phase without Paused
	Running             bool
	AwaitingStart       bool // after Reset: Start is accepted again
	RemainingSeconds    int
	Position            int
	Total               int
}

// Session is the workout state machine. It has no timer of its own: the
// owner calls Tick once per elapsed second. Not safe for concurrent use.
type Session struct {
	plan catalog.Plan
	sink Sink
	now  func() time.Time
	id   string

	activity      Phase // never PhasePaused
	running       bool
	awaitingStart bool
	position      int
	remaining     int
}

func NewSession(plan catalog.Plan, sink Sink, now func() time.Time) *Session {
	if sink == nil {
		panic("Session: sink cannot be nil")
	}
	if now == nil {
		now = time.Now
	}
	s := &Session{
		plan:     plan,
		sink:     sink,
		now:      now,
		id:       uuid.NewString(),
		activity: PhaseIdle,
	}
	if len(plan.Exercises) > 0 {
		s.remaining = plan.Exercises[0].Duration()
	}
	return s
}

// Phase returns the reported phase, PhasePaused included
func (s *Session) Phase() Phase {
	if s.activity.Timed() && !s.running {
		return PhasePaused
	}
	return s.activity
}

func (s *Session) ID() string { return s.id }

// Ticking reports whether the owner should be delivering ticks
func (s *Session) Ticking() bool {
	return s.running && s.activity.Timed()
}

// NeedsExitConfirmation is true while a workout is actively counting down
func (s *Session) NeedsExitConfirmation() bool {
	return s.Ticking()
}

func (s *Session) Start() error {
	if s.activity != PhaseIdle && s.activity != PhaseCompleted && !s.awaitingStart {
		return s.invalid("start")
	}
	if len(s.plan.Exercises) == 0 {
		return ErrEmptyPlan
	}
	if s.activity == PhaseCompleted {
		// play again is a new run
		s.id = uuid.NewString()
	}

	first := s.plan.Exercises[0]
	s.position = 0
	s.activity = PhaseExercising
	s.running = true
	s.awaitingStart = false
	s.remaining = first.Duration()
	s.say(fmt.Sprintf("Starting workout. First exercise: %s. %d seconds.", exerciseName(first), s.remaining), true)
	return nil
}

// Tick applies one elapsed second
func (s *Session) Tick() error {
	if !s.Ticking() {
		return s.invalid("tick")
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.advance(false)
		return nil
	}
	if s.activity == PhaseExercising && s.remaining <= CountdownSeconds {
		s.sink.Cue(Cue{Text: strconv.Itoa(s.remaining), Countdown: s.remaining})
	}
	return nil
}

func (s *Session) Pause() error {
	if !s.Ticking() {
		return s.invalid("pause")
	}
	s.running = false
	s.say("Workout paused.", false)
	return nil
}

// Resume restarts the countdown after Pause. On a completed session it
// plays the plan again, exactly like Start.
func (s *Session) Resume() error {
	if s.activity == PhaseCompleted {
		return s.Start()
	}
	if !s.activity.Timed() || s.running {
		return s.invalid("resume")
	}
	s.running = true
	s.awaitingStart = false
	s.say("Workout resumed.", false)
	return nil
}

// Skip ends the current phase now. Skipping an exercise still records it as
// completed. Paused sessions stay paused.
func (s *Session) Skip() error {
	if !s.activity.Timed() {
		return s.invalid("skip")
	}
	s.awaitingStart = false
	s.advance(true)
	return nil
}

// Reset rewinds to the first exercise, stopped, without recording the
// exercise in progress
func (s *Session) Reset() error {
	if s.activity == PhaseAborted {
		return s.invalid("reset")
	}
	if len(s.plan.Exercises) == 0 {
		return ErrEmptyPlan
	}
	if s.Snapshot().InRun() || s.activity == PhaseCompleted {
		// the next start is a new run
		s.id = uuid.NewString()
	}
	s.position = 0
	s.activity = PhaseExercising
	s.running = false
	s.awaitingStart = true
	s.remaining = s.plan.Exercises[0].Duration()
	s.say("Workout reset.", false)
	return nil
}

// Exit aborts the session. Asking the user first is up to the caller,
// see NeedsExitConfirmation.
func (s *Session) Exit() error {
	if s.activity.Terminal() {
		return s.invalid("exit")
	}
	s.activity = PhaseAborted
	s.running = false
	s.awaitingStart = false
	return nil
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:        s.id,
		PlanID:           s.plan.ID,
		PlanName:         s.plan.Name,
		Phase:            s.Phase(),
		Activity:         s.activity,
		Running:          s.running,
		AwaitingStart:    s.awaitingStart,
		RemainingSeconds: s.remaining,
		Position:         s.position,
		Total:            len(s.plan.Exercises),
	}
	if s.position < len(s.plan.Exercises) {
		cur := s.plan.Exercises[s.position]
		snap.CurrentExerciseID = cur.ID
		snap.CurrentExerciseName = exerciseName(cur)
		snap.Instructions = append([]string(nil), cur.Instructions...)
	}
	if s.position+1 < len(s.plan.Exercises) {
		snap.NextExerciseName = exerciseName(s.plan.Exercises[s.position+1])
	}
	return snap
}

// InRun reports whether a started run is in progress, paused or not
func (snap Snapshot) InRun() bool {
	return snap.Activity.Timed() && !snap.AwaitingStart
}

func (s *Session) advance(skipped bool) {
	switch s.activity {
	case PhaseExercising:
		cur := s.plan.Exercises[s.position]
		s.sink.Completion(progress.CompletionRecord{
			ExerciseID:  cur.ID,
			CompletedAt: s.now(),
			PlanID:      s.plan.ID,
			SessionID:   s.id,
		}, skipped)
		if s.position == len(s.plan.Exercises)-1 {
			s.finish()
			return
		}
		s.activity = PhaseResting
		s.remaining = catalog.RestSeconds
		s.say(fmt.Sprintf("Rest. %d seconds.", catalog.RestSeconds), true)

	case PhaseResting:
		s.position++
		next := s.plan.Exercises[s.position]
		s.activity = PhaseExercising
		s.remaining = next.Duration()
		s.say(fmt.Sprintf("Next exercise: %s. %d seconds.", exerciseName(next), s.remaining), true)
	}
}

func (s *Session) finish() {
	s.activity = PhaseCompleted
	s.running = false
	s.remaining = 0
	s.say("Workout complete! Great job!", true)
}

func (s *Session) say(text string, buzz bool) {
	s.sink.Cue(Cue{Text: text, Buzz: buzz})
}

func (s *Session) invalid(op string) error {
	return &TransitionError{Op: op, Phase: s.Phase()}
}

func exerciseName(ex catalog.Exercise) string {
	if ex.Name == "" {
		return "Unknown"
	}
	return ex.Name
}
