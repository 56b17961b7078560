// Package announcer delivers spoken cues and haptic buzzes. Every
// implementation is best-effort: calls never block the caller and failures
// are only logged.
package announcer

import (
	"log"
	"time"
)

// BuzzDuration is the length of a cue buzz
const BuzzDuration = 500 * time.Millisecond

type Announcer interface {
	// Say speaks text, superseding anything still being spoken
	Say(text string)
	Buzz(d time.Duration)
}

// Nop discards everything
type Nop struct{}

func (Nop) Say(string)         {}
func (Nop) Buzz(time.Duration) {}

// LogAnnouncer writes cues to a logger
type LogAnnouncer struct {
	logger *log.Logger
}

func NewLogAnnouncer(logger *log.Logger) *LogAnnouncer {
	if logger == nil {
		panic("LogAnnouncer: logger cannot be nil")
	}
	return &LogAnnouncer{logger: logger}
}

func (a *LogAnnouncer) Say(text string) {
	a.logger.Printf("Announcer: say %q", text)
}

func (a *LogAnnouncer) Buzz(d time.Duration) {
	a.logger.Printf("Announcer: buzz %s", d)
}

// Multi forwards to every announcer in order
type Multi []Announcer

func (m Multi) Say(text string) {
	for _, a := range m {
		a.Say(text)
	}
}

func (m Multi) Buzz(d time.Duration) {
	for _, a := range m {
		a.Buzz(d)
	}
}
