package coach

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// TerminalBell buzzes by ringing the terminal bell. It says nothing.
type TerminalBell struct {
	screen tcell.Screen
}

func NewTerminalBell(screen tcell.Screen) *TerminalBell {
	if screen == nil {
		panic("TerminalBell: screen cannot be nil")
	}
	return &TerminalBell{screen: screen}
}

func (b *TerminalBell) Say(string) {}

// Buzz rings once; terminals have no notion of duration
func (b *TerminalBell) Buzz(time.Duration) {
	_ = b.screen.Beep()
}
