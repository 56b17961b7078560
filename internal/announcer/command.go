package announcer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"sync"
	"time"

	"github.com/lowaak/health-coach/coach-app/internal/safego"
)

// replaceWait bounds how long Say waits for a cancelled utterance to exit
const replaceWait = 500 * time.Millisecond

// RunFunc speaks text and returns when done or when ctx is cancelled
type RunFunc func(ctx context.Context, text string) error

// ExecRunner runs an external text-to-speech program (espeak, say, spd-say...)
// with text appended as the last argument
func ExecRunner(command string, args ...string) RunFunc {
	return func(ctx context.Context, text string) error {
		argv := append(append([]string(nil), args...), text)
		cmd := exec.CommandContext(ctx, command, argv...)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("%s: %w (%s)", command, err, out)
		}
		return nil
	}
}

type CommandArgs struct {
	Run       RunFunc
	Buzz      func(d time.Duration) // optional, e.g. a terminal bell
	OnFailure func(err error)       // optional, called for every failed utterance
	Logger    *log.Logger
}

// CommandAnnouncer speaks through a RunFunc. Only one utterance is active:
// a new Say cancels the previous one and waits, up to replaceWait, for it to exit.
type CommandAnnouncer struct {
	run       RunFunc
	buzz      func(time.Duration)
	onFailure func(error)
	logger    *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{} // closed when the active utterance returned
	closed bool
	wg     sync.WaitGroup
}

func NewCommandAnnouncer(args CommandArgs) *CommandAnnouncer {
	if args.Logger == nil {
		panic("CommandAnnouncer: logger cannot be nil")
	}
	if args.Run == nil {
		panic("CommandAnnouncer: run cannot be nil")
	}
	return &CommandAnnouncer{
		run:       args.Run,
		buzz:      args.Buzz,
		onFailure: args.OnFailure,
		logger:    args.Logger,
	}
}

func (a *CommandAnnouncer) Say(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.cancel != nil {
		a.cancel()
		select {
		case <-a.done:
		case <-time.After(replaceWait):
			a.logger.Printf("CommandAnnouncer: previous utterance still running after %s", replaceWait)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done

	a.wg.Add(1)
	safego.Go(a.logger, "announcer", func() {
		defer a.wg.Done()
		defer close(done)
		defer cancel()
		err := a.run(ctx, text)
		if err == nil || errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		a.logger.Printf("CommandAnnouncer: say %q failed: %v", text, err)
		if a.onFailure != nil {
			a.onFailure(err)
		}
	})
}

func (a *CommandAnnouncer) Buzz(d time.Duration) {
	if a.buzz == nil {
		return
	}
	a.buzz(d)
}

// Close stops the active utterance and waits for it to finish.
// Say after Close is a no-op.
func (a *CommandAnnouncer) Close() error {
	a.mu.Lock()
	a.closed = true
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()
	a.wg.Wait()
	return nil
}
