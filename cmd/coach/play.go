package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/lowaak/health-coach/coach-app/internal/player"
	"github.com/lowaak/health-coach/coach-app/internal/safego"
)

const playHelp = "Enter: start/pause  n: next  r: reset  q: quit"

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play PLAN_ID",
		Short: "Play a workout plan without the full screen UI",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlayCmd,
	}
}

func runPlayCmd(cmd *cobra.Command, args []string) (err error) {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	plan, err := a.catalog.Plan(args[0])
	if err != nil {
		return err
	}
	if len(plan.Exercises) == 0 {
		return player.ErrEmptyPlan
	}

	out := cmd.OutOrStdout()
	p := player.New(player.Args{
		Plan:         plan,
		Store:        a.store,
		Announcer:    a.announcers(newPrintAnnouncer(out)),
		Metrics:      a.metrics,
		TickInterval: a.cfg.Player.TickInterval,
		Logger:       a.logger,
	})
	defer p.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	fmt.Fprintf(out, "%s: %d exercises, %s\n%s\n",
		plan.Name, len(plan.Exercises), time.Duration(plan.TotalSeconds())*time.Second, playHelp)

	h := &headless{player: p, out: out, errOut: cmd.ErrOrStderr()}
	return h.run(ctx, readLines(ctx, a.logger, cmd.InOrStdin()), sigs)
}

// readLines feeds trimmed input lines into the returned channel, which is
// closed at EOF
func readLines(ctx context.Context, logger *log.Logger, in io.Reader) <-chan string {
	lines := make(chan string)
	safego.Go(logger, "play input", func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	})
	return lines
}

// headless drives a player from text commands and prints its progress
type headless struct {
	player *player.Player
	out    io.Writer
	errOut io.Writer

	confirming bool
	last       player.Snapshot
}

func (h *headless) run(ctx context.Context, lines <-chan string, sigs <-chan os.Signal) error {
	snapshots := make(chan player.Snapshot, 1)
	defer h.player.ListenToSnapshots(snapshots)()
	finished := make(chan player.Finished, 1)
	defer h.player.ListenToFinished(finished)()

	for {
		select {
		case <-ctx.Done():
			return h.abort()
		case <-snapshots:
			h.show(h.player.Snapshot())
		case f := <-finished:
			fmt.Fprintf(h.out, "\n%s\n%s (%d exercises in %s)\n",
				player.FinishedTitle, player.FinishedMessage, f.Exercises, f.Elapsed.Round(time.Second))
			return nil
		case <-sigs:
			if done := h.requestExit(); done {
				return h.abort()
			}
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if done := h.handle(line); done {
				return h.abort()
			}
		}
	}
}

// handle applies one input line and reports whether the session should end
func (h *headless) handle(line string) bool {
	if h.confirming {
		h.confirming = false
		if strings.EqualFold(line, "y") || strings.EqualFold(line, "yes") {
			return true
		}
		fmt.Fprintln(h.out, "Continuing.")
		return false
	}

	var err error
	switch strings.ToLower(line) {
	case "", "p":
		if h.player.Snapshot().Phase == player.PhaseIdle {
			err = h.player.Start()
		} else {
			err = h.player.TogglePause()
		}
	case "n":
		err = h.player.Skip()
	case "r":
		err = h.player.Reset()
	case "q":
		return h.requestExit()
	default:
		fmt.Fprintln(h.out, playHelp)
	}
	if err != nil && !errors.Is(err, player.ErrClosed) {
		fmt.Fprintf(h.errOut, "%v\n", err)
	}
	return false
}

func (h *headless) requestExit() bool {
	if h.confirming || !h.player.NeedsExitConfirmation() {
		return true
	}
	h.confirming = true
	fmt.Fprint(h.out, "Exit workout? [y/N] ")
	return false
}

func (h *headless) abort() error {
	if err := h.player.Exit(); err != nil && !errors.Is(err, player.ErrInvalidTransition) && !errors.Is(err, player.ErrClosed) {
		return err
	}
	fmt.Fprintln(h.out, "Workout stopped.")
	return nil
}

// show prints a line whenever the phase or the exercise changes
func (h *headless) show(snap player.Snapshot) {
	if snap.Phase == h.last.Phase && snap.Position == h.last.Position && snap.AwaitingStart == h.last.AwaitingStart {
		return
	}
	h.last = snap

	switch {
	case snap.AwaitingStart:
		fmt.Fprintf(h.out, "[%d/%d] %s: reset, press Enter to start\n", snap.Position+1, snap.Total, snap.CurrentExerciseName)
	case snap.Phase == player.PhaseExercising:
		fmt.Fprintf(h.out, "[%d/%d] %s (%ds)\n", snap.Position+1, snap.Total, snap.CurrentExerciseName, snap.RemainingSeconds)
		for _, line := range snap.Instructions {
			fmt.Fprintf(h.out, "    - %s\n", line)
		}
	case snap.Phase == player.PhaseResting:
		fmt.Fprintf(h.out, "Rest %ds, next up: %s\n", snap.RemainingSeconds, snap.NextExerciseName)
	case snap.Phase == player.PhasePaused:
		fmt.Fprintf(h.out, "Paused with %ds left\n", snap.RemainingSeconds)
	}
}

// printAnnouncer writes cues to the terminal
type printAnnouncer struct {
	mu  sync.Mutex
	out io.Writer
}

func newPrintAnnouncer(out io.Writer) *printAnnouncer {
	return &printAnnouncer{out: out}
}

func (a *printAnnouncer) Say(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, "  >> %s\n", text)
}

func (a *printAnnouncer) Buzz(time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprint(a.out, "\a")
}
