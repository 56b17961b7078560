package player

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/health-coach/coach-app/internal/announcer"
	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/events"
	"github.com/lowaak/health-coach/coach-app/internal/metrics"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
	"github.com/lowaak/health-coach/coach-app/internal/safego"
)

const (
	DefaultTickInterval = time.Second
	storeTimeout        = 2 * time.Second
)

// Finished is published once a session plays its last exercise.
// The UI shows it and waits for the user to acknowledge.
type Finished struct {
	SessionID string
	PlanID    string
	PlanName  string
	Exercises int
	Elapsed   time.Duration
}

const (
	FinishedTitle   = "Workout Complete!"
	FinishedMessage = "You finished the plan! Keep up the great work!"
)

type Args struct {
	Plan         catalog.Plan
	Store        progress.Store
	Announcer    announcer.Announcer
	Metrics      *metrics.Manager // optional
	Clock        Clock            // optional, RealClock by default
	TickInterval time.Duration    // optional, DefaultTickInterval by default
	Logger       *log.Logger
}

type command struct {
	name     string
	fn       func(s *Session) error
	restart  bool // give the new phase a full first tick
	readOnly bool
	reply    chan error
}

// Player runs one Session against a ticker. Control calls and ticks are
// handled one at a time by a single goroutine that also owns the ticker.
type Player struct {
	store     progress.Store
	announcer announcer.Announcer
	metrics   *metrics.Manager
	clock     Clock
	interval  time.Duration
	logger    *log.Logger

	// owned by the run goroutine
	session   *Session
	outbox    outbox
	startedAt time.Time

	snapshotEvent *events.ChannelEvent[Snapshot]
	finishedEvent *events.ChannelEvent[Finished]
	recordedEvent *events.CallbackEvent[progress.CompletionRecord]

	cmdChan      chan command
	doneChan     chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

func New(args Args) *Player {
	if args.Logger == nil {
		panic("Player: logger cannot be nil")
	}
	if args.Store == nil {
		panic("Player: store cannot be nil")
	}
	if args.Announcer == nil {
		args.Announcer = announcer.Nop{}
	}
	if args.Clock == nil {
		args.Clock = RealClock{}
	}
	if args.TickInterval <= 0 {
		args.TickInterval = DefaultTickInterval
	}

	p := &Player{
		store:         args.Store,
		announcer:     args.Announcer,
		metrics:       args.Metrics,
		clock:         args.Clock,
		interval:      args.TickInterval,
		logger:        args.Logger,
		snapshotEvent: events.NewChannelEvent[Snapshot](true),
		finishedEvent: events.NewChannelEvent[Finished](false),
		recordedEvent: events.NewCallbackEvent[progress.CompletionRecord](false),
		cmdChan:       make(chan command),
		doneChan:      make(chan struct{}),
	}
	p.session = NewSession(args.Plan, &p.outbox, p.clock.Now)
	p.snapshotEvent.Notify(p.session.Snapshot())

	ticker := p.clock.NewTicker(p.interval)
	ticker.Stop() // started by Start/Resume

	p.wg.Add(1)
	safego.Go(p.logger, "player", func() { p.run(ticker) })

	p.logger.Printf("Player: opened plan %q (%d exercises)", args.Plan.ID, len(args.Plan.Exercises))
	return p
}

// ListenToSnapshots registers ch for state changes. The current snapshot is sent immediately.
func (p *Player) ListenToSnapshots(ch chan<- Snapshot) func() {
	return p.snapshotEvent.Listen(ch)
}

func (p *Player) ListenToFinished(ch chan<- Finished) func() {
	return p.finishedEvent.Listen(ch)
}

// OnRecorded registers fn for every completion the store accepted. fn runs on
// the player goroutine and must not call back into the Player.
func (p *Player) OnRecorded(fn func(progress.CompletionRecord)) func() {
	return p.recordedEvent.Listen(fn)
}

func (p *Player) Start() error {
	return p.do(command{name: "start", restart: true, fn: (*Session).Start})
}

func (p *Player) Pause() error {
	return p.do(command{name: "pause", fn: (*Session).Pause})
}

func (p *Player) Resume() error {
	return p.do(command{name: "resume", restart: true, fn: (*Session).Resume})
}

func (p *Player) Skip() error {
	return p.do(command{name: "skip", restart: true, fn: (*Session).Skip})
}

func (p *Player) Reset() error {
	return p.do(command{name: "reset", fn: (*Session).Reset})
}

// Exit aborts the session and stops the ticker. The Player stays usable
// for Snapshot until Close.
func (p *Player) Exit() error {
	return p.do(command{name: "exit", fn: (*Session).Exit})
}

// TogglePause pauses a running session and resumes a paused one
func (p *Player) TogglePause() error {
	return p.do(command{name: "toggle", restart: true, fn: func(s *Session) error {
		if s.Ticking() {
			return s.Pause()
		}
		return s.Resume()
	}})
}

func (p *Player) NeedsExitConfirmation() bool {
	var needs bool
	err := p.do(command{name: "confirm?", readOnly: true, fn: func(s *Session) error {
		needs = s.NeedsExitConfirmation()
		return nil
	}})
	return err == nil && needs
}

// Snapshot returns the current state. After Close it returns the final state.
func (p *Player) Snapshot() Snapshot {
	var snap Snapshot
	err := p.do(command{name: "snapshot", readOnly: true, fn: func(s *Session) error {
		snap = s.Snapshot()
		return nil
	}})
	if err != nil {
		// the run loop is gone; the last published snapshot is final
		snap, _ = p.snapshotEvent.Latest()
	}
	return snap
}

// Close stops the ticker and waits for the run goroutine. A session still in
// progress counts as aborted. Safe to call multiple times.
func (p *Player) Close() error {
	p.shutdownOnce.Do(func() {
		p.logger.Printf("Player: Shutting down")
		close(p.doneChan)
		p.wg.Wait()
		p.logger.Printf("Player: Shutdown complete")
	})
	return nil
}

func (p *Player) do(cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case p.cmdChan <- cmd:
	case <-p.doneChan:
		return ErrClosed
	}
	return <-cmd.reply
}

// run is the only goroutine touching the session and the ticker
func (p *Player) run(ticker Ticker) {
	defer p.wg.Done()
	ticking := false

	syncTicker := func(restart bool) {
		switch {
		case p.session.Ticking() && (restart || !ticking):
			ticker.Reset(p.interval)
			ticking = true
		case !p.session.Ticking() && ticking:
			ticker.Stop()
			ticking = false
		}
	}

	for {
		select {
		case <-p.doneChan:
			ticker.Stop()
			p.teardown()
			p.logger.Printf("Player: Goroutine exiting")
			return

		case cmd := <-p.cmdChan:
			if cmd.readOnly {
				cmd.reply <- cmd.fn(p.session)
				continue
			}
			before := p.session.Snapshot()
			err := cmd.fn(p.session)
			if err == nil {
				syncTicker(cmd.restart)
				p.observe(cmd.name, before)
			} else {
				p.logger.Printf("Player: %s rejected: %v", cmd.name, err)
			}
			p.flush(before)
			cmd.reply <- err

		case <-ticker.C():
			if !ticking {
				// delivered before Stop took effect
				continue
			}
			before := p.session.Snapshot()
			if err := p.session.Tick(); err != nil {
				p.logger.Printf("Player: tick dropped: %v", err)
				continue
			}
			syncTicker(false)
			p.flush(before)
		}
	}
}

// observe updates metrics for a successful control call. A run starts when
// the session begins ticking from Idle, Completed or a reset, and ends
// completed (see flush), exited or abandoned by a reset.
func (p *Player) observe(op string, before Snapshot) {
	after := p.session.Snapshot()
	fresh := before.Activity == PhaseIdle || before.Activity == PhaseCompleted || before.AwaitingStart
	switch {
	case after.Running && fresh:
		p.startedAt = p.clock.Now()
		p.logger.Printf("Player: session %s started", after.SessionID)
		if p.metrics != nil {
			p.metrics.CounterSessionsStarted.Inc()
			p.metrics.GaugeActiveSession.Set(1)
		}
	case (op == "exit" || op == "reset") && before.InRun():
		p.logger.Printf("Player: session %s abandoned by %s at %s", before.SessionID, op, before.Phase)
		if p.metrics != nil {
			p.metrics.CounterSessionsAborted.Inc()
			p.metrics.GaugeActiveSession.Set(0)
		}
	}
}

// flush delivers everything the session emitted since before: cues,
// completion records, the new snapshot and the finished notice
func (p *Player) flush(before Snapshot) {
	cues, completions := p.outbox.drain()

	for _, c := range cues {
		p.announcer.Say(c.Text)
		if c.Buzz {
			p.announcer.Buzz(announcer.BuzzDuration)
		}
	}

	for _, c := range completions {
		p.record(c)
	}

	after := p.session.Snapshot()
	if snapshotChanged(before, after) {
		p.snapshotEvent.Notify(after)
	}

	if after.Activity == PhaseCompleted && before.Activity != PhaseCompleted {
		elapsed := p.clock.Now().Sub(p.startedAt)
		if p.metrics != nil {
			p.metrics.CounterSessionsCompleted.Inc()
			p.metrics.GaugeActiveSession.Set(0)
			p.metrics.HistSessionDuration.Observe(elapsed.Seconds())
		}
		p.logger.Printf("Player: session %s complete after %s", after.SessionID, elapsed)
		p.finishedEvent.Notify(Finished{
			SessionID: after.SessionID,
			PlanID:    after.PlanID,
			PlanName:  after.PlanName,
			Exercises: after.Total,
			Elapsed:   elapsed,
		})
	}
}

func (p *Player) record(c completion) {
	how := "completed"
	if c.skipped {
		how = "skipped"
	}
	if p.metrics != nil {
		p.metrics.CounterExercises.WithLabelValues(how).Inc()
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := p.store.RecordCompletion(ctx, c.rec); err != nil {
		p.logger.Printf("Player: recording %s failed: %v", c.rec.ExerciseID, err)
		if p.metrics != nil {
			p.metrics.CounterRecordFailures.Inc()
		}
		return
	}
	p.logger.Printf("Player: %s %s", how, c.rec.ExerciseID)
	p.recordedEvent.Notify(c.rec)
}

// teardown aborts an unfinished session when the player is closed
func (p *Player) teardown() {
	before := p.session.Snapshot()
	if before.Activity.Terminal() {
		return
	}
	if err := p.session.Exit(); err != nil {
		p.logger.Printf("Player: teardown: %v", err)
	}
	if before.InRun() && p.metrics != nil {
		p.metrics.CounterSessionsAborted.Inc()
		p.metrics.GaugeActiveSession.Set(0)
	}
	p.flush(before)
}

func snapshotChanged(a, b Snapshot) bool {
	return a.SessionID != b.SessionID ||
		a.Phase != b.Phase ||
		a.Activity != b.Activity ||
		a.Running != b.Running ||
		a.AwaitingStart != b.AwaitingStart ||
		a.RemainingSeconds != b.RemainingSeconds ||
		a.Position != b.Position
}

type completion struct {
	rec     progress.CompletionRecord
	skipped bool
}

// outbox is the Sink the player hands to its session
type outbox struct {
	cues        []Cue
	completions []completion
}

func (o *outbox) Cue(c Cue) {
	o.cues = append(o.cues, c)
}

func (o *outbox) Completion(rec progress.CompletionRecord, skipped bool) {
	o.completions = append(o.completions, completion{rec: rec, skipped: skipped})
}

func (o *outbox) drain() ([]Cue, []completion) {
	cues, completions := o.cues, o.completions
	o.cues, o.completions = nil, nil
	return cues, completions
}
