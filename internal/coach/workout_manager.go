package coach

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/lowaak/health-coach/coach-app/internal/announcer"
	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/events"
	"github.com/lowaak/health-coach/coach-app/internal/metrics"
	"github.com/lowaak/health-coach/coach-app/internal/player"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
	"github.com/lowaak/health-coach/coach-app/internal/safego"
)

var ErrNoWorkout = errors.New("no workout open")

type WorkoutManagerArgs struct {
	Model        *UIModel
	Store        progress.Store
	Announcer    announcer.Announcer
	Metrics      *metrics.Manager
	Clock        player.Clock  // optional
	TickInterval time.Duration // optional
	Logger       *log.Logger
}

// WorkoutManager owns the player of the open plan and mirrors its state into
// the UIModel. At most one plan is open at a time.
type WorkoutManager struct {
	args   WorkoutManagerArgs
	model  *UIModel
	logger *log.Logger

	mu      sync.Mutex
	player  *player.Player
	plan    catalog.Plan
	stop    context.CancelFunc
	forward sync.WaitGroup

	recordedEvent *events.CallbackEvent[progress.CompletionRecord]

	shutdownOnce sync.Once
}

func NewWorkoutManager(args WorkoutManagerArgs) *WorkoutManager {
	if args.Model == nil {
		panic("WorkoutManager: model cannot be nil")
	}
	if args.Store == nil {
		panic("WorkoutManager: store cannot be nil")
	}
	if args.Logger == nil {
		panic("WorkoutManager: logger cannot be nil")
	}
	return &WorkoutManager{
		args:          args,
		model:         args.Model,
		logger:        args.Logger,
		recordedEvent: events.NewCallbackEvent[progress.CompletionRecord](false),
	}
}

// OnRecorded registers fn for completions stored by any player this manager
// opens. fn runs on the player goroutine.
func (wm *WorkoutManager) OnRecorded(fn func(progress.CompletionRecord)) func() {
	return wm.recordedEvent.Listen(fn)
}

// Open closes the current plan, if any, and opens plan in a new player
func (wm *WorkoutManager) Open(plan catalog.Plan) {
	wm.Close()

	p := player.New(player.Args{
		Plan:         plan,
		Store:        wm.args.Store,
		Announcer:    wm.args.Announcer,
		Metrics:      wm.args.Metrics,
		Clock:        wm.args.Clock,
		TickInterval: wm.args.TickInterval,
		Logger:       wm.logger,
	})
	p.OnRecorded(wm.recordedEvent.Notify)

	ctx, cancel := context.WithCancel(context.Background())

	wm.mu.Lock()
	wm.player = p
	wm.plan = plan
	wm.stop = cancel
	wm.mu.Unlock()

	wm.model.SetPlayerState(PlayerState{Active: true, Plan: plan, Snapshot: p.Snapshot()})

	wm.forward.Add(1)
	safego.Go(wm.logger, "WorkoutManager forwarder", func() { wm.forwardPlayer(ctx, p) })

	wm.logger.Printf("WorkoutManager: Plan '%s' opened (%d exercises)", plan.Name, len(plan.Exercises))
}

// Close shuts the open player down and clears the player screen
func (wm *WorkoutManager) Close() {
	wm.mu.Lock()
	p, stop := wm.player, wm.stop
	wm.player, wm.stop = nil, nil
	wm.plan = catalog.Plan{}
	wm.mu.Unlock()

	if p == nil {
		return
	}
	stop()
	wm.forward.Wait()
	if err := p.Close(); err != nil {
		wm.logger.Printf("WorkoutManager: closing player: %v", err)
	}
	wm.model.SetPlayerState(PlayerState{})
	wm.logger.Printf("WorkoutManager: Plan closed")
}

// Player returns the open player or ErrNoWorkout
func (wm *WorkoutManager) Player() (*player.Player, error) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	if wm.player == nil {
		return nil, ErrNoWorkout
	}
	return wm.player, nil
}

func (wm *WorkoutManager) Plan() (catalog.Plan, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	return wm.plan, wm.player != nil
}

// forwardPlayer copies player snapshots into the model and turns the
// finished notice into a modal. A snapshot notification is only a signal:
// the latest state is read back from the player so none is lost to a full
// channel.
func (wm *WorkoutManager) forwardPlayer(ctx context.Context, p *player.Player) {
	defer wm.forward.Done()

	snapChan := make(chan player.Snapshot, 1)
	snapUnregister := p.ListenToSnapshots(snapChan)
	defer snapUnregister()

	finishedChan := make(chan player.Finished, 1)
	finishedUnregister := p.ListenToFinished(finishedChan)
	defer finishedUnregister()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-snapChan:
			if !ok {
				return
			}
			wm.model.SetPlayerSnapshot(p.Snapshot())
		case fin, ok := <-finishedChan:
			if !ok {
				return
			}
			wm.model.SetPlayerSnapshot(p.Snapshot())
			wm.model.ShowNotice(Notice{
				Kind:    NoticeFinished,
				Title:   player.FinishedTitle,
				Message: player.FinishedMessage,
			})
			wm.logger.Printf("WorkoutManager: '%s' finished in %s", fin.PlanName, fin.Elapsed.Round(time.Second))
		}
	}
}

// Shutdown closes the open player. Safe to call multiple times.
func (wm *WorkoutManager) Shutdown() {
	wm.shutdownOnce.Do(func() {
		wm.logger.Println("WorkoutManager: Shutting down")
		wm.Close()
		wm.logger.Println("WorkoutManager: Shutdown complete")
	})
}
