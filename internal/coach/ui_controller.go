package coach

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/player"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

const progressTimeout = 2 * time.Second

type UIControllerArgs struct {
	Model          *UIModel
	Catalog        *catalog.Catalog
	Store          progress.Store
	WorkoutManager *WorkoutManager
	DataDir        string           // where UI choices are remembered
	Now            func() time.Time // optional
	Logger         *log.Logger
}

// UIController handles UI events and coordinates with the UIModel
type UIController struct {
	model          *UIModel
	catalog        *catalog.Catalog
	store          progress.Store
	workoutManager *WorkoutManager
	persistence    *uiModelPersistence
	now            func() time.Time
	logger         *log.Logger

	mu          sync.Mutex
	pendingMode UIMode // where to go once an exit is confirmed
}

func NewUIController(args UIControllerArgs) *UIController {
	if args.Model == nil {
		panic("UIController: model cannot be nil")
	}
	if args.Catalog == nil {
		panic("UIController: catalog cannot be nil")
	}
	if args.Store == nil {
		panic("UIController: store cannot be nil")
	}
	if args.WorkoutManager == nil {
		panic("UIController: workoutManager cannot be nil")
	}
	if args.Logger == nil {
		panic("UIController: logger cannot be nil")
	}
	if args.Now == nil {
		args.Now = time.Now
	}

	c := &UIController{
		model:          args.Model,
		catalog:        args.Catalog,
		store:          args.Store,
		workoutManager: args.WorkoutManager,
		persistence:    newUIModelPersistence(args.DataDir, args.Logger),
		now:            args.Now,
		logger:         args.Logger,
		pendingMode:    UIModeWorkouts,
	}

	selected := c.persistence.getLastPlan()
	if _, err := c.catalog.Plan(selected); err != nil {
		selected = ""
		if plans := c.catalog.ListPlans(); len(plans) > 0 {
			selected = plans[0].ID
		}
	}
	c.model.SetSelectedPlan(selected)
	c.RefreshProgress()
	c.workoutManager.OnRecorded(func(progress.CompletionRecord) { c.RefreshProgress() })

	return c
}

// Catalog gives views the content to list
func (c *UIController) Catalog() *catalog.Catalog {
	return c.catalog
}

// OnEscapeKey leaves the player, or closes the application anywhere else
func (c *UIController) OnEscapeKey() {
	if c.model.GetUIState().Mode == UIModePlayer {
		c.requestLeave(UIModeWorkouts)
		return
	}
	c.model.RequestCloseApplication()
}

// OnModeChange handles when the user requests a mode change
func (c *UIController) OnModeChange(mode UIMode) {
	current := c.model.GetUIState().Mode
	if current == mode {
		return
	}
	if mode == UIModePlayer {
		if _, open := c.workoutManager.Plan(); !open {
			c.logger.Printf("No workout open - pick a plan in Workouts (press 3)")
			return
		}
	}
	if current == UIModePlayer {
		c.requestLeave(mode)
		return
	}
	c.switchMode(mode)
}

func (c *UIController) switchMode(mode UIMode) {
	if info, ok := GetUIModeInfo(mode); ok {
		c.logger.Printf("Switching to %s mode", info.DisplayName)
	}
	if mode == UIModeProgress {
		c.RefreshProgress()
	}
	c.model.SetMode(mode)
}

// --- Workouts ---

// OnPlanHighlighted tracks the plan under the cursor in the plan list
func (c *UIController) OnPlanHighlighted(planID string) {
	c.model.SetSelectedPlan(planID)
}

// OpenPlan loads a plan into the player and shows the player screen.
// Missing and empty plans show an error notice instead.
func (c *UIController) OpenPlan(planID string) {
	plan, err := c.catalog.Plan(planID)
	if err != nil || len(plan.Exercises) == 0 {
		c.logger.Printf("Cannot open plan %q: %v", planID, err)
		c.model.ShowNotice(Notice{Kind: NoticeError, Title: ErrorTitle, Message: PlanUnavailableText})
		return
	}

	c.workoutManager.Open(plan)
	c.model.SetSelectedPlan(plan.ID)
	c.persistence.setLastPlan(plan.ID)
	c.switchMode(UIModePlayer)
}

// --- Player ---

// TogglePlay starts an idle workout, pauses a running one and resumes a
// paused one. On a finished workout it plays the plan again.
func (c *UIController) TogglePlay() {
	p, err := c.workoutManager.Player()
	if err != nil {
		c.logger.Printf("No workout open")
		return
	}
	if p.Snapshot().Phase == player.PhaseIdle {
		c.handlePlayerError("start", p.Start())
		return
	}
	c.handlePlayerError("toggle", p.TogglePause())
}

func (c *UIController) StartWorkout() {
	p, err := c.workoutManager.Player()
	if err != nil {
		c.logger.Printf("No workout open")
		return
	}
	c.handlePlayerError("start", p.Start())
}

func (c *UIController) SkipExercise() {
	p, err := c.workoutManager.Player()
	if err != nil {
		c.logger.Printf("No workout open")
		return
	}
	c.handlePlayerError("skip", p.Skip())
}

func (c *UIController) ResetWorkout() {
	p, err := c.workoutManager.Player()
	if err != nil {
		c.logger.Printf("No workout open")
		return
	}
	c.handlePlayerError("reset", p.Reset())
}

// RequestExit leaves the player for the plan list, asking first while the
// workout is counting down
func (c *UIController) RequestExit() {
	c.requestLeave(UIModeWorkouts)
}

func (c *UIController) requestLeave(target UIMode) {
	p, err := c.workoutManager.Player()
	if err != nil {
		c.switchMode(target)
		return
	}

	c.mu.Lock()
	c.pendingMode = target
	c.mu.Unlock()

	if p.NeedsExitConfirmation() {
		c.model.ShowNotice(Notice{Kind: NoticeConfirmExit, Title: ExitConfirmTitle, Message: ExitConfirmMessage})
		return
	}
	c.ConfirmExit()
}

// CancelExit keeps the workout going
func (c *UIController) CancelExit() {
	c.model.ClearNotice()
}

// ConfirmExit aborts the workout and leaves the player
func (c *UIController) ConfirmExit() {
	c.model.ClearNotice()
	if p, err := c.workoutManager.Player(); err == nil {
		if err := p.Exit(); err != nil && !errors.Is(err, player.ErrInvalidTransition) {
			c.logger.Printf("Exit failed: %v", err)
		}
	}
	c.leavePlayer()
}

// AcknowledgeCompletion closes the finished notice. playAgain restarts the
// plan, otherwise the player is closed.
func (c *UIController) AcknowledgeCompletion(playAgain bool) {
	c.model.ClearNotice()
	c.RefreshProgress()
	if playAgain {
		c.StartWorkout()
		return
	}
	c.leavePlayer()
}

// DismissNotice closes an error notice and returns to the plan list
func (c *UIController) DismissNotice() {
	c.model.ClearNotice()
	c.workoutManager.Close()
	c.switchMode(UIModeWorkouts)
}

// OnNoticeButton dispatches a button of the current notice
func (c *UIController) OnNoticeButton(label string) {
	notice := c.model.GetNotice()
	switch {
	case notice.Kind == NoticeError:
		c.DismissNotice()
	case notice.Kind == NoticeConfirmExit && label == ButtonExit:
		c.ConfirmExit()
	case notice.Kind == NoticeConfirmExit:
		c.CancelExit()
	case notice.Kind == NoticeFinished:
		c.AcknowledgeCompletion(label == ButtonPlayAgain)
	default:
		c.model.ClearNotice()
	}
}

func (c *UIController) leavePlayer() {
	c.mu.Lock()
	target := c.pendingMode
	c.pendingMode = UIModeWorkouts
	c.mu.Unlock()

	c.workoutManager.Close()
	c.RefreshProgress()
	c.switchMode(target)
}

// handlePlayerError logs rejected transitions and turns an empty plan into
// a notice that leads back to the plan list
func (c *UIController) handlePlayerError(op string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, player.ErrEmptyPlan):
		c.model.ShowNotice(Notice{Kind: NoticeError, Title: ErrorTitle, Message: NoExercisesText})
	case errors.Is(err, player.ErrInvalidTransition):
		c.logger.Printf("Ignored %s: %v", op, err)
	default:
		c.logger.Printf("%s failed: %v", op, err)
	}
}

// --- Progress ---

// RefreshProgress recomputes the progress summary from the store
func (c *UIController) RefreshProgress() {
	ctx, cancel := context.WithTimeout(context.Background(), progressTimeout)
	defer cancel()

	completions, err := c.store.Completions(ctx)
	if err != nil {
		c.logger.Printf("Loading progress failed: %v", err)
		return
	}
	c.model.SetProgress(progress.Summarize(completions, c.catalog.ExerciseName, c.now(), progress.DefaultRecentLimit))
}

// Shutdown closes the open workout
func (c *UIController) Shutdown() {
	c.workoutManager.Shutdown()
}
