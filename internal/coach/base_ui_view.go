package coach

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/health-coach/coach-app/internal/safego"
)

const logResizePoll = 100 * time.Millisecond

// BaseUIView wires a UIViewImpl to the model: every model event is rendered
// by its own goroutine, and the log pane follows the terminal size.
type BaseUIView struct {
	impl       UIViewImpl
	model      *UIModel
	controller *UIController
	logger     *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type NewBaseUIViewArg struct {
	UIViewImpl   UIViewImpl
	UIModel      *UIModel
	UIController *UIController
	Logger       *log.Logger
}

func NewBaseUIView(args NewBaseUIViewArg) *BaseUIView {
	switch {
	case args.Logger == nil:
		panic("BaseUIView: logger cannot be nil")
	case args.UIViewImpl == nil:
		panic("BaseUIView: view implementation cannot be nil")
	case args.UIModel == nil:
		panic("BaseUIView: model cannot be nil")
	case args.UIController == nil:
		panic("BaseUIView: controller cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &BaseUIView{
		impl:       args.UIViewImpl,
		model:      args.UIModel,
		controller: args.UIController,
		logger:     args.Logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	v.impl.Initialize(v.controller)
	v.impl.SetupKeyboardHandlers(v.controller)
	v.populate()
	v.impl.SetMode(v.model.GetUIState().Mode)

	v.refreshLogPane()
	v.wg.Add(1)
	safego.Go(v.logger, "BaseUIView log resize", v.followLogPaneSize)

	v.subscribe()
	return v
}

// populate fills the panes whose content never changes
func (v *BaseUIView) populate() {
	content := v.controller.Catalog()
	v.impl.SetPlanList(content.ListPlans(), v.model.GetUIState().SelectedPlanID)
	v.impl.SetArticles(content.Articles())
	v.impl.SetMealPlans(content.MealPlans())
}

// listen renders every value the model publishes through register until
// the view shuts down
func listen[T any](v *BaseUIView, name string, register func(chan<- T) func(), render func(T)) {
	ch := make(chan T, 1)
	unregister := register(ch)
	v.wg.Add(1)
	safego.Go(v.logger, name, func() {
		defer v.wg.Done()
		defer unregister()
		for {
			select {
			case <-v.ctx.Done():
				return
			case val, ok := <-ch:
				if !ok {
					return
				}
				render(val)
				v.redraw()
			}
		}
	})
}

func (v *BaseUIView) subscribe() {
	// a log line only means the tail moved
	listen(v, "BaseUIView log", v.model.ListenToLog, func(string) { v.refreshLogPane() })
	listen(v, "BaseUIView mode", v.model.ListenToUIState, func(s UIState) { v.impl.SetMode(s.Mode) })
	listen(v, "BaseUIView player", v.model.ListenToPlayerState, v.impl.UpdatePlayerState)
	listen(v, "BaseUIView notice", v.model.ListenToNotice, v.impl.ShowNotice)
	listen(v, "BaseUIView progress", v.model.ListenToProgress, v.impl.UpdateProgress)

	closeChan := make(chan struct{}, 1)
	unregister := v.model.ListenToCloseApplication(closeChan)
	v.wg.Add(1)
	safego.Go(v.logger, "BaseUIView close", func() {
		defer v.wg.Done()
		defer unregister()
		select {
		case <-v.ctx.Done():
		case <-closeChan:
			v.impl.Stop()
		}
	})
}

func (v *BaseUIView) redraw() {
	if err := v.impl.Draw(); err != nil {
		v.logger.Printf("BaseUIView: draw failed: %v", err)
	}
}

// refreshLogPane rewrites the log pane with as many recent lines as fit
func (v *BaseUIView) refreshLogPane() {
	rows := v.impl.GetLogViewHeight()
	if rows <= 0 {
		return
	}
	v.impl.ClearLogView()
	for _, line := range v.model.GetLogTail(rows) {
		if err := v.impl.WriteLogLine(line); err != nil {
			v.logger.Printf("BaseUIView: log pane write failed: %v", err)
			return
		}
	}
}

func (v *BaseUIView) followLogPaneSize() {
	defer v.wg.Done()
	ticker := time.NewTicker(logResizePoll)
	defer ticker.Stop()

	rows := 0
	for {
		select {
		case <-v.ctx.Done():
			return
		case <-ticker.C:
			if h := v.impl.GetLogViewHeight(); h > 0 && h != rows {
				rows = h
				v.refreshLogPane()
				v.redraw()
			}
		}
	}
}

// Shutdown stops the listeners and waits for them
func (v *BaseUIView) Shutdown() {
	v.logger.Println("BaseUIView: Shutting down")
	v.cancel()
	v.wg.Wait()
	v.logger.Println("BaseUIView: Shutdown complete")
}

// Run blocks until the UI exits
func (v *BaseUIView) Run() error {
	return v.impl.Run()
}
