package coach

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

// fakeView records what BaseUIView asks it to render
type fakeView struct {
	mu         sync.Mutex
	mode       UIMode
	plans      []catalog.Plan
	selected   string
	articles   int
	mealPlans  int
	player     PlayerState
	summary    progress.Summary
	notice     Notice
	logLines   []string
	stopped    bool
	draws      int
	controller *UIController
}

func (f *fakeView) Initialize(c *UIController)          { f.controller = c }
func (f *fakeView) SetupKeyboardHandlers(*UIController) {}
func (f *fakeView) Run() error                          { return nil }

func (f *fakeView) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeView) Draw() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draws++
	return nil
}

func (f *fakeView) SetMode(mode UIMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
}

func (f *fakeView) GetCurrentMode() UIMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *fakeView) GetLogViewHeight() int { return 10 }

func (f *fakeView) ClearLogView() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logLines = nil
}

func (f *fakeView) WriteLogLine(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logLines = append(f.logLines, line)
	return nil
}

func (f *fakeView) SetPlanList(plans []catalog.Plan, selectedID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans, f.selected = plans, selectedID
}

func (f *fakeView) SetArticles(articles []catalog.Article) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles = len(articles)
}

func (f *fakeView) SetMealPlans(mealPlans []catalog.MealPlan) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mealPlans = len(mealPlans)
}

func (f *fakeView) UpdatePlayerState(state PlayerState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.player = state
}

func (f *fakeView) UpdateProgress(summary progress.Summary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summary = summary
}

func (f *fakeView) ShowNotice(n Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notice = n
}

func (f *fakeView) with(fn func(f *fakeView) bool) func() bool {
	return func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return fn(f)
	}
}

func TestBaseUIView_RendersModel(t *testing.T) {
	h := newHarness(t, catalog.Default(), t.TempDir())
	view := &fakeView{}
	base := NewBaseUIView(NewBaseUIViewArg{
		UIViewImpl:   view,
		UIModel:      h.model,
		UIController: h.controller,
		Logger:       h.controller.logger,
	})
	defer base.Shutdown()

	assert.Same(t, h.controller, view.controller)
	require.Eventually(t, view.with(func(f *fakeView) bool {
		return len(f.plans) == 3 && f.selected == "cat_001" && f.articles == 2 && f.mealPlans == 2
	}), waitFor, pollMs)

	h.controller.OnModeChange(UIModeLearn)
	require.Eventually(t, view.with(func(f *fakeView) bool { return f.mode == UIModeLearn }), waitFor, pollMs)

	h.controller.OpenPlan("cat_001")
	require.Eventually(t, view.with(func(f *fakeView) bool {
		return f.mode == UIModePlayer && f.player.Active && f.player.Plan.ID == "cat_001"
	}), waitFor, pollMs)

	h.controller.OpenPlan("missing")
	require.Eventually(t, view.with(func(f *fakeView) bool { return f.notice.Kind == NoticeError }), waitFor, pollMs)
	h.controller.DismissNotice()
	require.Eventually(t, view.with(func(f *fakeView) bool { return f.notice.Kind == NoticeNone }), waitFor, pollMs)

	h.model.SetProgress(progress.Summary{Total: 9})
	require.Eventually(t, view.with(func(f *fakeView) bool { return f.summary.Total == 9 }), waitFor, pollMs)

	h.controller.OnEscapeKey()
	require.Eventually(t, view.with(func(f *fakeView) bool { return f.stopped }), waitFor, pollMs)
}

func TestBaseUIView_ShowsLogTail(t *testing.T) {
	logChan := make(chan string, 4)
	h := newHarness(t, catalog.Default(), t.TempDir())
	model := NewUIModel(h.controller.logger, logChan)
	defer model.Shutdown()

	view := &fakeView{}
	base := NewBaseUIView(NewBaseUIViewArg{
		UIViewImpl:   view,
		UIModel:      model,
		UIController: h.controller,
		Logger:       h.controller.logger,
	})
	defer base.Shutdown()

	logChan <- "first\n"
	logChan <- "second\n"
	require.Eventually(t, view.with(func(f *fakeView) bool {
		return len(f.logLines) == 2 && f.logLines[1] == "second\n"
	}), waitFor, pollMs)
	assert.Equal(t, []string{"second\n"}, model.GetLogTail(1))
}

func TestNewBaseUIView_PanicsOnMissingDeps(t *testing.T) {
	h := newHarness(t, catalog.Default(), t.TempDir())
	assert.Panics(t, func() {
		NewBaseUIView(NewBaseUIViewArg{UIModel: h.model, UIController: h.controller, Logger: h.controller.logger})
	})
}
