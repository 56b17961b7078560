package coach

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

func TestCursesUIView_ListenersRenderOnEventLoop(t *testing.T) {
	h := newHarness(t, catalog.Default(), t.TempDir())
	screen := tcell.NewSimulationScreen("UTF-8")
	app := tview.NewApplication().SetScreen(screen)
	impl := NewCursesUIView(h.controller.logger, app, h.model)
	base := NewBaseUIView(NewBaseUIViewArg{
		UIViewImpl:   impl,
		UIModel:      h.model,
		UIController: h.controller,
		Logger:       h.controller.logger,
	})

	runErr := make(chan error, 1)
	go func() { runErr <- base.Run() }()

	noticeVisible := func() (visible bool) {
		impl.read(func() { visible = impl.noticeVisible })
		return visible
	}

	// key handling and listener rendering both touch currentMode
	screen.InjectKey(tcell.KeyRune, '5', tcell.ModNone)
	require.Eventually(t, func() bool { return impl.GetCurrentMode() == UIModeProgress }, waitFor, pollMs)

	h.controller.OpenPlan("cat_001")
	require.Eventually(t, func() bool { return impl.GetCurrentMode() == UIModePlayer }, waitFor, pollMs)

	h.controller.OpenPlan("missing")
	require.Eventually(t, noticeVisible, waitFor, pollMs)
	screen.InjectKey(tcell.KeyRune, '1', tcell.ModNone)
	assert.Never(t, func() bool { return impl.GetCurrentMode() == UIModeHome }, 50*time.Millisecond, pollMs,
		"the open notice owns the keyboard")

	h.controller.DismissNotice()
	require.Eventually(t, func() bool { return !noticeVisible() }, waitFor, pollMs)

	base.Shutdown()
	impl.Stop()
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("event loop did not stop")
	}

	// with the loop gone updates apply inline instead of waiting on it
	impl.UpdateProgress(progress.Summary{Total: 4})
	impl.SetMode(UIModeHome)
	assert.Equal(t, UIModeHome, impl.GetCurrentMode())
}
