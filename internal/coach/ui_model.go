package coach

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/events"
	"github.com/lowaak/health-coach/coach-app/internal/player"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
	"github.com/lowaak/health-coach/coach-app/internal/safego"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode           UIMode
	SelectedPlanID string // highlighted in Workouts, or open in the player
}

// PlayerState is what the player screen renders
type PlayerState struct {
	Active   bool // a plan is open in the player
	Plan     catalog.Plan
	Snapshot player.Snapshot
}

type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	playerStateEvent      *events.ChannelEvent[PlayerState]
	playerState           PlayerState
	noticeEvent           *events.ChannelEvent[Notice]
	notice                Notice
	progressEvent         *events.ChannelEvent[progress.Summary]
	progress              progress.Summary
	logs                  *logTail
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

// logTailSize is how many log lines the model keeps for the log pane
const logTailSize = 1000

func NewUIModel(logger *log.Logger, uiLogChan <-chan string) *UIModel {
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		uiStateEvent:          events.NewChannelEvent[UIState](true),
		uiState:               UIState{Mode: UIModeHome},
		playerStateEvent:      events.NewChannelEvent[PlayerState](true),
		noticeEvent:           events.NewChannelEvent[Notice](true),
		progressEvent:         events.NewChannelEvent[progress.Summary](true),
		logs:                  newLogTail(logTailSize),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}

	model.wg.Add(1)
	safego.Go(model.logger, "UIModel log pump", func() { model.pumpLog(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
func (m *UIModel) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

func (m *UIModel) ListenToUIState(ch chan<- UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

func (m *UIModel) SetSelectedPlan(planID string) {
	m.mu.Lock()
	if m.uiState.SelectedPlanID == planID {
		m.mu.Unlock()
		return
	}
	m.uiState.SelectedPlanID = planID
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// ListenToPlayerState registers a channel to receive player screen updates
func (m *UIModel) ListenToPlayerState(ch chan<- PlayerState) func() {
	return m.playerStateEvent.Listen(ch)
}

func (m *UIModel) GetPlayerState() PlayerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playerState
}

func (m *UIModel) SetPlayerState(state PlayerState) {
	m.mu.Lock()
	m.playerState = state
	m.mu.Unlock()

	m.playerStateEvent.Notify(state)
}

// SetPlayerSnapshot updates the snapshot of the open plan. Ignored when no
// plan is open or the snapshot belongs to another plan.
func (m *UIModel) SetPlayerSnapshot(snap player.Snapshot) {
	m.mu.Lock()
	if !m.playerState.Active || m.playerState.Plan.ID != snap.PlanID {
		m.mu.Unlock()
		return
	}
	m.playerState.Snapshot = snap
	state := m.playerState
	m.mu.Unlock()

	m.playerStateEvent.Notify(state)
}

// ListenToNotice registers a channel to receive modal notices. A notice with
// Kind NoticeNone means the modal should be hidden.
func (m *UIModel) ListenToNotice(ch chan<- Notice) func() {
	return m.noticeEvent.Listen(ch)
}

func (m *UIModel) GetNotice() Notice {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.notice
}

func (m *UIModel) ShowNotice(n Notice) {
	m.mu.Lock()
	m.notice = n
	m.mu.Unlock()

	m.logger.Printf("UIModel: notice %q", n.Title)
	m.noticeEvent.Notify(n)
}

func (m *UIModel) ClearNotice() {
	m.mu.Lock()
	if m.notice.Kind == NoticeNone {
		m.mu.Unlock()
		return
	}
	m.notice = Notice{}
	m.mu.Unlock()

	m.noticeEvent.Notify(Notice{})
}

func (m *UIModel) ListenToProgress(ch chan<- progress.Summary) func() {
	return m.progressEvent.Listen(ch)
}

func (m *UIModel) GetProgress() progress.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.progress
}

func (m *UIModel) SetProgress(s progress.Summary) {
	m.mu.Lock()
	m.progress = s
	m.mu.Unlock()

	m.progressEvent.Notify(s)
}

// pumpLog moves lines from the logger into the tail until ctx ends
func (m *UIModel) pumpLog(ctx context.Context, lines <-chan string) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			m.logs.add(line)
			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns up to n of the newest log lines, oldest first
func (m *UIModel) GetLogTail(n int) []string {
	return m.logs.tail(n)
}

// logTail is a fixed-size ring of the newest log lines
type logTail struct {
	mu    sync.RWMutex
	lines []string
	next  int
	full  bool
}

func newLogTail(size int) *logTail {
	return &logTail{lines: make([]string, size)}
}

func (t *logTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines[t.next] = line
	t.next = (t.next + 1) % len(t.lines)
	if t.next == 0 {
		t.full = true
	}
}

func (t *logTail) tail(n int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := t.next
	if t.full {
		count = len(t.lines)
	}
	n = min(n, count)
	out := make([]string, 0, max(n, 0))
	for i := count - n; i < count; i++ {
		idx := i
		if t.full {
			idx = (t.next + i) % len(t.lines)
		}
		out = append(out, t.lines[idx])
	}
	return out
}
