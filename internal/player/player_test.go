package player

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/metrics"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingAnnouncer struct {
	mu     sync.Mutex
	said   []string
	buzzes int
}

func (a *recordingAnnouncer) Say(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.said = append(a.said, text)
}

func (a *recordingAnnouncer) Buzz(time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buzzes++
}

func (a *recordingAnnouncer) buzzCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buzzes
}

func (a *recordingAnnouncer) last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.said) == 0 {
		return ""
	}
	return a.said[len(a.said)-1]
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) RecordCompletion(ctx context.Context, rec progress.CompletionRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) Completions(ctx context.Context) (progress.Completions, error) {
	args := m.Called(ctx)
	return args.Get(0).(progress.Completions), args.Error(1)
}

func (m *mockStore) Close() error { return nil }

type fixture struct {
	player    *Player
	clock     *ManualClock
	store     *progress.MemoryStore
	announcer *recordingAnnouncer
	metrics   *metrics.Manager
}

func newFixture(t *testing.T, plan catalog.Plan) *fixture {
	t.Helper()
	f := &fixture{
		clock:     NewManualClock(sessionStart),
		store:     progress.NewMemoryStore(),
		announcer: &recordingAnnouncer{},
		metrics:   metrics.NewTestManager(),
	}
	f.player = New(Args{
		Plan:      plan,
		Store:     f.store,
		Announcer: f.announcer,
		Metrics:   f.metrics,
		Clock:     f.clock,
		Logger:    log.New(io.Discard, "", 0),
	})
	t.Cleanup(func() { _ = f.player.Close() })
	return f
}

func (f *fixture) fire(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.Equal(t, 1, f.clock.Fire(), "tick %d not delivered", i)
	}
}

func TestPlayer_ABCScenario(t *testing.T) {
	f := newFixture(t, abcPlan())
	p := f.player

	require.NoError(t, p.Start())
	snap := p.Snapshot()
	assert.Equal(t, PhaseExercising, snap.Phase)
	assert.Equal(t, 30, snap.RemainingSeconds)
	assert.Equal(t, "Starting workout. First exercise: Alpha. 30 seconds.", f.announcer.last())

	f.fire(t, 30)
	snap = p.Snapshot()
	assert.Equal(t, PhaseResting, snap.Phase)
	assert.Equal(t, 30, snap.RemainingSeconds)

	f.fire(t, 30)
	snap = p.Snapshot()
	assert.Equal(t, PhaseExercising, snap.Phase)
	assert.Equal(t, 1, snap.Position)
	assert.Equal(t, 20, snap.RemainingSeconds)

	require.NoError(t, p.Skip())
	snap = p.Snapshot()
	assert.Equal(t, PhaseResting, snap.Phase)
	assert.Equal(t, 30, snap.RemainingSeconds)

	f.fire(t, 30)
	assert.Equal(t, 2, p.Snapshot().Position)

	finished := make(chan Finished, 1)
	defer p.ListenToFinished(finished)()

	f.fire(t, 30)
	assert.Equal(t, PhaseCompleted, p.Snapshot().Phase)
	assert.Equal(t, "Workout complete! Great job!", f.announcer.last())
	assert.Equal(t, 6, f.announcer.buzzCount())

	select {
	case fin := <-finished:
		assert.Equal(t, "abc", fin.PlanID)
		assert.Equal(t, 3, fin.Exercises)
		assert.Equal(t, 120*time.Second, fin.Elapsed)
	case <-time.After(time.Second):
		t.Fatal("finished notice not published")
	}

	recs := f.store.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "A", recs[0].ExerciseID)
	assert.Equal(t, "B", recs[1].ExerciseID)
	assert.Equal(t, "C", recs[2].ExerciseID)
	assert.Equal(t, snap.SessionID, recs[2].SessionID)

	// the ticker is gone once the workout completes
	assert.Equal(t, 0, f.clock.ActiveTickers())
	assert.Equal(t, 0, f.clock.Fire())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSessionsCompleted))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CounterExercises.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterExercises.WithLabelValues("skipped")))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.GaugeActiveSession))
}

func TestPlayer_PauseStopsTicker(t *testing.T) {
	f := newFixture(t, abcPlan())
	p := f.player

	require.NoError(t, p.Start())
	f.fire(t, 10)
	require.NoError(t, p.Pause())
	assert.Equal(t, 0, f.clock.ActiveTickers())
	assert.Equal(t, 0, f.clock.Fire())
	assert.Equal(t, 20, p.Snapshot().RemainingSeconds)
	assert.False(t, p.NeedsExitConfirmation())

	require.NoError(t, p.Resume())
	assert.Equal(t, 1, f.clock.ActiveTickers())
	assert.True(t, p.NeedsExitConfirmation())
	f.fire(t, 1)
	assert.Equal(t, 19, p.Snapshot().RemainingSeconds)
}

func TestPlayer_TogglePause(t *testing.T) {
	f := newFixture(t, abcPlan())
	p := f.player
	require.NoError(t, p.Start())

	require.NoError(t, p.TogglePause())
	assert.Equal(t, PhasePaused, p.Snapshot().Phase)
	assert.Equal(t, "Workout paused.", f.announcer.last())

	require.NoError(t, p.TogglePause())
	assert.Equal(t, PhaseExercising, p.Snapshot().Phase)
	assert.Equal(t, "Workout resumed.", f.announcer.last())
}

func TestPlayer_ExitStopsEverything(t *testing.T) {
	f := newFixture(t, abcPlan())
	p := f.player

	require.NoError(t, p.Start())
	f.fire(t, 29)
	require.NoError(t, p.Exit())

	assert.Equal(t, 0, f.clock.Fire())
	snap := p.Snapshot()
	assert.Equal(t, PhaseAborted, snap.Phase)
	assert.Equal(t, 1, snap.RemainingSeconds)
	assert.Empty(t, f.store.Records())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSessionsAborted))

	assert.ErrorIs(t, p.Skip(), ErrInvalidTransition)
	assert.Empty(t, f.store.Records())
}

func TestPlayer_SkipRestartsTicker(t *testing.T) {
	f := newFixture(t, abcPlan())
	p := f.player

	require.NoError(t, p.Start())
	require.NoError(t, p.Skip())
	assert.Equal(t, 1, f.clock.ActiveTickers())
	f.fire(t, 1)
	assert.Equal(t, 29, p.Snapshot().RemainingSeconds)
}

func TestPlayer_ResetStopsTicker(t *testing.T) {
	f := newFixture(t, abcPlan())
	p := f.player

	require.NoError(t, p.Start())
	f.fire(t, 12)
	require.NoError(t, p.Reset())
	assert.Equal(t, 0, f.clock.ActiveTickers())

	snap := p.Snapshot()
	assert.Equal(t, PhasePaused, snap.Phase)
	assert.True(t, snap.AwaitingStart)
	assert.Equal(t, 30, snap.RemainingSeconds)
	assert.Empty(t, f.store.Records())

	require.NoError(t, p.Start())
	f.fire(t, 1)
	assert.Equal(t, 29, p.Snapshot().RemainingSeconds)
}

func TestPlayer_EmptyPlan(t *testing.T) {
	f := newFixture(t, catalog.Plan{ID: "empty"})
	assert.ErrorIs(t, f.player.Start(), ErrEmptyPlan)
	assert.Equal(t, 0, f.clock.ActiveTickers())
	assert.Equal(t, PhaseIdle, f.player.Snapshot().Phase)
}

func TestPlayer_SnapshotsArePublished(t *testing.T) {
	f := newFixture(t, abcPlan())
	p := f.player

	ch := make(chan Snapshot, 100)
	defer p.ListenToSnapshots(ch)()

	first := <-ch
	assert.Equal(t, PhaseIdle, first.Phase)

	require.NoError(t, p.Start())
	f.fire(t, 2)

	var got []int
	for len(got) < 3 {
		select {
		case s := <-ch:
			got = append(got, s.RemainingSeconds)
		case <-time.After(time.Second):
			t.Fatalf("only %d snapshots", len(got))
		}
	}
	assert.Equal(t, []int{30, 29, 28}, got)
}

func TestPlayer_StoreFailureKeepsSessionGoing(t *testing.T) {
	store := &mockStore{}
	store.On("RecordCompletion", mock.Anything, mock.MatchedBy(func(r progress.CompletionRecord) bool {
		return r.ExerciseID == "A"
	})).Return(errors.New("disk full")).Once()
	store.On("RecordCompletion", mock.Anything, mock.Anything).Return(nil)

	m := metrics.NewTestManager()
	clock := NewManualClock(sessionStart)
	p := New(Args{
		Plan:    abcPlan(),
		Store:   store,
		Clock:   clock,
		Metrics: m,
		Logger:  log.New(io.Discard, "", 0),
	})
	defer p.Close()

	var mu sync.Mutex
	var recorded []string
	p.OnRecorded(func(rec progress.CompletionRecord) {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, rec.ExerciseID)
	})

	require.NoError(t, p.Start())
	require.NoError(t, p.Skip())
	require.NoError(t, p.Skip())
	require.NoError(t, p.Skip())

	assert.Equal(t, PhaseResting, p.Snapshot().Phase)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRecordFailures))
	store.AssertNumberOfCalls(t, "RecordCompletion", 2)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"B"}, recorded, "only stored completions are reported")
}

func TestPlayer_ReplayAfterCompletion(t *testing.T) {
	f := newFixture(t, planOf(1))
	p := f.player

	require.NoError(t, p.Start())
	first := p.Snapshot().SessionID
	require.NoError(t, p.Skip())
	require.Equal(t, PhaseCompleted, p.Snapshot().Phase)

	require.NoError(t, p.Resume())
	snap := p.Snapshot()
	assert.Equal(t, PhaseExercising, snap.Phase)
	assert.NotEqual(t, first, snap.SessionID)
	assert.Equal(t, 1, f.clock.ActiveTickers())
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CounterSessionsStarted))
}

func TestPlayer_ReplayAfterReset(t *testing.T) {
	f := newFixture(t, planOf(1))
	p := f.player
	finished := make(chan Finished, 2)
	defer p.ListenToFinished(finished)()

	require.NoError(t, p.Start())
	require.NoError(t, p.Skip())
	first := <-finished

	require.NoError(t, p.Reset())
	require.NoError(t, p.Resume())
	f.fire(t, 5)

	var second Finished
	select {
	case second = <-finished:
	case <-time.After(time.Second):
		t.Fatal("second run did not finish")
	}
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, 5*time.Second, second.Elapsed)

	recs := f.store.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, first.SessionID, recs[0].SessionID)
	assert.Equal(t, second.SessionID, recs[1].SessionID)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CounterSessionsStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CounterSessionsCompleted))
	assert.Zero(t, testutil.ToFloat64(f.metrics.CounterSessionsAborted))
}

func TestPlayer_ResetMidRunCountsAbandonedRun(t *testing.T) {
	f := newFixture(t, abcPlan())
	p := f.player

	require.NoError(t, p.Start())
	f.fire(t, 3)
	require.NoError(t, p.Reset())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSessionsAborted))
	assert.Zero(t, testutil.ToFloat64(f.metrics.GaugeActiveSession))

	require.NoError(t, p.TogglePause())
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CounterSessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GaugeActiveSession))

	require.NoError(t, p.Reset())
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CounterSessionsAborted))

	// nothing is running after a reset, so exiting abandons no run
	require.NoError(t, p.Exit())
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CounterSessionsAborted))
}

func TestPlayer_Close(t *testing.T) {
	f := newFixture(t, abcPlan())
	p := f.player

	require.NoError(t, p.Start())
	f.fire(t, 3)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.Equal(t, 0, f.clock.ActiveTickers())
	assert.ErrorIs(t, p.Start(), ErrClosed)
	assert.ErrorIs(t, p.Pause(), ErrClosed)

	snap := p.Snapshot()
	assert.Equal(t, PhaseAborted, snap.Phase)
	assert.Equal(t, 27, snap.RemainingSeconds)
	assert.False(t, p.NeedsExitConfirmation())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSessionsAborted))
}

func TestPlayer_RealClock(t *testing.T) {
	p := New(Args{
		Plan:         planOf(1),
		Store:        progress.NewMemoryStore(),
		TickInterval: 5 * time.Millisecond,
		Logger:       log.New(io.Discard, "", 0),
	})
	defer p.Close()

	finished := make(chan Finished, 1)
	defer p.ListenToFinished(finished)()

	require.NoError(t, p.Start())
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("workout did not finish")
	}
	assert.Equal(t, PhaseCompleted, p.Snapshot().Phase)
}

func TestNew_PanicsOnMissingDeps(t *testing.T) {
	assert.Panics(t, func() { New(Args{Store: progress.NewMemoryStore()}) })
	assert.Panics(t, func() { New(Args{Logger: log.New(io.Discard, "", 0)}) })
}
