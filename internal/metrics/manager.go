package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "coach"
	Subsystem = "player"
)

type Manager struct {
	// counters
	CounterSessionsStarted   prometheus.Counter
	CounterSessionsCompleted prometheus.Counter
	CounterSessionsAborted   prometheus.Counter
	CounterExercises         *prometheus.CounterVec // label "how": completed | skipped
	CounterRecordFailures    prometheus.Counter
	CounterAnnouncerFailures prometheus.Counter

	// gauges
	GaugeActiveSession prometheus.Gauge

	// histograms
	HistSessionDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager(Namespace, "test_player", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager(Namespace, "test_player", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	return &Manager{
		CounterSessionsStarted:   counter("sessions_started", "The total number of started workout sessions"),
		CounterSessionsCompleted: counter("sessions_completed", "The total number of workout sessions played to the end"),
		CounterSessionsAborted:   counter("sessions_aborted", "The total number of workout sessions exited early"),
		CounterExercises: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "exercises",
			Help:      "The total number of exercises finished, by how they ended",
		}, []string{"how"}),
		CounterRecordFailures:    counter("completion_record_failures", "Completion records the progress store rejected"),
		CounterAnnouncerFailures: counter("announcer_failures", "Spoken cues that failed to play"),
		GaugeActiveSession: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_session",
			Help:      "1 while a workout is running or paused",
		}),
		HistSessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "session_duration_seconds",
			Help:      "Wall time from start to completion of a workout",
			Buckets:   []float64{60, 180, 300, 420, 600, 900, 1200, 1800, 3600},
		}),
	}
}

// WriteTextfile dumps every metric of g in the node_exporter textfile format
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
