package main

import (
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/lowaak/health-coach/coach-app/internal/announcer"
	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/config"
	"github.com/lowaak/health-coach/coach-app/internal/logging"
	"github.com/lowaak/health-coach/coach-app/internal/metrics"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

// app holds everything a command needs. close releases it in reverse order.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	log      *logging.Logger
	catalog  *catalog.Catalog
	store    progress.Store
	registry *prometheus.Registry
	metrics  *metrics.Manager
	speech   *announcer.CommandAnnouncer // nil without speech.command
}

// newApp loads configuration and opens the shared resources. uiLines, when
// set, receives a copy of every log line.
func newApp(cmd *cobra.Command, uiLines chan<- string) (*app, error) {
	cfg, err := config.Load(viper.New(), cmd.Flags())
	if err != nil {
		return nil, err
	}

	lg, err := logging.New(logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		UILines:    uiLines,
	})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: lg, logger: lg.Logger}
	if cfg.File != "" {
		a.logger.Printf("Config: loaded %s", cfg.File)
	}

	if cfg.Catalog.Path != "" {
		a.catalog, err = catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("loading catalog: %w", err), a.close())
		}
		a.logger.Printf("Catalog: loaded %s", cfg.Catalog.Path)
	} else {
		a.catalog = catalog.Default()
	}
	for _, w := range a.catalog.Warnings() {
		a.logger.Printf("Catalog: %s", w)
	}

	a.store, err = progress.Open(cfg.Store.Backend, cfg.Store.Path, a.logger)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("opening progress store: %w", err), a.close())
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.NewManager(metrics.Namespace, metrics.Subsystem, a.registry)

	if cfg.Speech.Command != "" {
		a.speech = announcer.NewCommandAnnouncer(announcer.CommandArgs{
			Run:       announcer.ExecRunner(cfg.Speech.Command, cfg.Speech.Args...),
			OnFailure: func(error) { a.metrics.CounterAnnouncerFailures.Inc() },
			Logger:    a.logger,
		})
	}

	return a, nil
}

// announcers returns the configured speech output plus extra
func (a *app) announcers(extra ...announcer.Announcer) announcer.Announcer {
	all := announcer.Multi{announcer.NewLogAnnouncer(a.logger)}
	if a.speech != nil {
		all = append(all, a.speech)
	}
	return append(all, extra...)
}

func (a *app) close() error {
	var err error
	if a.speech != nil {
		err = multierr.Append(err, a.speech.Close())
	}
	if a.store != nil {
		err = multierr.Append(err, a.store.Close())
	}
	if a.registry != nil && a.cfg.Metrics.Textfile != "" {
		err = multierr.Append(err, metrics.WriteTextfile(a.registry, a.cfg.Metrics.Textfile))
	}
	if err != nil {
		a.logger.Printf("App: shutdown errors: %v", err)
	}
	if n := a.log.Dropped(); n > 0 {
		a.logger.Printf("App: %d log lines did not reach the log pane", n)
	}
	return multierr.Append(err, a.log.Close())
}
