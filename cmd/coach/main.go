// Command coach is a terminal health coach: workout plans with a guided
// player, short articles, meal plans and a progress overview.
package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/lowaak/health-coach/coach-app/internal/coach"
	"github.com/lowaak/health-coach/coach-app/internal/config"
)

// uiLogLines is the buffer between the logger and the log pane
const uiLogLines = 256

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Terminal health coach with guided workouts",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTUI,
	}
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newPlansCmd())
	rootCmd.AddCommand(newArticlesCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newPlayCmd())

	return rootCmd
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	uiLogChan := make(chan string, uiLogLines)
	a, err := newApp(cmd, uiLogChan)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}
	tviewApp := tview.NewApplication().SetScreen(screen)

	uiModel := coach.NewUIModel(a.logger, uiLogChan)
	workoutManager := coach.NewWorkoutManager(coach.WorkoutManagerArgs{
		Model:        uiModel,
		Store:        a.store,
		Announcer:    a.announcers(coach.NewTerminalBell(screen)),
		Metrics:      a.metrics,
		TickInterval: a.cfg.Player.TickInterval,
		Logger:       a.logger,
	})
	controller := coach.NewUIController(coach.UIControllerArgs{
		Model:          uiModel,
		Catalog:        a.catalog,
		Store:          a.store,
		WorkoutManager: workoutManager,
		DataDir:        a.cfg.DataDir,
		Logger:         a.logger,
	})
	view := coach.NewBaseUIView(coach.NewBaseUIViewArg{
		UIViewImpl:   coach.NewCursesUIView(a.logger, tviewApp, uiModel),
		UIModel:      uiModel,
		UIController: controller,
		Logger:       a.logger,
	})

	a.logger.Println("App: started")
	runErr := view.Run()

	// Stop producers before their listeners
	controller.Shutdown()
	view.Shutdown()
	uiModel.Shutdown()
	a.logger.Println("App: stopped")

	return runErr
}
