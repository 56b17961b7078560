package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

const progressQueryTimeout = 5 * time.Second

var progressRecent int

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List workout plans",
		Args:  cobra.NoArgs,
		RunE:  runPlansCmd,
	}
}

func runPlansCmd(cmd *cobra.Command, _ []string) (err error) {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	return writePlans(cmd.OutOrStdout(), a.catalog)
}

func writePlans(out io.Writer, content *catalog.Catalog) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEXERCISES\tDURATION")
	for _, plan := range content.ListPlans() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			plan.ID, plan.Name, len(plan.Exercises),
			(time.Duration(plan.TotalSeconds()) * time.Second).String())
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newArticlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "articles [ARTICLE_ID]",
		Short: "List articles, or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runArticlesCmd,
	}
}

func runArticlesCmd(cmd *cobra.Command, args []string) (err error) {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	if len(args) == 1 {
		article, err := a.catalog.Article(args[0])
		if err != nil {
			return err
		}
		return writeArticle(cmd.OutOrStdout(), article)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tTITLE")
	for _, article := range a.catalog.Articles() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", article.ID, article.Category, article.Title)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeArticle(out io.Writer, article catalog.Article) error {
	if _, err := fmt.Fprintf(out, "%s\n%s\n", article.Title, article.Category); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, paragraph := range article.Content {
		if _, err := fmt.Fprintf(out, "\n%s\n", paragraph); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show completed exercises",
		Args:  cobra.NoArgs,
		RunE:  runProgressCmd,
	}
	cmd.Flags().IntVar(&progressRecent, "recent", progress.DefaultRecentLimit, "number of recent exercises to list")
	return cmd
}

func runProgressCmd(cmd *cobra.Command, _ []string) (err error) {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	ctx, cancel := context.WithTimeout(cmd.Context(), progressQueryTimeout)
	defer cancel()
	completions, err := a.store.Completions(ctx)
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}

	summary := progress.Summarize(completions, a.catalog.ExerciseName, time.Now(), progressRecent)
	return writeSummary(cmd.OutOrStdout(), summary)
}

func writeSummary(out io.Writer, s progress.Summary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Completed exercises:\t%d\n", s.Total)
	if s.LastCompleted.IsZero() {
		fmt.Fprintln(w, "Last workout:\tnever")
	} else {
		fmt.Fprintf(w, "Last workout:\t%s\n", s.LastCompleted.Local().Format("2006-01-02 15:04"))
	}
	if s.ExercisedToday {
		fmt.Fprintln(w, "Today:\tdone, nice work!")
	} else {
		fmt.Fprintln(w, "Today:\tnot yet")
	}
	if len(s.Recent) > 0 {
		fmt.Fprintln(w, "\nRecent:")
		for _, r := range s.Recent {
			fmt.Fprintf(w, "  %s\t%s\n", r.Name, r.At.Local().Format("2006-01-02 15:04"))
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
