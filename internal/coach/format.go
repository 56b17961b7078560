package coach

import (
	"fmt"
	"strings"
	"time"

	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/player"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

// formatDuration formats whole seconds for list entries
func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	minutes := int(d.Minutes())
	if minutes == 0 {
		return fmt.Sprintf("%d sec", seconds)
	}
	if rest := seconds % 60; rest > 0 {
		return fmt.Sprintf("%d min %d sec", minutes, rest)
	}
	return fmt.Sprintf("%d min", minutes)
}

// formatTimer pads the countdown to two digits
func formatTimer(seconds int) string {
	return fmt.Sprintf("%02d", seconds)
}

func planSummaryLine(plan catalog.Plan) string {
	return fmt.Sprintf("%d exercises, %s", len(plan.Exercises), formatDuration(plan.TotalSeconds()))
}

func formatPlanDetails(plan catalog.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  [yellow]%s[white]\n\n", plan.Name)
	if plan.Description != "" {
		fmt.Fprintf(&b, "  %s\n\n", plan.Description)
	}
	fmt.Fprintf(&b, "  [gray]Total:[white] %s\n\n", planSummaryLine(plan))

	for i, ex := range plan.Exercises {
		fmt.Fprintf(&b, "  [cyan]%d. %s[white] [gray](%s)[white]\n", i+1, ex.Name, formatDuration(ex.Duration()))
		writeSection(&b, "", ex.Instructions)
		writeSection(&b, "Benefits", ex.Benefits)
		writeSection(&b, "Tips", ex.Tips)
		b.WriteString("\n")
	}
	if len(plan.Exercises) == 0 {
		b.WriteString("  [gray]This plan has no exercises yet.[white]\n")
	} else {
		b.WriteString("  [green]Press Enter to open this workout[white]\n")
	}
	return b.String()
}

func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	if title != "" {
		fmt.Fprintf(b, "     [gray]%s:[white]\n", title)
	}
	for _, line := range lines {
		fmt.Fprintf(b, "     - %s\n", line)
	}
}

func formatArticle(a catalog.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  [yellow]%s[white]\n", a.Title)
	if a.Category != "" {
		fmt.Fprintf(&b, "  [gray]%s[white]\n", a.Category)
	}
	for _, p := range a.Content {
		fmt.Fprintf(&b, "\n  %s\n", p)
	}
	return b.String()
}

func formatMealPlan(m catalog.MealPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  [yellow]%s[white]\n", m.Title)
	for _, p := range m.Content {
		fmt.Fprintf(&b, "\n  %s\n", p)
	}
	return b.String()
}

// formatPlayer renders the player screen
func formatPlayer(state PlayerState) string {
	if !state.Active {
		return "\n  [gray]No workout open[white]\n\n  Pick a plan in Workouts (press 3).\n"
	}

	snap := state.Snapshot
	var b strings.Builder
	b.WriteString("\n")

	title := fmt.Sprintf("  [yellow]%s[white]", state.Plan.Name)
	if snap.Phase == player.PhasePaused {
		title += " [gray](PAUSED)[white]"
	}
	fmt.Fprintf(&b, "%s\n", title)
	if snap.Total > 0 && !snap.Activity.Terminal() {
		fmt.Fprintf(&b, "  [gray]Exercise %d of %d[white]\n", snap.Position+1, snap.Total)
	}
	b.WriteString("\n")

	switch snap.Activity {
	case player.PhaseIdle:
		fmt.Fprintf(&b, "  [gray]First up:[white] %s\n\n", snap.CurrentExerciseName)
		fmt.Fprintf(&b, "  %s\n\n", formatTimer(snap.RemainingSeconds))
		b.WriteString("  [yellow]Space[white] Start  |  [yellow]Esc[white] Back\n")
		return b.String()

	case player.PhaseResting:
		b.WriteString("  [cyan]RESTING[white]\n")
		b.WriteString("  Prepare for the next exercise...\n")
		if snap.NextExerciseName != "" {
			fmt.Fprintf(&b, "\n  [gray]NEXT UP:[white] %s\n", snap.NextExerciseName)
		}

	case player.PhaseExercising:
		fmt.Fprintf(&b, "  [cyan]%s[white]\n", snap.CurrentExerciseName)
		instruction := "Follow the visual instructions."
		if len(snap.Instructions) > 0 {
			instruction = snap.Instructions[0]
		}
		fmt.Fprintf(&b, "  %s\n", instruction)
		fmt.Fprintf(&b, "  [gray]%s[white]\n", visualFor(state.Plan, snap.Position))

	case player.PhaseCompleted:
		b.WriteString("  [green]Workout Complete![white]\n")
		fmt.Fprintf(&b, "  You crushed the \"%s\" plan!\n", state.Plan.Name)
		return b.String()

	case player.PhaseAborted:
		b.WriteString("  [gray]Workout stopped[white]\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\n  [white::b]%s[white::-]\n", formatTimer(snap.RemainingSeconds))

	b.WriteString("\n  [gray]-------------------------[white]\n")
	action := "Pause"
	if !snap.Running {
		action = "Resume"
	}
	fmt.Fprintf(&b, "  [yellow]Space[white] %s  |  [yellow]N[white] Skip  |  [yellow]R[white] Reset  |  [yellow]Esc[white] Exit\n", action)
	return b.String()
}

func visualFor(plan catalog.Plan, position int) string {
	if position < 0 || position >= len(plan.Exercises) {
		return "No visual for this exercise"
	}
	media := plan.Exercises[position].Media
	switch {
	case media.Animation != "":
		return "Visual: " + media.Animation
	case media.Image != "":
		return "Visual: " + media.Image
	default:
		return "No visual for this exercise"
	}
}

// formatProgress renders the progress screen
func formatProgress(s progress.Summary) string {
	var b strings.Builder
	b.WriteString("\n  [yellow]Your Progress[white]\n\n")
	fmt.Fprintf(&b, "  [gray]Total exercises completed:[white] %d\n", s.Total)

	today := "No"
	if s.ExercisedToday {
		today = "Yes"
	}
	fmt.Fprintf(&b, "  [gray]Exercised today:[white] %s\n", today)

	if s.LastCompleted.IsZero() {
		b.WriteString("  [gray]Last completed:[white] never\n")
	} else {
		fmt.Fprintf(&b, "  [gray]Last completed:[white] %s\n", s.LastCompleted.Local().Format("2006-01-02"))
	}

	b.WriteString("\n  [cyan]Recently Completed[white]\n")
	if len(s.Recent) == 0 {
		b.WriteString("  [gray]No exercises completed yet. Start a workout![white]\n")
		return b.String()
	}
	for _, r := range s.Recent {
		fmt.Fprintf(&b, "  %s [gray]%s[white]\n", r.Name, r.At.Local().Format("2006-01-02 15:04"))
	}
	return b.String()
}
