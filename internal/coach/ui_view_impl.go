package coach

import (
	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

// UIViewImpl defines the interface for framework-specific UI implementations
type UIViewImpl interface {
	// Initialize is called after construction to set up framework-specific widgets
	// controller is used to handle UI events
	Initialize(controller *UIController)

	// SetupKeyboardHandlers sets up keyboard event handlers
	SetupKeyboardHandlers(controller *UIController)

	// Run starts the UI framework and blocks until it exits
	Run() error

	Stop()

	// Draw refreshes/redraws the UI
	Draw() error

	// --- Mode Management ---

	SetMode(mode UIMode)
	GetCurrentMode() UIMode

	// --- Log View (shared across modes) ---

	GetLogViewHeight() int
	ClearLogView()
	WriteLogLine(line string) error

	// --- Content ---

	// SetPlanList populates the plan selection list and highlights selectedID
	SetPlanList(plans []catalog.Plan, selectedID string)
	SetArticles(articles []catalog.Article)
	SetMealPlans(mealPlans []catalog.MealPlan)

	// --- Player Mode ---

	UpdatePlayerState(state PlayerState)

	// --- Progress Mode ---

	UpdateProgress(summary progress.Summary)

	// ShowNotice opens a modal, or closes it for a notice of Kind NoticeNone
	ShowNotice(notice Notice)
}
