package coach

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

// Page names for tview.Pages
const (
	pageHome     = "home"
	pageLearn    = "learn"
	pageWorkouts = "workouts"
	pagePlayer   = "player"
	pageMealPlan = "meal_plan"
	pageProgress = "progress"
	pageNotice   = "notice"
)

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI).
// While Run is active every widget and the fields below are touched only on
// the tview event loop; BaseUIView listeners reach it through onLoop.
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	model       *UIModel
	currentMode UIMode

	// mu guards running, and the widgets while running is false
	mu      sync.Mutex
	running bool
	stopped chan struct{}

	pages    *tview.Pages
	logView  *tview.TextView
	mainFlex *tview.Flex
	menuText *tview.TextView

	homeText *tview.TextView

	articleList *tview.List
	articleText *tview.TextView
	articles    []catalog.Article

	planList    *tview.List
	planDetails *tview.TextView
	plans       []catalog.Plan

	playerText *tview.TextView

	mealList  *tview.List
	mealText  *tview.TextView
	mealPlans []catalog.MealPlan

	progressText *tview.TextView

	notice        *tview.Modal
	noticeVisible bool

	tabWidgets map[UIMode][]tview.Primitive
}

func NewCursesUIView(logger *log.Logger, app *tview.Application, model *UIModel) *CursesUIViewImpl {
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		model:       model,
		currentMode: UIModeHome,
		stopped:     make(chan struct{}),
		tabWidgets:  make(map[UIMode][]tview.Primitive),
	}
}

// onLoop runs f on the event loop through queue and waits for it. Before Run
// and after it returns there is no loop, so f runs inline under mu. Must not
// be called from the event loop itself.
func (ui *CursesUIViewImpl) onLoop(queue func(func()) *tview.Application, f func()) {
	ui.mu.Lock()
	if !ui.running {
		defer ui.mu.Unlock()
		f()
		return
	}
	ui.mu.Unlock()

	done := make(chan struct{})
	go queue(func() {
		f()
		close(done)
	})
	select {
	case <-done:
	case <-ui.stopped:
		// the loop quit before taking f
	}
}

func (ui *CursesUIViewImpl) update(f func()) { ui.onLoop(ui.app.QueueUpdateDraw, f) }

func (ui *CursesUIViewImpl) read(f func()) { ui.onLoop(ui.app.QueueUpdate, f) }

func newTextPanel(title string) *tview.TextView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", title))
	return tv
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// No SetChangedFunc with app.Draw(): BaseUIView draws after every update
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.menuText = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.menuText.SetText(menuLine())

	ui.pages = tview.NewPages()

	ui.initHomeMode()
	ui.initLearnMode()
	ui.initWorkoutsMode(controller)
	ui.initPlayerMode()
	ui.initMealPlanMode()
	ui.initProgressMode()
	ui.initNotice(controller)

	ui.pages.AddPage(pageHome, ui.homeText, true, true)
	ui.pages.AddPage(pageLearn, ui.splitLayout(ui.articleList, ui.articleText), true, false)
	ui.pages.AddPage(pageWorkouts, ui.splitLayout(ui.planList, ui.planDetails), true, false)
	ui.pages.AddPage(pagePlayer, ui.playerText, true, false)
	ui.pages.AddPage(pageMealPlan, ui.splitLayout(ui.mealList, ui.mealText), true, false)
	ui.pages.AddPage(pageProgress, ui.progressText, true, false)
	ui.pages.AddPage(pageNotice, ui.notice, false, false)

	content := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.menuText, 1, 0, false).
		AddItem(ui.pages, 0, 1, true)

	ui.mainFlex = tview.NewFlex().
		AddItem(content, 0, 2, true).
		AddItem(ui.logView, 0, 1, false)

	ui.setFocusForCurrentMode()
}

func menuLine() string {
	parts := make([]string, 0, len(AllUIModes))
	for _, info := range AllUIModes {
		if info.KeyBinding == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("[yellow]%c[white] %s", info.KeyBinding, info.DisplayName))
	}
	return strings.Join(parts, "  |  ") + "  |  [yellow]Esc[white] Quit"
}

func (ui *CursesUIViewImpl) splitLayout(list *tview.List, details *tview.TextView) *tview.Flex {
	return tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(details, 0, 2, false)
}

func (ui *CursesUIViewImpl) initHomeMode() {
	ui.homeText = newTextPanel("Health Coach")
	ui.homeText.SetText("\n  [yellow]Welcome![white]\n\n" +
		"  Small, steady habits are how pre-diabetes is reversed.\n\n" +
		"  [cyan]2[white] Learn how blood sugar works\n" +
		"  [cyan]3[white] Pick a guided workout and follow along\n" +
		"  [cyan]4[white] Read the meal plan guidance\n" +
		"  [cyan]5[white] Check your progress\n")
	ui.tabWidgets[UIModeHome] = []tview.Primitive{ui.homeText}
}

func (ui *CursesUIViewImpl) initLearnMode() {
	ui.articleText = newTextPanel("Article")
	ui.articleList = tview.NewList().
		ShowSecondaryText(true).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.showArticle(index)
		})
	ui.articleList.SetBorder(true).SetTitle(" Learn ")
	ui.tabWidgets[UIModeLearn] = []tview.Primitive{ui.articleList, ui.articleText}
}

func (ui *CursesUIViewImpl) initWorkoutsMode(controller *UIController) {
	ui.planDetails = newTextPanel("Plan Details")
	ui.planList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			if index < 0 || index >= len(ui.plans) {
				return
			}
			ui.logger.Printf("UI: Plan selected: index=%d, name=%s", index, mainText)
			controller.OpenPlan(ui.plans[index].ID)
		}).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.showPlan(index)
			if index >= 0 && index < len(ui.plans) {
				controller.OnPlanHighlighted(ui.plans[index].ID)
			}
		})
	ui.planList.SetBorder(true).SetTitle(" Workouts ")
	ui.tabWidgets[UIModeWorkouts] = []tview.Primitive{ui.planList, ui.planDetails}
}

func (ui *CursesUIViewImpl) initPlayerMode() {
	ui.playerText = newTextPanel("Workout")
	ui.playerText.SetText(formatPlayer(PlayerState{}))
	ui.tabWidgets[UIModePlayer] = []tview.Primitive{ui.playerText}
}

func (ui *CursesUIViewImpl) initMealPlanMode() {
	ui.mealText = newTextPanel("Guidance")
	ui.mealList = tview.NewList().
		ShowSecondaryText(false).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.showMealPlan(index)
		})
	ui.mealList.SetBorder(true).SetTitle(" Meal Plan ")
	ui.tabWidgets[UIModeMealPlan] = []tview.Primitive{ui.mealList, ui.mealText}
}

func (ui *CursesUIViewImpl) initProgressMode() {
	ui.progressText = newTextPanel("Progress")
	ui.progressText.SetText(formatProgress(progress.Summary{}))
	ui.tabWidgets[UIModeProgress] = []tview.Primitive{ui.progressText}
}

func (ui *CursesUIViewImpl) initNotice(controller *UIController) {
	ui.notice = tview.NewModal().
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			ui.logger.Printf("UI: Notice button %q", buttonLabel)
			controller.OnNoticeButton(buttonLabel)
		})
}

// SetPlanList populates the plan selection list
func (ui *CursesUIViewImpl) SetPlanList(plans []catalog.Plan, selectedID string) {
	ui.plans = plans
	ui.planList.Clear()

	selected := 0
	for i, plan := range plans {
		if plan.ID == selectedID {
			selected = i
		}
		ui.planList.AddItem(plan.Name, planSummaryLine(plan), 0, nil)
	}
	if len(plans) > 0 {
		ui.planList.SetCurrentItem(selected)
		ui.showPlan(selected)
	}
}

func (ui *CursesUIViewImpl) showPlan(index int) {
	if index < 0 || index >= len(ui.plans) {
		ui.planDetails.SetText("\n  Select a plan from the list to view details.\n")
		return
	}
	ui.planDetails.SetText(formatPlanDetails(ui.plans[index]))
	ui.planDetails.ScrollToBeginning()
}

func (ui *CursesUIViewImpl) SetArticles(articles []catalog.Article) {
	ui.articles = articles
	ui.articleList.Clear()
	for _, a := range articles {
		ui.articleList.AddItem(a.Title, a.Category, 0, nil)
	}
	ui.showArticle(0)
}

func (ui *CursesUIViewImpl) showArticle(index int) {
	if index < 0 || index >= len(ui.articles) {
		ui.articleText.SetText("")
		return
	}
	ui.articleText.SetText(formatArticle(ui.articles[index]))
	ui.articleText.ScrollToBeginning()
}

func (ui *CursesUIViewImpl) SetMealPlans(mealPlans []catalog.MealPlan) {
	ui.mealPlans = mealPlans
	ui.mealList.Clear()
	for _, m := range mealPlans {
		ui.mealList.AddItem(m.Title, "", 0, nil)
	}
	ui.showMealPlan(0)
}

func (ui *CursesUIViewImpl) showMealPlan(index int) {
	if index < 0 || index >= len(ui.mealPlans) {
		ui.mealText.SetText("")
		return
	}
	ui.mealText.SetText(formatMealPlan(ui.mealPlans[index]))
	ui.mealText.ScrollToBeginning()
}

func (ui *CursesUIViewImpl) UpdatePlayerState(state PlayerState) {
	ui.update(func() { ui.playerText.SetText(formatPlayer(state)) })
}

func (ui *CursesUIViewImpl) UpdateProgress(summary progress.Summary) {
	ui.update(func() { ui.progressText.SetText(formatProgress(summary)) })
}

// ShowNotice opens or closes the modal on top of the current page
func (ui *CursesUIViewImpl) ShowNotice(notice Notice) {
	ui.update(func() { ui.showNotice(notice) })
}

func (ui *CursesUIViewImpl) showNotice(notice Notice) {
	if notice.Kind == NoticeNone {
		ui.noticeVisible = false
		ui.pages.HidePage(pageNotice)
		ui.setFocusForCurrentMode()
		return
	}

	ui.notice.ClearButtons()
	ui.notice.SetText(fmt.Sprintf("%s\n\n%s", notice.Title, notice.Message))
	ui.notice.AddButtons(notice.Buttons())
	ui.noticeVisible = true
	ui.pages.ShowPage(pageNotice)
	ui.app.SetFocus(ui.notice)
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	ui.update(func() { ui.setMode(mode) })
}

func (ui *CursesUIViewImpl) setMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}
	ui.currentMode = mode

	switch mode {
	case UIModeHome:
		ui.pages.SwitchToPage(pageHome)
	case UIModeLearn:
		ui.pages.SwitchToPage(pageLearn)
	case UIModeWorkouts:
		ui.pages.SwitchToPage(pageWorkouts)
	case UIModePlayer:
		ui.pages.SwitchToPage(pagePlayer)
	case UIModeMealPlan:
		ui.pages.SwitchToPage(pageMealPlan)
	case UIModeProgress:
		ui.pages.SwitchToPage(pageProgress)
	}
	if ui.noticeVisible {
		// SwitchToPage hides every other page
		ui.pages.ShowPage(pageNotice)
		ui.app.SetFocus(ui.notice)
		return
	}
	ui.setFocusForCurrentMode()
}

func (ui *CursesUIViewImpl) GetCurrentMode() (mode UIMode) {
	ui.read(func() { mode = ui.currentMode })
	return mode
}

func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	if widgets := ui.tabWidgets[ui.currentMode]; len(widgets) > 0 {
		ui.app.SetFocus(widgets[0])
	}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// The modal owns the keyboard while it is open
		if ui.noticeVisible {
			return event
		}

		if event.Key() == tcell.KeyRune {
			if mode, ok := GetUIModeByKey(event.Rune()); ok {
				controller.OnModeChange(mode)
				return nil
			}
		}

		if event.Key() == tcell.KeyTab {
			widgets := ui.tabWidgets[ui.currentMode]
			for i, w := range widgets {
				if w.HasFocus() {
					ui.app.SetFocus(widgets[(i+1)%len(widgets)])
					break
				}
			}
			return nil
		}

		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		if ui.currentMode == UIModePlayer && event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case ' ':
				controller.TogglePlay()
				return nil
			case 'n':
				controller.SkipExercise()
				return nil
			case 'r':
				controller.ResetWorkout()
				return nil
			case 'q':
				controller.RequestExit()
				return nil
			}
		}

		return event
	})
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() (height int) {
	ui.read(func() { _, _, _, height = ui.logView.GetInnerRect() })
	return height
}

func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, line)
	return err
}

func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	ui.mu.Lock()
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	ui.running = true
	ui.mu.Unlock()

	err := ui.app.Run()

	ui.mu.Lock()
	ui.running = false
	ui.mu.Unlock()
	close(ui.stopped)
	return err
}

func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}
