package coach

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModeHome     UIMode = iota // Welcome screen and key help
	UIModeLearn                  // Educational articles
	UIModeWorkouts               // Plan selection and plan overview
	UIModePlayer                 // Guided workout player
	UIModeMealPlan               // Eating guidance
	UIModeProgress               // Completed exercise summary
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyBinding  rune // The number key to activate this mode, 0 if not reachable by key
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeHome, DisplayName: "Home", KeyBinding: '1'},
	{Mode: UIModeLearn, DisplayName: "Learn", KeyBinding: '2'},
	{Mode: UIModeWorkouts, DisplayName: "Workouts", KeyBinding: '3'},
	{Mode: UIModeMealPlan, DisplayName: "Meal Plan", KeyBinding: '4'},
	{Mode: UIModeProgress, DisplayName: "Progress", KeyBinding: '5'},
	{Mode: UIModePlayer, DisplayName: "Workout Player"},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	if key == 0 {
		return 0, false
	}
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

// NoticeKind selects the buttons of a modal notice
type NoticeKind int

const (
	NoticeNone        NoticeKind = iota
	NoticeError                  // OK
	NoticeConfirmExit            // Cancel, Exit
	NoticeFinished               // Back to Workouts, Do it again!
)

const (
	ButtonOK            = "OK"
	ButtonCancel        = "Cancel"
	ButtonExit          = "Exit"
	ButtonBackToPlans   = "Back to Workouts"
	ButtonPlayAgain     = "Do it again!"
	ExitConfirmTitle    = "Exit Workout?"
	ExitConfirmMessage  = "Are you sure you want to stop this workout?"
	ErrorTitle          = "Error"
	PlanUnavailableText = "Workout plan not found or is empty."
	NoExercisesText     = "No exercises found in this workout plan."
)

// Notice is a modal message waiting for the user
type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
}

// Buttons lists the choices of the notice in display order
func (n Notice) Buttons() []string {
	switch n.Kind {
	case NoticeError:
		return []string{ButtonOK}
	case NoticeConfirmExit:
		return []string{ButtonCancel, ButtonExit}
	case NoticeFinished:
		return []string{ButtonBackToPlans, ButtonPlayAgain}
	default:
		return nil
	}
}
