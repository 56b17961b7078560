package progress

import (
	"sort"
	"time"
)

// DefaultRecentLimit is how many recent completions a summary lists
const DefaultRecentLimit = 5

// RecentCompletion is the newest completion of one exercise
type RecentCompletion struct {
	ExerciseID string
	Name       string
	At         time.Time
}

// Summary is the aggregated view shown on the progress screen
type Summary struct {
	Total          int
	LastCompleted  time.Time // zero if nothing was ever completed
	ExercisedToday bool
	Recent         []RecentCompletion
}

// Summarize aggregates completions. name resolves an exercise ID for display,
// now decides what "today" is (in now's location) and limit caps Recent
// (DefaultRecentLimit when <= 0).
func Summarize(c Completions, name func(id string) string, now time.Time, limit int) Summary {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var s Summary
	for id, ts := range c {
		if len(ts) == 0 {
			continue
		}
		s.Total += len(ts)

		newest := ts[0]
		for _, t := range ts[1:] {
			if t.After(newest) {
				newest = t
			}
		}
		if newest.After(s.LastCompleted) {
			s.LastCompleted = newest
		}
		s.Recent = append(s.Recent, RecentCompletion{ExerciseID: id, Name: name(id), At: newest})
	}

	sort.Slice(s.Recent, func(i, j int) bool {
		if s.Recent[i].At.Equal(s.Recent[j].At) {
			return s.Recent[i].ExerciseID < s.Recent[j].ExerciseID
		}
		return s.Recent[i].At.After(s.Recent[j].At)
	})
	if len(s.Recent) > limit {
		s.Recent = s.Recent[:limit]
	}

	if !s.LastCompleted.IsZero() {
		s.ExercisedToday = sameDay(s.LastCompleted.In(now.Location()), now)
	}
	return s
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
