package achievement

import "github.com/tasksnap/backend/domain"

// Rule is one declarative badge definition. Progress maps a stats snapshot
// to partial credit in [0,1]; the badge unlocks the first time progress
// reaches 1. Rules are pure and independent of each other.
type Rule struct {
	ID          string
	Title       string
	Description string
	Progress    func(domain.Stats) float64
}

func countedProgress(count func(domain.Stats) int, threshold int) func(domain.Stats) float64 {
	return func(s domain.Stats) float64 {
		if threshold <= 0 {
			return 1
		}
		return clamp(float64(count(s)) / float64(threshold))
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// DefaultRules is the fixed badge set shipped with the app.
func DefaultRules() []Rule {
	completed := func(s domain.Stats) int { return s.CompletedTotal }
	longest := func(s domain.Stats) int { return s.LongestStreak }

	return []Rule{
		{
			ID:          "first_snap",
			Title:       "First Snap",
			Description: "Complete your first task",
			Progress:    countedProgress(completed, 1),
		},
		{
			ID:          "ten_down",
			Title:       "Ten Down",
			Description: "Complete 10 tasks",
			Progress:    countedProgress(completed, 10),
		},
		{
			ID:          "half_century",
			Title:       "Half Century",
			Description: "Complete 50 tasks",
			Progress:    countedProgress(completed, 50),
		},
		{
			ID:          "on_a_roll",
			Title:       "On a Roll",
			Description: "Keep a 3-day streak",
			Progress:    countedProgress(longest, 3),
		},
		{
			ID:          "week_warrior",
			Title:       "Week Warrior",
			Description: "Keep a 7-day streak",
			Progress:    countedProgress(longest, 7),
		},
		{
			ID:          "monthly_habit",
			Title:       "Monthly Habit",
			Description: "Keep a 30-day streak",
			Progress:    countedProgress(longest, 30),
		},
		{
			ID:          "deep_clean",
			Title:       "Deep Clean",
			Description: "Complete 10 cleaning tasks",
			Progress: countedProgress(func(s domain.Stats) int {
				return s.CompletedIn(domain.CategoryClean)
			}, 10),
		},
		{
			ID:          "handy",
			Title:       "Handy",
			Description: "Complete 10 fix-it tasks",
			Progress: countedProgress(func(s domain.Stats) int {
				return s.CompletedIn(domain.CategoryFix)
			}, 10),
		},
		{
			ID:          "firefighter",
			Title:       "Firefighter",
			Description: "Complete 5 urgent tasks",
			Progress: countedProgress(func(s domain.Stats) int {
				return s.UrgentCompleted
			}, 5),
		},
		{
			ID:          "deep_focus",
			Title:       "Deep Focus",
			Description: "Log 60 focused minutes",
			Progress: countedProgress(func(s domain.Stats) int {
				return s.FocusMinutes
			}, 60),
		},
		{
			ID:          "well_rounded",
			Title:       "Well Rounded",
			Description: "Complete a task in every category",
			Progress: func(s domain.Stats) float64 {
				categories := domain.Categories()
				covered := 0
				for _, c := range categories {
					if s.CompletedIn(c) > 0 {
						covered++
					}
				}
				return clamp(float64(covered) / float64(len(categories)))
			},
		},
	}
}
