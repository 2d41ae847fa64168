package application

import (
	"time"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

const (
	activityWindowDays = 7
	// weeklyGoalDays is the number of active days per week the goal asks for.
	weeklyGoalDays = 5
)

// DayActivity counts the repositories last pushed on one calendar day.
type DayActivity struct {
	Date    time.Time
	Weekday string // Short name, e.g. "Mon".
	Pushes  int
}

// StreakStats summarises push activity across the repository list.
type StreakStats struct {
	CurrentStreak int // Consecutive days with a push, ending today or yesterday.
	BestStreak    int
	ActiveRepos   int // Repositories pushed within the last 7 days.
	ActiveDays    int // Days with a push within the last 7 days.
	GoalPercent   int // ActiveDays against the weekly goal, capped at 100.
	LastWeek      []DayActivity
}

// ComputeStreaks derives streak metrics from each repository's last push.
// Days are calendar days in now's location.
func ComputeStreaks(repos []model.Repository, now time.Time) StreakStats {
	today := startOfDay(now)
	pushDays := make(map[time.Time]int)
	for _, r := range repos {
		if r.PushedAt.IsZero() {
			continue
		}
		pushDays[startOfDay(r.PushedAt.In(now.Location()))]++
	}

	var stats StreakStats

	weekStart := today.AddDate(0, 0, -(activityWindowDays - 1))
	for i := 0; i < activityWindowDays; i++ {
		day := weekStart.AddDate(0, 0, i)
		n := pushDays[day]
		stats.LastWeek = append(stats.LastWeek, DayActivity{
			Date:    day,
			Weekday: day.Weekday().String()[:3],
			Pushes:  n,
		})
		stats.ActiveRepos += n
		if n > 0 {
			stats.ActiveDays++
		}
	}

	stats.GoalPercent = min(100, stats.ActiveDays*100/weeklyGoalDays)

	// The current streak may start yesterday so a day without a push yet
	// does not reset it.
	day := today
	if pushDays[day] == 0 {
		day = day.AddDate(0, 0, -1)
	}
	for pushDays[day] > 0 {
		stats.CurrentStreak++
		day = day.AddDate(0, 0, -1)
	}

	for d := range pushDays {
		if pushDays[d.AddDate(0, 0, -1)] > 0 {
			continue // not the start of a run
		}
		run := 0
		for cur := d; pushDays[cur] > 0; cur = cur.AddDate(0, 0, 1) {
			run++
		}
		stats.BestStreak = max(stats.BestStreak, run)
	}

	return stats
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
