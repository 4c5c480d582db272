// Package streak computes consecutive-day completion runs from completion logs.
// Habits and devotional activities both feed it through the Log interface.
package streak

import (
	"sort"

	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
)

const (
	// TargetDays is the best-streak length that counts as meeting the target.
	TargetDays = 7
	// WindowDays is the trailing window, ending today, for ActiveDaysInWindow.
	WindowDays = 30
)

// Log is anything that owns a completion log.
// Implementations: model.Trackable (habits and devotional activities)
type Log interface {
	Name() string
	Entries() []model.Completion
}

// BestStreak is the longest run across a set of logs and the log that owns it.
type BestStreak struct {
	Best       int    `json:"best"`
	OwnerLabel string `json:"owner_label"`
}

// Current returns the length of the run of completed days ending today, or
// ending yesterday when today has not been completed yet.
func Current(log Log, today calendar.Date) int {
	return currentRun(completedDays(log, today), today)
}

// Compute derives the full streak statistics for one log.
func Compute(log Log, today calendar.Date) model.StreakResult {
	days := completedDays(log, today)
	if len(days) == 0 {
		return model.StreakResult{BestOwnerLabel: labelOf(log)}
	}

	best := longestRun(days)
	windowStart := today.AddDays(-(WindowDays - 1))
	active := 0
	for _, d := range days {
		if d.Before(windowStart) {
			break
		}
		active++
	}

	return model.StreakResult{
		Current:            currentRun(days, today),
		Best:               best,
		BestOwnerLabel:     labelOf(log),
		ActiveDaysInWindow: active,
		MetTargetStreak:    best >= TargetDays,
	}
}

// ComputeAll runs Compute over every log, preserving order.
func ComputeAll[L Log](logs []L, today calendar.Date) []model.StreakResult {
	out := make([]model.StreakResult, 0, len(logs))
	for _, l := range logs {
		out = append(out, Compute(l, today))
	}
	return out
}

// ComputeBest returns the longest run found in any of the logs. Ties go to the
// earliest log.
func ComputeBest[L Log](logs []L) BestStreak {
	var best BestStreak
	for _, l := range logs {
		run := longestRun(completedDays(l, calendar.Date{}))
		if run > best.Best {
			best = BestStreak{Best: run, OwnerLabel: labelOf(l)}
		}
	}
	return best
}

// completedDays collapses the log to distinct completed days, newest first.
// A non-zero upTo drops days after it.
func completedDays(log Log, upTo calendar.Date) []calendar.Date {
	if log == nil {
		return nil
	}
	seen := make(map[calendar.Date]struct{})
	var days []calendar.Date
	for _, c := range log.Entries() {
		if !c.Completed || c.Day.IsZero() {
			continue
		}
		if !upTo.IsZero() && c.Day.After(upTo) {
			continue
		}
		if _, ok := seen[c.Day]; ok {
			continue
		}
		seen[c.Day] = struct{}{}
		days = append(days, c.Day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})
	return days
}

// currentRun walks days (newest first) with a cursor starting at today. A
// missing today is not a break if yesterday is present.
func currentRun(days []calendar.Date, today calendar.Date) int {
	if len(days) == 0 {
		return 0
	}

	cursor := today
	if days[0] != today {
		yesterday := today.AddDays(-1)
		if days[0] != yesterday {
			return 0
		}
		cursor = yesterday
	}

	run := 0
	for _, d := range days {
		if d != cursor {
			break
		}
		run++
		cursor = cursor.AddDays(-1)
	}
	return run
}

func longestRun(days []calendar.Date) int {
	if len(days) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].DaysSince(days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

func labelOf(log Log) string {
	if log == nil {
		return ""
	}
	return log.Name()
}
