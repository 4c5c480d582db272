package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
)

var today = calendar.MustParse("2025-06-15")

// logOf builds a habit whose completed days are today minus each offset.
func logOf(label string, offsets ...int) model.Trackable {
	tr := model.Trackable{ID: label, Kind: model.KindHabit, Label: label}
	for _, off := range offsets {
		tr.Completions = append(tr.Completions, model.Completion{
			ItemID:    label,
			Day:       today.AddDays(-off),
			Completed: true,
			Value:     1,
		})
	}
	return tr
}

func TestCurrent_ThreeConsecutiveDaysEndingToday(t *testing.T) {
	assert.Equal(t, 3, Current(logOf("read", 0, 1, 2), today))
}

func TestCurrent_YesterdayCarriesForward(t *testing.T) {
	// Today not yet completed: the streak satisfied through yesterday survives.
	assert.Equal(t, 1, Current(logOf("read", 1), today))
	assert.Equal(t, 4, Current(logOf("read", 1, 2, 3, 4), today))
}

func TestCurrent_GapAtYesterdayResets(t *testing.T) {
	assert.Equal(t, 0, Current(logOf("read", 2), today))
	assert.Equal(t, 0, Current(logOf("read", 2, 3, 4), today))
}

func TestCurrent_StopsAtFirstGap(t *testing.T) {
	assert.Equal(t, 2, Current(logOf("read", 0, 1, 3, 4, 5), today))
}

func TestCurrent_IgnoresIncompleteAndDuplicateEntries(t *testing.T) {
	tr := logOf("pray", 0, 0, 1)
	tr.Completions = append(tr.Completions, model.Completion{Day: today.AddDays(-2), Completed: false})
	assert.Equal(t, 2, Current(tr, today))
}

func TestCurrent_IgnoresFutureDays(t *testing.T) {
	tr := logOf("run", 0, 1)
	tr.Completions = append(tr.Completions, model.Completion{Day: today.AddDays(1), Completed: true})
	assert.Equal(t, 2, Current(tr, today))
}

func TestCompute_EmptyAndNilLogs(t *testing.T) {
	assert.Equal(t, model.StreakResult{BestOwnerLabel: "empty"}, Compute(logOf("empty"), today))
	assert.Equal(t, model.StreakResult{}, Compute(nil, today))
	assert.Equal(t, 0, Current(nil, today))
}

func TestCompute_BestAndTarget(t *testing.T) {
	// 8-day run in the past, 2-day current run.
	tr := logOf("stretch", 0, 1, 10, 11, 12, 13, 14, 15, 16, 17)
	res := Compute(tr, today)
	assert.Equal(t, 2, res.Current)
	assert.Equal(t, 8, res.Best)
	assert.Equal(t, "stretch", res.BestOwnerLabel)
	assert.True(t, res.MetTargetStreak)
	assert.Equal(t, 10, res.ActiveDaysInWindow)
}

func TestCompute_TargetNeedsSevenDays(t *testing.T) {
	res := Compute(logOf("walk", 0, 1, 2, 3, 4, 5), today)
	assert.Equal(t, 6, res.Best)
	assert.False(t, res.MetTargetStreak)

	res = Compute(logOf("walk", 0, 1, 2, 3, 4, 5, 6), today)
	assert.True(t, res.MetTargetStreak)
}

func TestCompute_ActiveDaysWindowIsThirtyDaysInclusive(t *testing.T) {
	res := Compute(logOf("journal", 0, 15, 29, 30, 45), today)
	assert.Equal(t, 3, res.ActiveDaysInWindow)
}

func TestComputeBest_PicksLongestAndFirstOnTie(t *testing.T) {
	logs := []model.Trackable{
		logOf("a", 0, 1, 2),
		logOf("b", 5, 6, 7, 8),
		logOf("c", 20, 21, 22, 23),
	}
	best := ComputeBest(logs)
	assert.Equal(t, BestStreak{Best: 4, OwnerLabel: "b"}, best)

	assert.Equal(t, BestStreak{}, ComputeBest([]model.Trackable(nil)))
}

func TestComputeAll_HabitAndDevotionalShareEngine(t *testing.T) {
	habit := logOf("floss", 0, 1)
	devotional := logOf("psalms", 1, 2, 3)
	devotional.Kind = model.KindDevotional

	results := ComputeAll([]model.Trackable{habit, devotional}, today)
	assert.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Current)
	assert.Equal(t, 3, results[1].Current)
}
