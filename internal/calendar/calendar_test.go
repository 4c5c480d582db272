package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonthsClamped_EndOfMonth(t *testing.T) {
	assert.Equal(t, MustParse("2025-02-28"), AddMonthsClamped(MustParse("2025-01-31"), 1))
	assert.Equal(t, MustParse("2024-02-29"), AddMonthsClamped(MustParse("2024-01-31"), 1))
	assert.Equal(t, MustParse("2025-04-30"), AddMonthsClamped(MustParse("2025-03-31"), 1))
	assert.Equal(t, MustParse("2024-12-15"), AddMonthsClamped(MustParse("2025-01-15"), -1))
}

func TestCycleAdd_CrossesYear(t *testing.T) {
	c := Cycle{Year: 2025, Month: time.November}
	assert.Equal(t, "2026-01", c.Add(2).Key())
	assert.Equal(t, "2024-12", c.Add(-11).Key())
	assert.Equal(t, 14, c.MonthsUntil(Cycle{Year: 2027, Month: time.January}))
}

func TestCycleDay_Clamps(t *testing.T) {
	feb := Cycle{Year: 2025, Month: time.February}
	assert.Equal(t, 28, feb.Day(31).Day)
	assert.Equal(t, 1, feb.Day(0).Day)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2100, time.February))
	assert.Equal(t, 31, DaysIn(2025, time.December))
}

func TestDateArithmetic(t *testing.T) {
	d := MustParse("2025-03-01")
	assert.Equal(t, MustParse("2025-02-28"), d.AddDays(-1))
	assert.Equal(t, 1, d.DaysSince(MustParse("2025-02-28")))
	assert.True(t, d.After(MustParse("2025-02-28")))
	assert.True(t, MustParse("2024-12-31").Before(d))
	assert.Equal(t, 0, d.Compare(New(2025, time.March, 1)))
}

func TestDateFromTime_UsesOwnLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC).In(loc)
	assert.Equal(t, "2025-06-01", FromTime(ts).String())
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Day   Date  `json:"day"`
		Cycle Cycle `json:"cycle"`
	}
	data, err := json.Marshal(wrapper{Day: MustParse("2025-07-04"), Cycle: Cycle{Year: 2025, Month: 7}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2025-07-04","cycle":"2025-07"}`, string(data))

	var back wrapper
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, MustParse("2025-07-04"), back.Day)
	assert.Equal(t, "2025-07", back.Cycle.Key())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("2025-13-01")
	assert.Error(t, err)
	_, err = ParseCycle("2025/01")
	assert.Error(t, err)
}
