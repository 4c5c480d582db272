package calendar

import (
	"fmt"
	"time"
)

// Cycle identifies one calendar month, used as a billing statement key.
type Cycle struct {
	Year  int
	Month time.Month
}

// ParseCycle reads a "YYYY-MM" key.
func ParseCycle(s string) (Cycle, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Cycle{}, fmt.Errorf("parsing cycle %q: %w", s, err)
	}
	return Cycle{Year: t.Year(), Month: t.Month()}, nil
}

// Add moves the cycle by n months.
func (c Cycle) Add(n int) Cycle {
	idx := c.Year*12 + int(c.Month) - 1 + n
	return Cycle{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

// MonthsUntil returns how many months separate c from other (other - c).
func (c Cycle) MonthsUntil(other Cycle) int {
	return (other.Year*12 + int(other.Month)) - (c.Year*12 + int(c.Month))
}

// Day returns the given day within the cycle, clamped to the month length.
func (c Cycle) Day(day int) Date {
	if day < 1 {
		day = 1
	}
	if n := DaysIn(c.Year, c.Month); day > n {
		day = n
	}
	return Date{Year: c.Year, Month: c.Month, Day: day}
}

// Key returns the "YYYY-MM" form.
func (c Cycle) Key() string {
	return fmt.Sprintf("%04d-%02d", c.Year, int(c.Month))
}

func (c Cycle) String() string {
	return c.Key()
}

// MarshalText implements encoding.TextMarshaler.
func (c Cycle) MarshalText() ([]byte, error) {
	return []byte(c.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cycle) UnmarshalText(b []byte) error {
	parsed, err := ParseCycle(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
