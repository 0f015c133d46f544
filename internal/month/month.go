package month

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Month identifies one calendar billing month (year + month, no day).
type Month struct {
	Year  int
	Month time.Month
}

var ErrInvalidMonth = errors.New("invalid_month")

// Parse reads a month in YYYY-MM form.
func Parse(raw string) (Month, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Month{}, ErrInvalidMonth
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// FromTime truncates a timestamp to its calendar month.
func FromTime(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Time returns the first day of the month in UTC, the canonical storage form.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	return FromTime(m.Time().AddDate(0, 1, 0))
}

// Prev returns the preceding calendar month.
func (m Month) Prev() Month {
	return FromTime(m.Time().AddDate(0, -1, 0))
}

// Compare orders months chronologically: -1, 0 or 1.
func (m Month) Compare(other Month) int {
	a := m.Year*12 + int(m.Month)
	b := other.Year*12 + int(other.Month)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (m Month) Before(other Month) bool { return m.Compare(other) < 0 }

func (m Month) After(other Month) bool { return m.Compare(other) > 0 }

// Range lists every month from from to to inclusive, oldest first.
// An inverted range yields nil.
func Range(from, to Month) []Month {
	if from.After(to) {
		return nil
	}
	months := make([]Month, 0, to.Year*12+int(to.Month)-from.Year*12-int(from.Month)+1)
	for cur := from; !cur.After(to); cur = cur.Next() {
		months = append(months, cur)
	}
	return months
}

// MarshalJSON encodes the month as "YYYY-MM".
func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a "YYYY-MM" string.
func (m *Month) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
