package shiftwindow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

var (
	// ErrMalformedWindow is returned for text that is not "HH:MM-HH:MM"
	ErrMalformedWindow = errors.New("malformed shift window")
	// ErrZeroLengthWindow is returned when start and end are the same time of day
	ErrZeroLengthWindow = errors.New("zero-length shift window")
)

// Window is a time-of-day range such as 08:00-16:30. An end that is not
// later than the start belongs to the following day. The zero value is the
// undefined window, which is never active.
type Window struct {
	start   int
	end     int
	defined bool
	raw     string
}

// Status bundles the live signals of a window for one instant
type Status struct {
	Active           bool    `json:"active"`
	Progress         float64 `json:"progress"`
	MinutesRemaining int     `json:"minutes_remaining"`
}

// Parse reads a "HH:MM-HH:MM" window
func Parse(text string) (Window, error) {
	text = strings.TrimSpace(text)
	startText, endText, ok := strings.Cut(text, "-")
	if !ok {
		return Window{raw: text}, fmt.Errorf("%w: %q has no separator", ErrMalformedWindow, text)
	}

	start, err := parseClock(startText, false)
	if err != nil {
		return Window{raw: text}, fmt.Errorf("%w: start of %q: %v", ErrMalformedWindow, text, err)
	}
	end, err := parseClock(endText, true)
	if err != nil {
		return Window{raw: text}, fmt.Errorf("%w: end of %q: %v", ErrMalformedWindow, text, err)
	}
	if start == end {
		return Window{raw: text}, fmt.Errorf("%w: %q", ErrZeroLengthWindow, text)
	}

	return Window{start: start, end: end, defined: true, raw: text}, nil
}

// FromText parses a window and falls back to the undefined window on error
func FromText(text string) Window {
	w, _ := Parse(text)
	return w
}

// New builds a window from minute-of-day offsets
func New(startMinute, endMinute int) (Window, error) {
	if startMinute < 0 || startMinute >= minutesPerDay || endMinute < 0 || endMinute >= minutesPerDay {
		return Window{}, fmt.Errorf("%w: minute offsets %d-%d out of range", ErrMalformedWindow, startMinute, endMinute)
	}
	if startMinute == endMinute {
		return Window{}, ErrZeroLengthWindow
	}
	w := Window{start: startMinute, end: endMinute, defined: true}
	w.raw = w.String()
	return w, nil
}

// parseClock reads "HH:MM" as minutes after midnight. An end time may be
// written as 24:00, which is midnight of the following day.
func parseClock(s string, end bool) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("missing colon in %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 || (h == 24 && !end) {
		return 0, fmt.Errorf("bad hour %q", hh)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute %q", mm)
	}
	if h == 24 {
		if m != 0 {
			return 0, fmt.Errorf("bad minute %q after 24", mm)
		}
		return 0, nil
	}
	return h*60 + m, nil
}

// Defined reports whether the window parsed successfully
func (w Window) Defined() bool { return w.defined }

// Raw returns the text the window was read from
func (w Window) Raw() string { return w.raw }

// Start returns the start as minutes after midnight
func (w Window) Start() int { return w.start }

// End returns the end as minutes after midnight
func (w Window) End() int { return w.end }

// Overnight reports whether the window crosses midnight
func (w Window) Overnight() bool { return w.defined && w.end <= w.start }

// StartsAtOrAfter reports whether the window starts at or after the given minute of day
func (w Window) StartsAtOrAfter(minuteOfDay int) bool {
	return w.defined && w.start >= minuteOfDay
}

// Duration returns the length of the window, accounting for midnight wraparound
func (w Window) Duration() time.Duration {
	if !w.defined {
		return 0
	}
	mins := w.end - w.start
	if mins <= 0 {
		mins += minutesPerDay
	}
	return time.Duration(mins) * time.Minute
}

func (w Window) String() string {
	if !w.defined {
		return ""
	}
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.start/60, w.start%60, w.end/60, w.end%60)
}

// MarshalText implements encoding.TextMarshaler
func (w Window) MarshalText() ([]byte, error) {
	if !w.defined {
		return []byte(w.raw), nil
	}
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Malformed text yields the
// undefined window rather than an error so one bad record does not reject a
// whole day.
func (w *Window) UnmarshalText(text []byte) error {
	*w = FromText(string(text))
	return nil
}

// UnmarshalJSON accepts any JSON value. Strings are parsed as windows, null
// leaves w unchanged and everything else becomes the undefined window with
// the literal kept as its raw text.
func (w *Window) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err == nil {
			*w = FromText(text)
			return nil
		}
	}
	*w = Window{raw: string(data)}
	return nil
}

// occurrence returns the run of the window that starts on day's calendar date
func (w Window) occurrence(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	start := time.Date(y, m, d, w.start/60, w.start%60, 0, 0, loc)
	end := time.Date(y, m, d, w.end/60, w.end%60, 0, 0, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// span finds the run of the window that contains now. Overnight windows are
// also checked against the run that started the previous day.
func (w Window) span(now time.Time) (time.Time, time.Time, bool) {
	if !w.defined {
		return time.Time{}, time.Time{}, false
	}
	start, end := w.occurrence(now)
	if contains(start, end, now) {
		return start, end, true
	}
	if w.Overnight() {
		start, end = w.occurrence(now.AddDate(0, 0, -1))
		if contains(start, end, now) {
			return start, end, true
		}
	}
	return time.Time{}, time.Time{}, false
}

func contains(start, end, now time.Time) bool {
	return !now.Before(start) && !now.After(end)
}

// IsActive reports whether now falls inside the window, bounds included
func (w Window) IsActive(now time.Time) bool {
	_, _, ok := w.span(now)
	return ok
}

// Progress returns how far through the active run now is, in percent. It is
// 0 whenever the window is not active.
func (w Window) Progress(now time.Time) float64 {
	start, end, ok := w.span(now)
	if !ok {
		return 0
	}
	pct := float64(now.Sub(start)) / float64(end.Sub(start)) * 100
	return math.Max(0, math.Min(100, pct))
}

// MinutesRemaining returns the rounded minutes until the next end of the window
func (w Window) MinutesRemaining(now time.Time) int {
	if !w.defined {
		return 0
	}
	y, m, d := now.Date()
	end := time.Date(y, m, d, w.end/60, w.end%60, 0, 0, now.Location())
	if end.Before(now) {
		end = end.AddDate(0, 0, 1)
	}
	return int(math.Round(end.Sub(now).Minutes()))
}

// Status computes all live signals from a single instant
func (w Window) Status(now time.Time) Status {
	return Status{
		Active:           w.IsActive(now),
		Progress:         w.Progress(now),
		MinutesRemaining: w.MinutesRemaining(now),
	}
}
