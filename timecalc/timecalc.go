// Package timecalc reduces chronological enter/exit streams into per-day
// inside/outside durations and holds the calendar helpers the rest of the
// service uses to bucket records by day.
package timecalc

import (
	"sort"
	"time"
)

// DateLayout is the layout of DayDuration.Date.
const DateLayout = "2006-01-02"

// Kind is the state an event moves a user into.
type Kind string

const (
	KindEnter      Kind = "enter"
	KindExit       Kind = "exit"
	KindCheckedIn  Kind = "checked_in"
	KindCheckedOut Kind = "checked_out"
)

// Inside reports whether time following an event of this kind counts as inside.
func (k Kind) Inside() bool {
	return k == KindEnter || k == KindCheckedIn
}

// Outside reports whether time following an event of this kind counts as outside.
func (k Kind) Outside() bool {
	return k == KindExit || k == KindCheckedOut
}

// Event is a single timestamped state transition.
type Event struct {
	Kind Kind
	At   time.Time
}

// DayDuration holds the accumulated minutes of one calendar day.
type DayDuration struct {
	Date           string  `json:"date"`
	InsideMinutes  float64 `json:"insideMinutes"`
	OutsideMinutes float64 `json:"outsideMinutes"`
}

// DaySummary is a DayDuration with the inside and outside minutes added up.
type DaySummary struct {
	DayDuration
	WorkingMinutes float64 `json:"workingMinutes"`
}

// Summary rolls daily figures up over a whole range.
type Summary struct {
	TotalInsideMinutes  float64      `json:"totalInsideMinutes"`
	TotalOutsideMinutes float64      `json:"totalOutsideMinutes"`
	TotalWorkingMinutes float64      `json:"totalWorkingMinutes"`
	DailyData           []DaySummary `json:"dailyData"`
}

type foldState struct {
	lastKind Kind
	lastAt   time.Time
	hasLast  bool
	inside   time.Duration
	outside  time.Duration
}

func (s *foldState) add(ev Event) {
	if s.hasLast {
		gap := ev.At.Sub(s.lastAt)
		switch {
		case s.lastKind.Inside():
			s.inside += gap
		case s.lastKind.Outside():
			s.outside += gap
		}
	}
	s.lastKind = ev.Kind
	s.lastAt = ev.At
	s.hasLast = true
}

// DailyDurations groups events by calendar day in loc and folds each day into
// inside and outside minutes. Repeated events of the same kind are not an
// error; the gap between them is attributed to the state they both denote.
// The input slice is not modified.
func DailyDurations(events []Event, loc *time.Location) []DayDuration {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string][]Event)
	for _, ev := range events {
		key := ev.At.In(loc).Format(DateLayout)
		byDay[key] = append(byDay[key], ev)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	result := make([]DayDuration, 0, len(days))
	for _, day := range days {
		dayEvents := byDay[day]
		sort.SliceStable(dayEvents, func(i, j int) bool {
			return dayEvents[i].At.Before(dayEvents[j].At)
		})

		var state foldState
		for _, ev := range dayEvents {
			state.add(ev)
		}

		result = append(result, DayDuration{
			Date:           day,
			InsideMinutes:  toMinutes(state.inside),
			OutsideMinutes: toMinutes(state.outside),
		})
	}

	return result
}

// Summarize adds per-day working minutes and range totals.
func Summarize(days []DayDuration) Summary {
	summary := Summary{DailyData: make([]DaySummary, 0, len(days))}
	for _, d := range days {
		working := d.InsideMinutes + d.OutsideMinutes
		summary.TotalInsideMinutes += d.InsideMinutes
		summary.TotalOutsideMinutes += d.OutsideMinutes
		summary.TotalWorkingMinutes += working
		summary.DailyData = append(summary.DailyData, DaySummary{
			DayDuration:    d,
			WorkingMinutes: working,
		})
	}
	return summary
}

func toMinutes(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 60000
}
