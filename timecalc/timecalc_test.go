package timecalc_test

import (
	"reflect"
	"testing"
	"time"

	"employee_tracker/timecalc"
)

var kolkata = time.FixedZone("IST", 5*3600+1800)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, kolkata)
}

func TestDailyDurations(t *testing.T) {
	tests := []struct {
		name   string
		events []timecalc.Event
		want   []timecalc.DayDuration
	}{
		{
			name: "enter then exit",
			events: []timecalc.Event{
				{Kind: timecalc.KindEnter, At: at(2, 9, 0)},
				{Kind: timecalc.KindExit, At: at(2, 17, 0)},
			},
			want: []timecalc.DayDuration{{Date: "2026-03-02", InsideMinutes: 480, OutsideMinutes: 0}},
		},
		{
			name: "exit enter exit",
			events: []timecalc.Event{
				{Kind: timecalc.KindExit, At: at(2, 9, 0)},
				{Kind: timecalc.KindEnter, At: at(2, 12, 0)},
				{Kind: timecalc.KindExit, At: at(2, 13, 0)},
			},
			want: []timecalc.DayDuration{{Date: "2026-03-02", InsideMinutes: 60, OutsideMinutes: 180}},
		},
		{
			name: "unsorted input",
			events: []timecalc.Event{
				{Kind: timecalc.KindExit, At: at(2, 13, 0)},
				{Kind: timecalc.KindExit, At: at(2, 9, 0)},
				{Kind: timecalc.KindEnter, At: at(2, 12, 0)},
			},
			want: []timecalc.DayDuration{{Date: "2026-03-02", InsideMinutes: 60, OutsideMinutes: 180}},
		},
		{
			name: "repeated kind is tolerated",
			events: []timecalc.Event{
				{Kind: timecalc.KindEnter, At: at(2, 9, 0)},
				{Kind: timecalc.KindEnter, At: at(2, 10, 0)},
				{Kind: timecalc.KindExit, At: at(2, 11, 30)},
			},
			want: []timecalc.DayDuration{{Date: "2026-03-02", InsideMinutes: 150, OutsideMinutes: 0}},
		},
		{
			name: "attendance kinds",
			events: []timecalc.Event{
				{Kind: timecalc.KindCheckedIn, At: at(3, 8, 0)},
				{Kind: timecalc.KindCheckedOut, At: at(3, 12, 0)},
				{Kind: timecalc.KindCheckedIn, At: at(3, 12, 45)},
				{Kind: timecalc.KindCheckedOut, At: at(3, 18, 0)},
			},
			want: []timecalc.DayDuration{{Date: "2026-03-03", InsideMinutes: 555, OutsideMinutes: 45}},
		},
		{
			name: "days are bucketed separately",
			events: []timecalc.Event{
				{Kind: timecalc.KindEnter, At: at(4, 9, 0)},
				{Kind: timecalc.KindEnter, At: at(3, 9, 0)},
				{Kind: timecalc.KindExit, At: at(3, 9, 30)},
				{Kind: timecalc.KindExit, At: at(4, 10, 0)},
			},
			want: []timecalc.DayDuration{
				{Date: "2026-03-03", InsideMinutes: 30},
				{Date: "2026-03-04", InsideMinutes: 60},
			},
		},
		{
			name:   "no events",
			events: nil,
			want:   []timecalc.DayDuration{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timecalc.DailyDurations(tt.events, kolkata)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DailyDurations() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDailyDurationsIsDeterministic(t *testing.T) {
	events := []timecalc.Event{
		{Kind: timecalc.KindExit, At: at(5, 9, 0)},
		{Kind: timecalc.KindEnter, At: at(5, 9, 20)},
		{Kind: timecalc.KindExit, At: at(6, 11, 0)},
		{Kind: timecalc.KindEnter, At: at(6, 14, 0)},
	}
	original := append([]timecalc.Event(nil), events...)

	first := timecalc.DailyDurations(events, kolkata)
	for i := 0; i < 5; i++ {
		if got := timecalc.DailyDurations(events, kolkata); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
	if !reflect.DeepEqual(events, original) {
		t.Error("input events were modified")
	}
}

func TestDailyDurationsUsesLocation(t *testing.T) {
	// 20:00 UTC on the 2nd is 01:30 IST on the 3rd.
	events := []timecalc.Event{
		{Kind: timecalc.KindEnter, At: time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)},
		{Kind: timecalc.KindExit, At: time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC)},
	}

	got := timecalc.DailyDurations(events, kolkata)
	if len(got) != 1 || got[0].Date != "2026-03-03" {
		t.Errorf("expected a single 2026-03-03 bucket, got %+v", got)
	}

	got = timecalc.DailyDurations(events, time.UTC)
	if len(got) != 1 || got[0].Date != "2026-03-02" {
		t.Errorf("expected a single 2026-03-02 bucket, got %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	days := []timecalc.DayDuration{
		{Date: "2026-03-02", InsideMinutes: 60, OutsideMinutes: 180},
		{Date: "2026-03-03", InsideMinutes: 480},
	}

	got := timecalc.Summarize(days)

	if got.TotalInsideMinutes != 540 || got.TotalOutsideMinutes != 180 || got.TotalWorkingMinutes != 720 {
		t.Errorf("unexpected totals: %+v", got)
	}
	if len(got.DailyData) != 2 || got.DailyData[0].WorkingMinutes != 240 || got.DailyData[1].WorkingMinutes != 480 {
		t.Errorf("unexpected daily data: %+v", got.DailyData)
	}

	empty := timecalc.Summarize(nil)
	if empty.TotalWorkingMinutes != 0 || empty.DailyData == nil || len(empty.DailyData) != 0 {
		t.Errorf("expected zero summary with empty daily data, got %+v", empty)
	}
}

func TestStartAndEndOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC) // 01:30 IST on the 3rd

	start := timecalc.StartOfDay(ts, kolkata)
	if want := time.Date(2026, 3, 3, 0, 0, 0, 0, kolkata); !start.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", start, want)
	}

	end := timecalc.EndOfDay(ts, kolkata)
	if want := time.Date(2026, 3, 3, 23, 59, 59, 999999999, kolkata); !end.Equal(want) {
		t.Errorf("EndOfDay = %v, want %v", end, want)
	}

	if !timecalc.SameDay(start, end, kolkata) {
		t.Error("start and end of the same day should be SameDay")
	}
}

func TestParseDate(t *testing.T) {
	got, err := timecalc.ParseDate("2026-03-02", kolkata)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2026, 3, 2, 0, 0, 0, 0, kolkata); !got.Equal(want) {
		t.Errorf("ParseDate = %v, want %v", got, want)
	}

	if _, err := timecalc.ParseDate("02/03/2026", kolkata); err == nil {
		t.Error("expected error for malformed date")
	}
}
