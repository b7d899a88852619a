package model

import (
	"errors"
	"time"
)

// Session is one check-in/check-out interval within an AttendanceDay.
type Session struct {
	CheckIn  time.Time  `bson:"check_in" json:"checkInTime"`
	CheckOut *time.Time `bson:"check_out" json:"checkOutTime"`
	Device   string     `bson:"device,omitempty" json:"device,omitempty"`
}

// Open reports whether the session has no check-out yet.
func (s Session) Open() bool {
	return s.CheckOut == nil
}

// AttendanceDay is the attendance record of one user for one calendar day.
type AttendanceDay struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Date        time.Time `bson:"date" json:"date"`
	Sessions    []Session `bson:"sessions" json:"sessions"`
	IsCheckedIn bool      `bson:"is_checked_in" json:"isCheckedIn"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// NewAttendanceDay seeds a day with a single open session.
func NewAttendanceDay(id, userID string, date, checkIn time.Time, device string) *AttendanceDay {
	return &AttendanceDay{
		ID:          id,
		UserID:      userID,
		Date:        date,
		Sessions:    []Session{{CheckIn: checkIn, Device: device}},
		IsCheckedIn: true,
		CreatedAt:   checkIn,
		UpdatedAt:   checkIn,
	}
}

// LastSession returns the most recent session, or nil for an empty day.
func (d *AttendanceDay) LastSession() *Session {
	if len(d.Sessions) == 0 {
		return nil
	}
	return &d.Sessions[len(d.Sessions)-1]
}

// FirstCheckIn returns the earliest check-in of the day.
func (d *AttendanceDay) FirstCheckIn() *time.Time {
	if len(d.Sessions) == 0 {
		return nil
	}
	first := d.Sessions[0].CheckIn
	return &first
}

// LastCheckOut returns the check-out of the last closed session.
func (d *AttendanceDay) LastCheckOut() *time.Time {
	for i := len(d.Sessions) - 1; i >= 0; i-- {
		if out := d.Sessions[i].CheckOut; out != nil {
			last := *out
			return &last
		}
	}
	return nil
}

// WorkedDuration sums closed sessions. Open sessions are counted up to now.
func (d *AttendanceDay) WorkedDuration(now time.Time) time.Duration {
	var total time.Duration
	for _, s := range d.Sessions {
		end := now
		if s.CheckOut != nil {
			end = *s.CheckOut
		}
		if end.After(s.CheckIn) {
			total += end.Sub(s.CheckIn)
		}
	}
	return total
}

var (
	ErrNoSessions          = errors.New("attendance day has no sessions")
	ErrCheckedInMismatch   = errors.New("isCheckedIn does not match the last session")
	ErrInnerSessionOpen    = errors.New("only the last session may be open")
	ErrCheckOutBeforeCheck = errors.New("check-out precedes check-in")
)

// Validate checks the session invariants of the day.
func (d *AttendanceDay) Validate() error {
	if len(d.Sessions) == 0 {
		return ErrNoSessions
	}
	for i, s := range d.Sessions {
		if s.CheckOut != nil && s.CheckOut.Before(s.CheckIn) {
			return ErrCheckOutBeforeCheck
		}
		if s.Open() && i != len(d.Sessions)-1 {
			return ErrInnerSessionOpen
		}
	}
	if d.IsCheckedIn != d.LastSession().Open() {
		return ErrCheckedInMismatch
	}
	return nil
}
