package model

import "time"

// EmployeeStatus is a warehouse employee's check-in state for today.
type EmployeeStatus struct {
	UserID      string `bson:"user_id" json:"userId"`
	Username    string `bson:"username" json:"username"`
	Email       string `bson:"email" json:"email"`
	IsCheckedIn bool   `bson:"is_checked_in" json:"isCheckedIn"`
}

// AttendanceSummary is one employee's first and last movement on a day.
type AttendanceSummary struct {
	UserID       string     `json:"userId"`
	Username     string     `json:"username"`
	FirstCheckIn *time.Time `json:"firstCheckIn"`
	LastCheckOut *time.Time `json:"lastCheckOut"`
	TotalMinutes int64      `json:"totalDuration"`
}

// AttendanceFilter narrows attendance listings.
type AttendanceFilter struct {
	UserID string
	From   time.Time
	To     time.Time
}
