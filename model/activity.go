package model

import (
	"errors"
	"time"

	"employee_tracker/timecalc"
)

// EventKind is the direction of a geofence crossing.
type EventKind string

const (
	EventEnter EventKind = "enter"
	EventExit  EventKind = "exit"
)

var ErrInvalidEventKind = errors.New("event kind must be enter or exit")

// ActivityEvent records an employee entering or leaving the warehouse area.
type ActivityEvent struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"employeeId"`
	Kind      EventKind `bson:"event_name" json:"eventName"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// NewActivityEvent builds an event, defaulting an empty kind to exit.
func NewActivityEvent(id, userID string, kind EventKind, at time.Time) (*ActivityEvent, error) {
	if kind == "" {
		kind = EventExit
	}
	if kind != EventEnter && kind != EventExit {
		return nil, ErrInvalidEventKind
	}
	if userID == "" {
		return nil, errors.New("employee ID is required")
	}
	return &ActivityEvent{ID: id, UserID: userID, Kind: kind, CreatedAt: at}, nil
}

// TimecalcEvent converts the event for duration aggregation.
func (e *ActivityEvent) TimecalcEvent() timecalc.Event {
	return timecalc.Event{Kind: timecalc.Kind(e.Kind), At: e.CreatedAt}
}
