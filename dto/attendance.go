package dto

import (
	"time"

	"employee_tracker/model"
	"employee_tracker/utils"
)

// ToggleRequest carries the caller's current position. Missing coordinates
// are allowed through binding so the service can report them.
type ToggleRequest struct {
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`
}

func (r ToggleRequest) Point() *utils.Point {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &utils.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type AttendanceResponse struct {
	ID          string          `json:"id"`
	User        *UserResponse   `json:"user"`
	Date        time.Time       `json:"date"`
	Sessions    []model.Session `json:"sessions"`
	IsCheckedIn bool            `json:"isCheckedIn"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ToggleResponse struct {
	Status     string             `json:"status"`
	Attendance AttendanceResponse `json:"attendance"`
}

// ToAttendanceResponse populates user when it is known.
func ToAttendanceResponse(day *model.AttendanceDay, user *model.User) AttendanceResponse {
	resp := AttendanceResponse{
		ID:          day.ID,
		Date:        day.Date,
		Sessions:    day.Sessions,
		IsCheckedIn: day.IsCheckedIn,
		CreatedAt:   day.CreatedAt,
		UpdatedAt:   day.UpdatedAt,
	}
	if resp.Sessions == nil {
		resp.Sessions = []model.Session{}
	}
	if user != nil {
		u := ToUserResponse(user)
		resp.User = &u
	}
	return resp
}

func ToAttendanceList(days []*model.AttendanceDay, users map[string]*model.User) []AttendanceResponse {
	list := make([]AttendanceResponse, 0, len(days))
	for _, day := range days {
		list = append(list, ToAttendanceResponse(day, users[day.UserID]))
	}
	return list
}

type StatusResponse struct {
	IsCheckedIn bool `json:"isCheckedIn"`
}

// RangeQuery selects a user and an inclusive YYYY-MM-DD date range.
type RangeQuery struct {
	UserID string `form:"user_id"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// WarehouseDayRequest names a warehouse and a YYYY-MM-DD day.
type WarehouseDayRequest struct {
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	WarehouseID string `json:"warehouseId" binding:"required"`
}

type ReconcileResponse struct {
	Closed  int `json:"closed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
