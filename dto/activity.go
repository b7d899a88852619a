package dto

import (
	"time"

	"employee_tracker/model"
)

type ActivityRequest struct {
	EventName string `json:"eventName" binding:"omitempty,oneof=enter exit"`
}

type BulkActivityItem struct {
	EventName string    `json:"eventName" binding:"required,oneof=enter exit"`
	CreatedAt time.Time `json:"createdAt"`
}

type BulkActivityRequest struct {
	Activities []BulkActivityItem `json:"activities" binding:"required,min=1,max=500,dive"`
}

type PageQuery struct {
	Page  int64 `form:"page" binding:"omitempty,min=1"`
	Limit int64 `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Normalize fills in the defaults of the mobile client.
func (q *PageQuery) Normalize() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
}

type ActivityResponse struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employeeId"`
	EventName  model.EventKind `json:"eventName"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func ToActivityResponse(ev *model.ActivityEvent) ActivityResponse {
	return ActivityResponse{
		ID:         ev.ID,
		EmployeeID: ev.UserID,
		EventName:  ev.Kind,
		CreatedAt:  ev.CreatedAt,
	}
}

func ToActivityList(events []*model.ActivityEvent) []ActivityResponse {
	list := make([]ActivityResponse, 0, len(events))
	for _, ev := range events {
		list = append(list, ToActivityResponse(ev))
	}
	return list
}
