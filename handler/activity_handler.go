package handler

import (
	"time"

	"employee_tracker/dto"
	"employee_tracker/middleware"
	"employee_tracker/model"
	"employee_tracker/usecase"
	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

// ActivityHandler serves the geofence enter/exit log of the mobile app.
type ActivityHandler struct {
	calendar
	service *usecase.ActivityService
}

func NewActivityHandler(service *usecase.ActivityService, loc *time.Location, clock utils.Clock) *ActivityHandler {
	return &ActivityHandler{calendar: newCalendar(loc, clock), service: service}
}

func (h *ActivityHandler) Log(c *gin.Context) {
	var req dto.ActivityRequest
	if !bindJSON(c, &req, true) {
		return
	}

	event, err := h.service.LogActivity(c.Request.Context(), middleware.UserID(c), model.EventKind(req.EventName))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Activity logged", dto.ToActivityResponse(event))
}

func (h *ActivityHandler) BulkLog(c *gin.Context) {
	var req dto.BulkActivityRequest
	if !bindJSON(c, &req, false) {
		return
	}

	entries := make([]usecase.ActivityEntry, 0, len(req.Activities))
	for _, item := range req.Activities {
		entries = append(entries, usecase.ActivityEntry{Kind: model.EventKind(item.EventName), At: item.CreatedAt})
	}

	events, err := h.service.BulkLog(c.Request.Context(), middleware.UserID(c), entries)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Activities logged", dto.ToActivityList(events))
}

// ListAll pages through every employee's events, newest first.
func (h *ActivityHandler) ListAll(c *gin.Context) {
	h.list(c, "")
}

func (h *ActivityHandler) ListByEmployee(c *gin.Context) {
	userID, ok := targetUser(c, c.Param("employeeId"))
	if !ok {
		return
	}
	h.list(c, userID)
}

func (h *ActivityHandler) list(c *gin.Context, userID string) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "Invalid pagination parameters")
		return
	}
	q.Normalize()

	events, total, err := h.service.ListActivities(c.Request.Context(), userID, q.Page, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Paginated(c, dto.ToActivityList(events), total)
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteActivity(c.Request.Context(), c.Param("activityId")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Activity deleted", nil)
}

func (h *ActivityHandler) Daily(c *gin.Context) {
	userID, from, to, ok := h.rangeFromQuery(c)
	if !ok {
		return
	}
	days, err := h.service.GetDailySummary(c.Request.Context(), userID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "", days)
}

func (h *ActivityHandler) Summary(c *gin.Context) {
	userID, from, to, ok := h.rangeFromQuery(c)
	if !ok {
		return
	}
	summary, err := h.service.GetActivitySummary(c.Request.Context(), userID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "", summary)
}

// TotalTime reports the minutes each employee of a warehouse spent outside
// on a day.
func (h *ActivityHandler) TotalTime(c *gin.Context) {
	var req dto.WarehouseDayRequest
	if !bindJSON(c, &req, false) {
		return
	}
	date, err := h.day(req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date")
		return
	}

	totals, err := h.service.GetOutsideTotals(c.Request.Context(), date, req.WarehouseID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "", totals)
}
