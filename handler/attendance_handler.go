package handler

import (
	"employee_tracker/dto"
	"employee_tracker/middleware"
	"employee_tracker/model"
	"employee_tracker/usecase"
	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	calendar
	service *usecase.AttendanceService
}

func NewAttendanceHandler(service *usecase.AttendanceService, clock utils.Clock) *AttendanceHandler {
	return &AttendanceHandler{calendar: newCalendar(service.Location(), clock), service: service}
}

func canViewOthers(role model.Role) bool {
	return role == model.RoleAdmin || role == model.RoleWarehouseManager
}

// targetUser resolves ?user_id, which only admins and managers may point at
// someone else.
func targetUser(c *gin.Context, requested string) (string, bool) {
	self := middleware.UserID(c)
	if requested == "" || requested == self {
		return self, true
	}
	if !canViewOthers(middleware.Role(c)) {
		utils.Forbidden(c, "You can only view your own attendance")
		return "", false
	}
	return requested, true
}

// Toggle checks the caller in or out depending on today's state.
func (h *AttendanceHandler) Toggle(c *gin.Context) {
	var req dto.ToggleRequest
	if !bindJSON(c, &req, true) {
		return
	}

	device := utils.DeviceLabel(c.Request.UserAgent())
	result, err := h.service.Toggle(c.Request.Context(), middleware.UserID(c), req.Point(), device)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Checked in successfully"
	if result.Transition == usecase.TransitionCheckedOut {
		message = "Checked out successfully"
	}
	utils.Success(c, message, dto.ToggleResponse{
		Status:     string(result.Transition),
		Attendance: dto.ToAttendanceResponse(result.Day, result.User),
	})
}

func (h *AttendanceHandler) Status(c *gin.Context) {
	checkedIn, err := h.service.GetCheckinStatus(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "", dto.StatusResponse{IsCheckedIn: checkedIn})
}

// MyAttendance lists the caller's records; without from/to it covers the
// last 60 days.
func (h *AttendanceHandler) MyAttendance(c *gin.Context) {
	h.list(c, middleware.UserID(c))
}

// List is the admin and manager view over every user, or one with ?user_id.
func (h *AttendanceHandler) List(c *gin.Context) {
	h.list(c, c.Query("user_id"))
}

func (h *AttendanceHandler) list(c *gin.Context, userID string) {
	var q dto.RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "Dates must be formatted as YYYY-MM-DD")
		return
	}

	filter := model.AttendanceFilter{UserID: userID}
	var err error
	if q.From != "" {
		if filter.From, err = h.day(q.From); err != nil {
			utils.BadRequest(c, "Invalid from date")
			return
		}
	}
	if q.To != "" {
		if filter.To, err = h.day(q.To); err != nil {
			utils.BadRequest(c, "Invalid to date")
			return
		}
	}

	ctx := c.Request.Context()
	days, err := h.service.ListAttendance(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	users, err := h.service.UsersByID(ctx, days)
	if err != nil {
		respondError(c, err)
		return
	}
	list := dto.ToAttendanceList(days, users)
	utils.Paginated(c, list, int64(len(list)))
}

func (h *AttendanceHandler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()
	day, err := h.service.GetAttendanceByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if day.UserID != middleware.UserID(c) && !canViewOthers(middleware.Role(c)) {
		// Same answer as a missing record.
		utils.NotFound(c, "attendance record not found")
		return
	}

	users, err := h.service.UsersByID(ctx, []*model.AttendanceDay{day})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "", dto.ToAttendanceResponse(day, users[day.UserID]))
}

// DailySummary returns inside/outside minutes per day from the sessions.
func (h *AttendanceHandler) DailySummary(c *gin.Context) {
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

// Summary reports first check-in and last check-out per employee of a
// warehouse on a day.
func (h *AttendanceHandler) Summary(c *gin.Context) {
	var req dto.WarehouseDayRequest
	if !bindJSON(c, &req, false) {
		return
	}
	date, err := h.day(req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date")
		return
	}

	summaries, err := h.service.GetAttendanceSummary(c.Request.Context(), date, req.WarehouseID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "", summaries)
}

func (h *AttendanceHandler) WarehouseStatus(c *gin.Context) {
	statuses, err := h.service.GetWarehouseStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "", statuses)
}

// Reconcile runs one auto-checkout pass immediately.
func (h *AttendanceHandler) Reconcile(c *gin.Context) {
	result, err := h.service.ReconcileOpenSessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Auto-checkout completed", dto.ReconcileResponse{
		Closed:  result.Closed,
		Skipped: result.Skipped,
		Failed:  result.Failed,
	})
}
