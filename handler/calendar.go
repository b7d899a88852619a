package handler

import (
	"time"

	"employee_tracker/dto"
	"employee_tracker/timecalc"
	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

// calendar interprets request dates in the service's reference zone.
type calendar struct {
	loc   *time.Location
	clock utils.Clock
}

func newCalendar(loc *time.Location, clock utils.Clock) calendar {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = utils.RealClock{}
	}
	return calendar{loc: loc, clock: clock}
}

// day parses YYYY-MM-DD; an empty value means today.
func (cal calendar) day(value string) (time.Time, error) {
	if value == "" {
		return timecalc.StartOfDay(cal.clock.Now(), cal.loc), nil
	}
	return timecalc.ParseDate(value, cal.loc)
}

// rangeFromQuery reads ?user_id&from&to. Both dates default to today.
func (cal calendar) rangeFromQuery(c *gin.Context) (string, time.Time, time.Time, bool) {
	var q dto.RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "Dates must be formatted as YYYY-MM-DD")
		return "", time.Time{}, time.Time{}, false
	}
	userID, ok := targetUser(c, q.UserID)
	if !ok {
		return "", time.Time{}, time.Time{}, false
	}

	from, err := cal.day(q.From)
	if err != nil {
		utils.BadRequest(c, "Invalid from date")
		return "", time.Time{}, time.Time{}, false
	}
	to, err := cal.day(q.To)
	if err != nil {
		utils.BadRequest(c, "Invalid to date")
		return "", time.Time{}, time.Time{}, false
	}
	return userID, from, to, true
}
