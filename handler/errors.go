package handler

import (
	"errors"
	"io"
	"log"

	"employee_tracker/usecase"
	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the response helpers.
func respondError(c *gin.Context, err error) {
	msg := usecase.MessageOf(err)
	switch usecase.KindOf(err) {
	case usecase.KindNotFound:
		utils.NotFound(c, msg)
	case usecase.KindInvalidInput:
		utils.TrackError("validation", "invalid_input")
		utils.BadRequest(c, msg)
	case usecase.KindGeofenceViolation, usecase.KindForbidden:
		utils.Forbidden(c, msg)
	case usecase.KindConflict:
		utils.Conflict(c, msg)
	case usecase.KindUnauthorized:
		utils.Unauthorized(c, msg)
	case usecase.KindUpstream:
		log.Printf("Error: %s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.TrackError("upstream", c.FullPath())
		utils.BadGateway(c, msg)
	default:
		log.Printf("Error: %s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.TrackError("internal", c.FullPath())
		utils.InternalError(c, "Internal server error")
	}
}

// bindJSON binds the body into req. An empty body binds to the zero value
// when allowEmpty is set.
func bindJSON(c *gin.Context, req interface{}, allowEmpty bool) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		utils.TrackError("validation", "invalid_request")
		utils.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}
