package usecase

import (
	"context"
	"log"

	"employee_tracker/timecalc"
	"employee_tracker/utils"
)

type ReconcileFailure struct {
	DayID  string
	UserID string
	Err    error
}

// ReconcileResult counts what one auto-checkout pass did. Skipped records
// were checked out by their owner while the pass was running.
type ReconcileResult struct {
	Closed   int
	Skipped  int
	Failed   int
	Failures []ReconcileFailure
}

// ReconcileOpenSessions closes every session still open today at the current
// time. A failure on one record does not stop the others; running it twice is
// harmless since the second pass finds nothing open.
func (s *AttendanceService) ReconcileOpenSessions(ctx context.Context) (ReconcileResult, error) {
	var result ReconcileResult

	now := s.clock.Now()
	date := timecalc.StartOfDay(now, s.loc)

	open, err := s.attendance.FindOpenDays(ctx, date)
	if err != nil {
		return result, upstream("failed to load open attendance records", err)
	}

	for _, day := range open {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		checkOut := now
		if last := day.LastSession(); last != nil && checkOut.Before(last.CheckIn) {
			checkOut = last.CheckIn
		}

		updated, err := s.attendance.CloseLastSession(ctx, day, checkOut)
		if err != nil {
			log.Printf("auto-checkout: failed to close %s for user %s: %v", day.ID, day.UserID, err)
			utils.AutoCheckouts.WithLabelValues("failed").Inc()
			result.Failed++
			result.Failures = append(result.Failures, ReconcileFailure{DayID: day.ID, UserID: day.UserID, Err: err})
			continue
		}
		if updated == nil {
			result.Skipped++
			continue
		}

		utils.AutoCheckouts.WithLabelValues("closed").Inc()
		result.Closed++
		s.rememberStatus(ctx, day.UserID, updated)
	}

	if result.Closed == 0 && result.Failed == 0 {
		log.Println("auto-checkout: no employees to check out")
	} else {
		log.Printf("auto-checkout: closed %d sessions, %d failed", result.Closed, result.Failed)
	}
	return result, nil
}
