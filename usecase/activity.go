package usecase

import (
	"context"
	"time"

	"employee_tracker/model"
	"employee_tracker/timecalc"
	"employee_tracker/utils"
)

type ActivityStore interface {
	Insert(ctx context.Context, event *model.ActivityEvent) error
	InsertMany(ctx context.Context, events []*model.ActivityEvent) error
	List(ctx context.Context, userID string, page, limit int64) ([]*model.ActivityEvent, int64, error)
	FindByUserRange(ctx context.Context, userID string, from, to time.Time) ([]*model.ActivityEvent, error)
	GroupByUsers(ctx context.Context, userIDs []string, from, to time.Time) (map[string][]*model.ActivityEvent, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type EmployeeLookup interface {
	FindByWarehouse(ctx context.Context, warehouseID string) ([]*model.User, error)
}

type ActivityService struct {
	activities ActivityStore
	employees  EmployeeLookup
	clock      utils.Clock
	loc        *time.Location
}

func NewActivityService(activities ActivityStore, employees EmployeeLookup, loc *time.Location, clock utils.Clock) *ActivityService {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = utils.RealClock{}
	}
	return &ActivityService{activities: activities, employees: employees, clock: clock, loc: loc}
}

// ActivityEntry is one item of a bulk upload. A zero At means now.
type ActivityEntry struct {
	Kind model.EventKind
	At   time.Time
}

// OutsideTotal is the time an employee spent outside the warehouse on a day.
type OutsideTotal struct {
	UserID         string  `json:"employeeId"`
	Username       string  `json:"employeeName"`
	Email          string  `json:"employeeEmail"`
	OutsideMinutes float64 `json:"totalDuration"`
}

func (s *ActivityService) LogActivity(ctx context.Context, userID string, kind model.EventKind) (*model.ActivityEvent, error) {
	event, err := model.NewActivityEvent(utils.GenerateID(), userID, kind, s.clock.Now())
	if err != nil {
		return nil, invalidInput(err.Error())
	}
	if err := s.activities.Insert(ctx, event); err != nil {
		return nil, upstream("failed to log activity", err)
	}
	return event, nil
}

// BulkLog stores events recorded offline by the mobile app.
func (s *ActivityService) BulkLog(ctx context.Context, userID string, entries []ActivityEntry) ([]*model.ActivityEvent, error) {
	if len(entries) == 0 {
		return nil, invalidInput("at least one activity is required")
	}

	now := s.clock.Now()
	events := make([]*model.ActivityEvent, 0, len(entries))
	for _, entry := range entries {
		at := entry.At
		if at.IsZero() {
			at = now
		}
		event, err := model.NewActivityEvent(utils.GenerateID(), userID, entry.Kind, at)
		if err != nil {
			return nil, invalidInput(err.Error())
		}
		events = append(events, event)
	}

	if err := s.activities.InsertMany(ctx, events); err != nil {
		return nil, upstream("failed to log activities", err)
	}
	return events, nil
}

// ListActivities pages through events of one employee, or of everyone when
// userID is empty.
func (s *ActivityService) ListActivities(ctx context.Context, userID string, page, limit int64) ([]*model.ActivityEvent, int64, error) {
	events, total, err := s.activities.List(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, upstream("failed to fetch activities", err)
	}
	return events, total, nil
}

func (s *ActivityService) DeleteActivity(ctx context.Context, id string) error {
	deleted, err := s.activities.Delete(ctx, id)
	if err != nil {
		return upstream("failed to delete activity", err)
	}
	if !deleted {
		return notFound("activity not found")
	}
	return nil
}

func (s *ActivityService) events(ctx context.Context, userID string, from, to time.Time) ([]timecalc.Event, error) {
	if userID == "" {
		return nil, invalidInput("employee ID is required")
	}
	start := timecalc.StartOfDay(from, s.loc)
	end := timecalc.EndOfDay(to, s.loc)
	if start.After(end) {
		return nil, invalidInput("from must not be after to")
	}

	stored, err := s.activities.FindByUserRange(ctx, userID, start, end)
	if err != nil {
		return nil, upstream("failed to fetch activities", err)
	}

	events := make([]timecalc.Event, 0, len(stored))
	for _, ev := range stored {
		events = append(events, ev.TimecalcEvent())
	}
	return events, nil
}

// GetDailySummary returns inside and outside minutes per day in [from, to].
func (s *ActivityService) GetDailySummary(ctx context.Context, userID string, from, to time.Time) ([]timecalc.DayDuration, error) {
	events, err := s.events(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return timecalc.DailyDurations(events, s.loc), nil
}

// GetActivitySummary is GetDailySummary with per-day working time and totals.
func (s *ActivityService) GetActivitySummary(ctx context.Context, userID string, from, to time.Time) (timecalc.Summary, error) {
	days, err := s.GetDailySummary(ctx, userID, from, to)
	if err != nil {
		return timecalc.Summary{}, err
	}
	return timecalc.Summarize(days), nil
}

// GetOutsideTotals reports, for each employee of the warehouse with activity
// on date, the minutes spent outside.
func (s *ActivityService) GetOutsideTotals(ctx context.Context, date time.Time, warehouseID string) ([]*OutsideTotal, error) {
	if warehouseID == "" {
		return nil, invalidInput("warehouse is required")
	}

	employees, err := s.employees.FindByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, upstream("failed to load employees", err)
	}

	ids := make([]string, 0, len(employees))
	for _, employee := range employees {
		ids = append(ids, employee.UserID)
	}
	start := timecalc.StartOfDay(date, s.loc)
	grouped, err := s.activities.GroupByUsers(ctx, ids, start, timecalc.EndOfDay(date, s.loc))
	if err != nil {
		return nil, upstream("failed to fetch activities", err)
	}

	totals := []*OutsideTotal{}
	for _, employee := range employees {
		stored := grouped[employee.UserID]
		if len(stored) == 0 {
			continue
		}
		events := make([]timecalc.Event, 0, len(stored))
		for _, ev := range stored {
			events = append(events, ev.TimecalcEvent())
		}
		days := timecalc.DailyDurations(events, s.loc)
		if len(days) == 0 {
			continue
		}
		totals = append(totals, &OutsideTotal{
			UserID:         employee.UserID,
			Username:       employee.Username,
			Email:          employee.Email,
			OutsideMinutes: days[0].OutsideMinutes,
		})
	}
	return totals, nil
}
