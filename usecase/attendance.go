package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"employee_tracker/model"
	"employee_tracker/repository"
	"employee_tracker/timecalc"
	"employee_tracker/utils"
)

const (
	maxToggleAttempts = 5

	notifyQueueSize = 256
	notifyTimeout   = 15 * time.Second

	// DefaultHistoryDays is the window ListAttendance uses without a from date.
	DefaultHistoryDays = 60
)

// AttendanceStore is the persistence the attendance service needs.
// CloseLastSession and OpenSession return nil, nil when the stored record no
// longer matches the one passed in.
type AttendanceStore interface {
	FindDay(ctx context.Context, userID string, date time.Time) (*model.AttendanceDay, error)
	FindByID(ctx context.Context, id string) (*model.AttendanceDay, error)
	CreateDay(ctx context.Context, day *model.AttendanceDay) error
	CloseLastSession(ctx context.Context, day *model.AttendanceDay, at time.Time) (*model.AttendanceDay, error)
	OpenSession(ctx context.Context, day *model.AttendanceDay, session model.Session) (*model.AttendanceDay, error)
	FindOpenDays(ctx context.Context, date time.Time) ([]*model.AttendanceDay, error)
	ListDays(ctx context.Context, filter model.AttendanceFilter) ([]*model.AttendanceDay, error)
	ListDaysForUsers(ctx context.Context, date time.Time, userIDs []string) ([]*model.AttendanceDay, error)
}

type UserLookup interface {
	FindUser(ctx context.Context, userID string) (*model.User, error)
	FindUsersByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	FindAdmins(ctx context.Context) ([]*model.User, error)
	FindByWarehouse(ctx context.Context, warehouseID string) ([]*model.User, error)
	WarehouseEmployeesStatus(ctx context.Context, warehouseID string, date time.Time) ([]*model.EmployeeStatus, error)
}

type WarehouseLookup interface {
	FindWarehouse(ctx context.Context, id string) (*model.Warehouse, error)
}

// Notifier delivers a push message to a device token.
type Notifier interface {
	Notify(ctx context.Context, message, token string) error
}

// StatusCache remembers whether a user is checked in on a given day.
// SetStatus must not replace an entry with a newer updatedAt.
type StatusCache interface {
	GetStatus(ctx context.Context, userID string, date time.Time) (checkedIn bool, found bool, err error)
	SetStatus(ctx context.Context, userID string, date time.Time, checkedIn bool, updatedAt time.Time) error
}

type adminNotice struct {
	user       *model.User
	transition Transition
}

type AttendanceService struct {
	attendance AttendanceStore
	users      UserLookup
	warehouses WarehouseLookup
	notifier   Notifier
	cache      StatusCache
	clock      utils.Clock
	loc        *time.Location
	radiusKm   float64

	notices     chan adminNotice
	noticesMu   sync.RWMutex
	noticesDone chan struct{}
	closed      bool
}

type AttendanceOption func(*AttendanceService)

func WithNotifier(n Notifier) AttendanceOption {
	return func(s *AttendanceService) { s.notifier = n }
}

func WithStatusCache(c StatusCache) AttendanceOption {
	return func(s *AttendanceService) { s.cache = c }
}

func WithClock(c utils.Clock) AttendanceOption {
	return func(s *AttendanceService) { s.clock = c }
}

func WithGeofenceRadius(km float64) AttendanceOption {
	return func(s *AttendanceService) { s.radiusKm = km }
}

// NewAttendanceService wires the service. loc is the zone that defines a
// calendar day; the geofence radius defaults to 200 metres.
func NewAttendanceService(attendance AttendanceStore, users UserLookup, warehouses WarehouseLookup, loc *time.Location, opts ...AttendanceOption) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	s := &AttendanceService{
		attendance: attendance,
		users:      users,
		warehouses: warehouses,
		clock:      utils.RealClock{},
		loc:        loc,
		radiusKm:   0.2,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier != nil {
		s.notices = make(chan adminNotice, notifyQueueSize)
		s.noticesDone = make(chan struct{})
		go s.notifyLoop()
	}
	return s
}

// Shutdown stops accepting notifications and waits for the queued ones to
// be sent or for ctx to expire.
func (s *AttendanceService) Shutdown(ctx context.Context) error {
	if s.notices == nil {
		return nil
	}
	s.noticesMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.notices)
	}
	s.noticesMu.Unlock()

	select {
	case <-s.noticesDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Location is the zone calendar days are computed in.
func (s *AttendanceService) Location() *time.Location {
	return s.loc
}

type Transition string

const (
	TransitionCheckedIn  Transition = "checked_in"
	TransitionCheckedOut Transition = "checked_out"
)

type ToggleResult struct {
	Day        *model.AttendanceDay
	User       *model.User
	Transition Transition
}

// Toggle checks the user in if they are out today, or out if they are in.
// The caller must be within the geofence of their assigned warehouse.
func (s *AttendanceService) Toggle(ctx context.Context, userID string, coords *utils.Point, device string) (*ToggleResult, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, upstream("failed to load user", err)
	}
	if user == nil {
		return nil, notFound("user not found")
	}
	if user.AssignedWarehouse == "" {
		return nil, notFound("no warehouse assigned to user")
	}

	warehouse, err := s.warehouses.FindWarehouse(ctx, user.AssignedWarehouse)
	if err != nil {
		return nil, upstream("failed to load warehouse", err)
	}
	if warehouse == nil {
		return nil, notFound("assigned warehouse not found")
	}

	if err := s.checkGeofence(coords, warehouse.Location); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		result, err := s.applyToggle(ctx, userID, device)
		if err != nil {
			return nil, err
		}
		if result == nil {
			utils.ToggleConflicts.Inc()
			continue
		}

		result.User = user
		utils.AttendanceToggles.WithLabelValues(string(result.Transition)).Inc()
		s.rememberStatus(ctx, userID, result.Day)
		s.enqueueNotice(user, result.Transition)
		return result, nil
	}

	utils.TrackError("attendance", "toggle_conflict")
	return nil, conflict("attendance record was modified concurrently, please retry")
}

func (s *AttendanceService) checkGeofence(coords *utils.Point, site utils.Point) error {
	if coords == nil || !coords.Valid() {
		utils.GeofenceRejections.WithLabelValues("invalid_location").Inc()
		return invalidInput("location permission required")
	}

	distance, err := utils.DistanceKm(*coords, site)
	if err != nil || distance > s.radiusKm {
		utils.GeofenceRejections.WithLabelValues("too_far").Inc()
		return &Error{
			Kind:    KindGeofenceViolation,
			Message: fmt.Sprintf("distance must be under %d metres", int(math.Round(s.radiusKm*1000))),
			Err:     err,
		}
	}
	return nil
}

// applyToggle performs one read-modify-write round. A nil result without an
// error means another writer got there first.
func (s *AttendanceService) applyToggle(ctx context.Context, userID, device string) (*ToggleResult, error) {
	now := s.clock.Now()
	date := timecalc.StartOfDay(now, s.loc)

	day, err := s.attendance.FindDay(ctx, userID, date)
	if err != nil {
		return nil, upstream("failed to load attendance", err)
	}

	if day == nil {
		fresh := model.NewAttendanceDay(utils.GenerateID(), userID, date, now, device)
		if err := s.attendance.CreateDay(ctx, fresh); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, nil
			}
			return nil, upstream("failed to save attendance", err)
		}
		return &ToggleResult{Day: fresh, Transition: TransitionCheckedIn}, nil
	}

	if day.IsCheckedIn {
		checkOut := now
		if last := day.LastSession(); last != nil && checkOut.Before(last.CheckIn) {
			checkOut = last.CheckIn
		}
		updated, err := s.attendance.CloseLastSession(ctx, day, checkOut)
		if err != nil {
			return nil, upstream("failed to save attendance", err)
		}
		if updated == nil {
			return nil, nil
		}
		return &ToggleResult{Day: updated, Transition: TransitionCheckedOut}, nil
	}

	updated, err := s.attendance.OpenSession(ctx, day, model.Session{CheckIn: now, Device: device})
	if err != nil {
		return nil, upstream("failed to save attendance", err)
	}
	if updated == nil {
		return nil, nil
	}
	return &ToggleResult{Day: updated, Transition: TransitionCheckedIn}, nil
}

func (s *AttendanceService) rememberStatus(ctx context.Context, userID string, day *model.AttendanceDay) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetStatus(ctx, userID, day.Date, day.IsCheckedIn, day.UpdatedAt); err != nil {
		log.Printf("Warning: failed to cache check-in status for %s: %v", userID, err)
	}
}

// enqueueNotice hands the notification to the background sender. A toggle
// never waits on the notifier; when the queue is full the notice is dropped.
func (s *AttendanceService) enqueueNotice(user *model.User, transition Transition) {
	if s.notices == nil {
		return
	}
	s.noticesMu.RLock()
	defer s.noticesMu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.notices <- adminNotice{user: user, transition: transition}:
	default:
		log.Printf("Warning: notification queue full, dropping notice for %s", user.UserID)
		utils.Notifications.WithLabelValues("dropped").Inc()
	}
}

func (s *AttendanceService) notifyLoop() {
	defer close(s.noticesDone)
	for n := range s.notices {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		s.notifyAdmins(ctx, n.user, n.transition)
		cancel()
	}
}

func (s *AttendanceService) notifyAdmins(ctx context.Context, user *model.User, transition Transition) {
	admins, err := s.users.FindAdmins(ctx)
	if err != nil {
		log.Printf("Warning: failed to load admins for notification: %v", err)
		utils.Notifications.WithLabelValues("failed").Inc()
		return
	}

	verb := "checked in"
	if transition == TransitionCheckedOut {
		verb = "checked out"
	}
	message := fmt.Sprintf("%s has %s", user.Username, verb)

	for _, admin := range admins {
		if admin.AppToken == "" {
			utils.Notifications.WithLabelValues("skipped").Inc()
			continue
		}
		if err := s.notifier.Notify(ctx, message, admin.AppToken); err != nil {
			log.Printf("Warning: failed to notify admin %s: %v", admin.UserID, err)
			utils.Notifications.WithLabelValues("failed").Inc()
			continue
		}
		utils.Notifications.WithLabelValues("queued").Inc()
	}
}

// GetCheckinStatus reports whether the user has an open session today.
func (s *AttendanceService) GetCheckinStatus(ctx context.Context, userID string) (bool, error) {
	date := timecalc.StartOfDay(s.clock.Now(), s.loc)

	if s.cache != nil {
		checkedIn, found, err := s.cache.GetStatus(ctx, userID, date)
		if err != nil {
			log.Printf("Warning: status cache lookup failed: %v", err)
		}
		utils.TrackCacheOperation("checkin_status", found)
		if err == nil && found {
			return checkedIn, nil
		}
	}

	day, err := s.attendance.FindDay(ctx, userID, date)
	if err != nil {
		return false, upstream("failed to load attendance", err)
	}
	if day == nil {
		return false, nil
	}
	s.rememberStatus(ctx, userID, day)
	return day.IsCheckedIn, nil
}

func (s *AttendanceService) dateRange(from, to time.Time) (time.Time, time.Time, error) {
	start := timecalc.StartOfDay(from, s.loc)
	end := timecalc.StartOfDay(to, s.loc)
	if start.After(end) {
		return time.Time{}, time.Time{}, invalidInput("from must not be after to")
	}
	return start, end, nil
}

// GetDailySummary folds the user's sessions in [from, to] into per-day
// inside (checked in) and outside (between sessions) minutes.
func (s *AttendanceService) GetDailySummary(ctx context.Context, userID string, from, to time.Time) ([]timecalc.DayDuration, error) {
	start, end, err := s.dateRange(from, to)
	if err != nil {
		return nil, err
	}

	days, err := s.attendance.ListDays(ctx, model.AttendanceFilter{UserID: userID, From: start, To: end})
	if err != nil {
		return nil, upstream("failed to load attendance", err)
	}

	var events []timecalc.Event
	for _, day := range days {
		for _, session := range day.Sessions {
			events = append(events, timecalc.Event{Kind: timecalc.KindCheckedIn, At: session.CheckIn})
			if session.CheckOut != nil {
				events = append(events, timecalc.Event{Kind: timecalc.KindCheckedOut, At: *session.CheckOut})
			}
		}
	}

	return timecalc.DailyDurations(events, s.loc), nil
}

// GetWarehouseStatus lists the employees of a warehouse with today's
// check-in state.
func (s *AttendanceService) GetWarehouseStatus(ctx context.Context, warehouseID string) ([]*model.EmployeeStatus, error) {
	warehouse, err := s.warehouses.FindWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, upstream("failed to load warehouse", err)
	}
	if warehouse == nil {
		return nil, notFound("warehouse not found")
	}

	date := timecalc.StartOfDay(s.clock.Now(), s.loc)
	statuses, err := s.users.WarehouseEmployeesStatus(ctx, warehouseID, date)
	if err != nil {
		return nil, upstream("failed to load warehouse status", err)
	}
	if statuses == nil {
		statuses = []*model.EmployeeStatus{}
	}
	return statuses, nil
}

// GetAttendanceSummary returns first check-in, last check-out and the span
// between them for every employee of the warehouse who has a record on date.
func (s *AttendanceService) GetAttendanceSummary(ctx context.Context, date time.Time, warehouseID string) ([]*model.AttendanceSummary, error) {
	if warehouseID == "" {
		return nil, invalidInput("warehouse is required")
	}

	employees, err := s.users.FindByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, upstream("failed to load employees", err)
	}

	byID := make(map[string]*model.User, len(employees))
	ids := make([]string, 0, len(employees))
	for _, u := range employees {
		byID[u.UserID] = u
		ids = append(ids, u.UserID)
	}

	days, err := s.attendance.ListDaysForUsers(ctx, timecalc.StartOfDay(date, s.loc), ids)
	if err != nil {
		return nil, upstream("failed to load attendance", err)
	}

	summaries := make([]*model.AttendanceSummary, 0, len(days))
	for _, day := range days {
		summary := &model.AttendanceSummary{
			UserID:       day.UserID,
			FirstCheckIn: day.FirstCheckIn(),
			LastCheckOut: day.LastCheckOut(),
		}
		if u, ok := byID[day.UserID]; ok {
			summary.Username = u.Username
		}
		if summary.FirstCheckIn != nil && summary.LastCheckOut != nil {
			summary.TotalMinutes = int64(math.Round(summary.LastCheckOut.Sub(*summary.FirstCheckIn).Minutes()))
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListAttendance returns records in the filter's range, newest first. A zero
// From defaults to DefaultHistoryDays before To; a zero To means today.
func (s *AttendanceService) ListAttendance(ctx context.Context, filter model.AttendanceFilter) ([]*model.AttendanceDay, error) {
	if filter.To.IsZero() {
		filter.To = s.clock.Now()
	}
	if filter.From.IsZero() {
		filter.From = filter.To.AddDate(0, 0, -DefaultHistoryDays)
	}

	start, end, err := s.dateRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	filter.From, filter.To = start, end

	days, err := s.attendance.ListDays(ctx, filter)
	if err != nil {
		return nil, upstream("failed to load attendance", err)
	}
	return days, nil
}

// UsersByID resolves the owners of a set of records for response population.
func (s *AttendanceService) UsersByID(ctx context.Context, days []*model.AttendanceDay) (map[string]*model.User, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, d := range days {
		if !seen[d.UserID] {
			seen[d.UserID] = true
			ids = append(ids, d.UserID)
		}
	}

	users, err := s.users.FindUsersByIDs(ctx, ids)
	if err != nil {
		return nil, upstream("failed to load users", err)
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.UserID] = u
	}
	return byID, nil
}

func (s *AttendanceService) GetAttendanceByID(ctx context.Context, id string) (*model.AttendanceDay, error) {
	day, err := s.attendance.FindByID(ctx, id)
	if err != nil {
		return nil, upstream("failed to load attendance", err)
	}
	if day == nil {
		return nil, notFound("attendance record not found")
	}
	return day, nil
}
