package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"employee_tracker/model"
	"employee_tracker/repository"
	"employee_tracker/utils"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func cloneDay(d *model.AttendanceDay) *model.AttendanceDay {
	c := *d
	c.Sessions = make([]model.Session, len(d.Sessions))
	for i, s := range d.Sessions {
		c.Sessions[i] = s
		if s.CheckOut != nil {
			out := *s.CheckOut
			c.Sessions[i].CheckOut = &out
		}
	}
	return &c
}

// fakeAttendance mimics the conditional updates of the Mongo repository.
type fakeAttendance struct {
	mu        sync.Mutex
	days      map[string]*model.AttendanceDay
	failClose map[string]bool
	staleCAS  bool
	err       error
	writes    int
}

func newFakeAttendance() *fakeAttendance {
	return &fakeAttendance{days: map[string]*model.AttendanceDay{}, failClose: map[string]bool{}}
}

func (f *fakeAttendance) FindDay(_ context.Context, userID string, date time.Time) (*model.AttendanceDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, d := range f.days {
		if d.UserID == userID && d.Date.Equal(date) {
			return cloneDay(d), nil
		}
	}
	return nil, nil
}

func (f *fakeAttendance) FindByID(_ context.Context, id string) (*model.AttendanceDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.days[id]; ok {
		return cloneDay(d), nil
	}
	return nil, nil
}

func (f *fakeAttendance) CreateDay(_ context.Context, day *model.AttendanceDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := day.Validate(); err != nil {
		return err
	}
	for _, d := range f.days {
		if d.UserID == day.UserID && d.Date.Equal(day.Date) {
			return fmt.Errorf("failed to create attendance day: %w", repository.ErrDuplicate)
		}
	}
	f.days[day.ID] = cloneDay(day)
	f.writes++
	return nil
}

func (f *fakeAttendance) CloseLastSession(_ context.Context, day *model.AttendanceDay, at time.Time) (*model.AttendanceDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClose[day.ID] {
		return nil, errors.New("write failed")
	}
	stored, ok := f.days[day.ID]
	if f.staleCAS || !ok || !stored.IsCheckedIn || len(stored.Sessions) != len(day.Sessions) {
		return nil, nil
	}
	out := at
	stored.Sessions[len(stored.Sessions)-1].CheckOut = &out
	stored.IsCheckedIn = false
	stored.UpdatedAt = at
	f.writes++
	return cloneDay(stored), nil
}

func (f *fakeAttendance) OpenSession(_ context.Context, day *model.AttendanceDay, session model.Session) (*model.AttendanceDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.days[day.ID]
	if f.staleCAS || !ok || stored.IsCheckedIn || len(stored.Sessions) != len(day.Sessions) {
		return nil, nil
	}
	stored.Sessions = append(stored.Sessions, session)
	stored.IsCheckedIn = true
	stored.UpdatedAt = session.CheckIn
	f.writes++
	return cloneDay(stored), nil
}

func (f *fakeAttendance) FindOpenDays(_ context.Context, date time.Time) ([]*model.AttendanceDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var open []*model.AttendanceDay
	for _, d := range f.days {
		if d.IsCheckedIn && d.Date.Equal(date) {
			open = append(open, cloneDay(d))
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].UserID < open[j].UserID })
	return open, nil
}

func (f *fakeAttendance) ListDays(_ context.Context, filter model.AttendanceFilter) ([]*model.AttendanceDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	days := []*model.AttendanceDay{}
	for _, d := range f.days {
		if filter.UserID != "" && d.UserID != filter.UserID {
			continue
		}
		if !filter.From.IsZero() && d.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && d.Date.After(filter.To) {
			continue
		}
		days = append(days, cloneDay(d))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.After(days[j].Date) })
	return days, nil
}

func (f *fakeAttendance) ListDaysForUsers(_ context.Context, date time.Time, userIDs []string) ([]*model.AttendanceDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range userIDs {
		wanted[id] = true
	}
	days := []*model.AttendanceDay{}
	for _, d := range f.days {
		if wanted[d.UserID] && d.Date.Equal(date) {
			days = append(days, cloneDay(d))
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].UserID < days[j].UserID })
	return days, nil
}

// put stores a day directly, bypassing the toggle.
func (f *fakeAttendance) put(d *model.AttendanceDay) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days[d.ID] = cloneDay(d)
}

func (f *fakeAttendance) only(userID string) *model.AttendanceDay {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.days {
		if d.UserID == userID {
			return cloneDay(d)
		}
	}
	return nil
}

type fakeUsers struct {
	mu         sync.Mutex
	users      map[string]*model.User
	attendance *fakeAttendance
	err        error
}

func newFakeUsers(attendance *fakeAttendance, users ...*model.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*model.User{}, attendance: attendance}
	for _, u := range users {
		f.users[u.UserID] = u
	}
	return f
}

func (f *fakeUsers) sorted(keep func(*model.User) bool) []*model.User {
	out := []*model.User{}
	for _, u := range f.users {
		if keep(u) {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (f *fakeUsers) AddUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("failed to add user: %w", repository.ErrDuplicate)
		}
	}
	c := *user
	f.users[user.UserID] = &c
	return nil
}

func (f *fakeUsers) FindUser(_ context.Context, userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[userID]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (f *fakeUsers) FindByLogin(_ context.Context, login string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == login || u.Email == login {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) ListUsers(_ context.Context, filter model.UserFilter) ([]*model.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.sorted(func(u *model.User) bool {
		return (filter.Role == "" || u.Role == filter.Role) &&
			(filter.Warehouse == "" || u.AssignedWarehouse == filter.Warehouse)
	})
	return list, int64(len(list)), nil
}

func (f *fakeUsers) FindUsersByIDs(_ context.Context, ids []string) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	return f.sorted(func(u *model.User) bool { return wanted[u.UserID] }), nil
}

func (f *fakeUsers) FindAdmins(_ context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(u *model.User) bool { return u.Role == model.RoleAdmin && u.IsActive }), nil
}

func (f *fakeUsers) FindByWarehouse(_ context.Context, warehouseID string) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(u *model.User) bool {
		return u.AssignedWarehouse == warehouseID && u.Role != model.RoleAdmin
	}), nil
}

func (f *fakeUsers) WarehouseEmployeesStatus(ctx context.Context, warehouseID string, date time.Time) ([]*model.EmployeeStatus, error) {
	employees, _ := f.FindByWarehouse(ctx, warehouseID)
	statuses := []*model.EmployeeStatus{}
	for _, u := range employees {
		status := &model.EmployeeStatus{UserID: u.UserID, Username: u.Username, Email: u.Email}
		if day, _ := f.attendance.FindDay(ctx, u.UserID, date); day != nil {
			status.IsCheckedIn = day.IsCheckedIn
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, user *model.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.UserID]; !ok {
		return false, nil
	}
	for _, u := range f.users {
		if u.UserID != user.UserID && (u.Username == user.Username || u.Email == user.Email) {
			return false, fmt.Errorf("failed to update user: %w", repository.ErrDuplicate)
		}
	}
	c := *user
	f.users[user.UserID] = &c
	return true, nil
}

func (f *fakeUsers) UpdateAppToken(_ context.Context, userID, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	u.AppToken = token
	return true, nil
}

func (f *fakeUsers) DeleteUserByID(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return false, nil
	}
	delete(f.users, userID)
	return true, nil
}

func (f *fakeUsers) UpdateUserPassword(_ context.Context, userID, hashed string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if ok {
		u.Password = hashed
	}
	return ok, nil
}

func (f *fakeUsers) CountWarehouseEmployees(_ context.Context, warehouseID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, u := range f.users {
		if u.AssignedWarehouse == warehouseID && u.Role == model.RoleEmployee && u.IsActive {
			count++
		}
	}
	return count, nil
}

type fakeWarehouses struct {
	mu         sync.Mutex
	warehouses map[string]*model.Warehouse
}

func newFakeWarehouses(ws ...*model.Warehouse) *fakeWarehouses {
	f := &fakeWarehouses{warehouses: map[string]*model.Warehouse{}}
	for _, w := range ws {
		f.warehouses[w.WarehouseID] = w
	}
	return f
}

func (f *fakeWarehouses) AddWarehouse(_ context.Context, w *model.Warehouse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.warehouses {
		if existing.Name == w.Name {
			return fmt.Errorf("failed to add warehouse: %w", repository.ErrDuplicate)
		}
	}
	c := *w
	f.warehouses[w.WarehouseID] = &c
	return nil
}

func (f *fakeWarehouses) FindWarehouse(_ context.Context, id string) (*model.Warehouse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.warehouses[id]; ok {
		c := *w
		return &c, nil
	}
	return nil, nil
}

func (f *fakeWarehouses) ListWarehouses(_ context.Context) ([]*model.Warehouse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := []*model.Warehouse{}
	for _, w := range f.warehouses {
		c := *w
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (f *fakeWarehouses) UpdateWarehouse(_ context.Context, w *model.Warehouse) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.warehouses[w.WarehouseID]
	if !ok {
		return false, nil
	}
	c := *w
	c.TotalEmployees, c.Managers = existing.TotalEmployees, existing.Managers
	f.warehouses[w.WarehouseID] = &c
	return true, nil
}

func (f *fakeWarehouses) SetTotalEmployees(_ context.Context, id string, total int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.warehouses[id]; ok {
		w.TotalEmployees = int(total)
	}
	return nil
}

func (f *fakeWarehouses) AddManager(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.warehouses[id]
	if !ok {
		return nil
	}
	for _, m := range w.Managers {
		if m == userID {
			return nil
		}
	}
	w.Managers = append(append([]string(nil), w.Managers...), userID)
	return nil
}

func (f *fakeWarehouses) RemoveManager(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.warehouses[id]
	if !ok {
		return nil
	}
	kept := []string{}
	for _, m := range w.Managers {
		if m != userID {
			kept = append(kept, m)
		}
	}
	w.Managers = kept
	return nil
}

func (f *fakeWarehouses) DeleteWarehouse(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.warehouses[id]; !ok {
		return false, nil
	}
	delete(f.warehouses, id)
	return true, nil
}

type sentNotification struct {
	Message string
	Token   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, message, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotification{Message: message, Token: token})
	return nil
}

type cachedStatus struct {
	checkedIn bool
	updatedAt time.Time
}

// fakeStatusCache keeps the newest entry per key the way RedisStatusCache does.
type fakeStatusCache struct {
	mu      sync.Mutex
	entries map[string]cachedStatus
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{entries: map[string]cachedStatus{}}
}

func (f *fakeStatusCache) key(userID string, date time.Time) string {
	return fmt.Sprintf("%s:%d", userID, date.Unix())
}

func (f *fakeStatusCache) GetStatus(_ context.Context, userID string, date time.Time) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[f.key(userID, date)]
	return v.checkedIn, ok, nil
}

func (f *fakeStatusCache) SetStatus(_ context.Context, userID string, date time.Time, checkedIn bool, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.key(userID, date)
	if existing, ok := f.entries[key]; ok {
		if existing.updatedAt.After(updatedAt) {
			return nil
		}
		if existing.updatedAt.Equal(updatedAt) && existing.checkedIn != checkedIn {
			delete(f.entries, key)
			return nil
		}
	}
	f.entries[key] = cachedStatus{checkedIn: checkedIn, updatedAt: updatedAt}
	return nil
}

// blockingNotifier holds every Notify call until release is closed.
type blockingNotifier struct {
	release chan struct{}
	fakeNotifier
}

func (b *blockingNotifier) Notify(ctx context.Context, message, token string) error {
	<-b.release
	return b.fakeNotifier.Notify(ctx, message, token)
}

// offsetNorth moves p the given number of metres due north.
func offsetNorth(p utils.Point, metres float64) utils.Point {
	const degPerRad = 180 / 3.141592653589793
	return utils.Point{
		Latitude:  p.Latitude + metres/1000/utils.EarthRadiusKm*degPerRad,
		Longitude: p.Longitude,
	}
}
