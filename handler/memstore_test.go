package handler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"employee_tracker/model"
	"employee_tracker/repository"
)

// memStore backs every service with maps for router tests.
type memStore struct {
	mu         sync.Mutex
	days       map[string]*model.AttendanceDay
	users      map[string]*model.User
	warehouses map[string]*model.Warehouse
	events     []*model.ActivityEvent
}

func newMemStore() *memStore {
	return &memStore{
		days:       map[string]*model.AttendanceDay{},
		users:      map[string]*model.User{},
		warehouses: map[string]*model.Warehouse{},
	}
}

func copyDay(d *model.AttendanceDay) *model.AttendanceDay {
	c := *d
	c.Sessions = append([]model.Session(nil), d.Sessions...)
	return &c
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

// attendance

func (m *memStore) FindDay(_ context.Context, userID string, date time.Time) (*model.AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.days {
		if d.UserID == userID && d.Date.Equal(date) {
			return copyDay(d), nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*model.AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.days[id]; ok {
		return copyDay(d), nil
	}
	return nil, nil
}

func (m *memStore) CreateDay(_ context.Context, day *model.AttendanceDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.days {
		if d.UserID == day.UserID && d.Date.Equal(day.Date) {
			return fmt.Errorf("failed to create attendance day: %w", repository.ErrDuplicate)
		}
	}
	m.days[day.ID] = copyDay(day)
	return nil
}

func (m *memStore) CloseLastSession(_ context.Context, day *model.AttendanceDay, at time.Time) (*model.AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.days[day.ID]
	if !ok || !stored.IsCheckedIn || len(stored.Sessions) != len(day.Sessions) {
		return nil, nil
	}
	out := at
	stored.Sessions[len(stored.Sessions)-1].CheckOut = &out
	stored.IsCheckedIn = false
	return copyDay(stored), nil
}

func (m *memStore) OpenSession(_ context.Context, day *model.AttendanceDay, session model.Session) (*model.AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.days[day.ID]
	if !ok || stored.IsCheckedIn || len(stored.Sessions) != len(day.Sessions) {
		return nil, nil
	}
	stored.Sessions = append(stored.Sessions, session)
	stored.IsCheckedIn = true
	return copyDay(stored), nil
}

func (m *memStore) FindOpenDays(_ context.Context, date time.Time) ([]*model.AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var open []*model.AttendanceDay
	for _, d := range m.days {
		if d.IsCheckedIn && d.Date.Equal(date) {
			open = append(open, copyDay(d))
		}
	}
	return open, nil
}

func (m *memStore) ListDays(_ context.Context, filter model.AttendanceFilter) ([]*model.AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	days := []*model.AttendanceDay{}
	for _, d := range m.days {
		if (filter.UserID == "" || d.UserID == filter.UserID) && !d.Date.Before(filter.From) && !d.Date.After(filter.To) {
			days = append(days, copyDay(d))
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.After(days[j].Date) })
	return days, nil
}

func (m *memStore) ListDaysForUsers(_ context.Context, date time.Time, userIDs []string) ([]*model.AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	days := []*model.AttendanceDay{}
	for _, id := range userIDs {
		for _, d := range m.days {
			if d.UserID == id && d.Date.Equal(date) {
				days = append(days, copyDay(d))
			}
		}
	}
	return days, nil
}

// users

func (m *memStore) usersWhere(keep func(*model.User) bool) []*model.User {
	out := []*model.User{}
	for _, u := range m.users {
		if keep(u) {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (m *memStore) AddUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("failed to add user: %w", repository.ErrDuplicate)
		}
	}
	m.users[user.UserID] = copyUser(user)
	return nil
}

func (m *memStore) FindUser(_ context.Context, userID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (m *memStore) FindByLogin(_ context.Context, login string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == login || u.Email == login {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *memStore) ListUsers(_ context.Context, filter model.UserFilter) ([]*model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.usersWhere(func(u *model.User) bool { return filter.Role == "" || u.Role == filter.Role })
	return list, int64(len(list)), nil
}

func (m *memStore) FindUsersByIDs(_ context.Context, ids []string) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	return m.usersWhere(func(u *model.User) bool { return wanted[u.UserID] }), nil
}

func (m *memStore) FindAdmins(_ context.Context) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usersWhere(func(u *model.User) bool { return u.Role == model.RoleAdmin }), nil
}

func (m *memStore) FindByWarehouse(_ context.Context, warehouseID string) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usersWhere(func(u *model.User) bool {
		return u.AssignedWarehouse == warehouseID && u.Role != model.RoleAdmin
	}), nil
}

func (m *memStore) WarehouseEmployeesStatus(ctx context.Context, warehouseID string, date time.Time) ([]*model.EmployeeStatus, error) {
	employees, _ := m.FindByWarehouse(ctx, warehouseID)
	statuses := []*model.EmployeeStatus{}
	for _, u := range employees {
		status := &model.EmployeeStatus{UserID: u.UserID, Username: u.Username, Email: u.Email}
		if day, _ := m.FindDay(ctx, u.UserID, date); day != nil {
			status.IsCheckedIn = day.IsCheckedIn
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (m *memStore) UpdateUser(_ context.Context, user *model.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.UserID]; !ok {
		return false, nil
	}
	m.users[user.UserID] = copyUser(user)
	return true, nil
}

func (m *memStore) UpdateAppToken(_ context.Context, userID, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if ok {
		u.AppToken = token
	}
	return ok, nil
}

func (m *memStore) DeleteUserByID(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[userID]
	delete(m.users, userID)
	return ok, nil
}

func (m *memStore) UpdateUserPassword(_ context.Context, userID, hashed string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if ok {
		u.Password = hashed
	}
	return ok, nil
}

func (m *memStore) CountWarehouseEmployees(_ context.Context, warehouseID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, u := range m.users {
		if u.AssignedWarehouse == warehouseID && u.Role == model.RoleEmployee && u.IsActive {
			count++
		}
	}
	return count, nil
}

// warehouses

func (m *memStore) AddWarehouse(_ context.Context, w *model.Warehouse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.warehouses {
		if existing.Name == w.Name {
			return fmt.Errorf("failed to add warehouse: %w", repository.ErrDuplicate)
		}
	}
	c := *w
	m.warehouses[w.WarehouseID] = &c
	return nil
}

func (m *memStore) FindWarehouse(_ context.Context, id string) (*model.Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.warehouses[id]; ok {
		c := *w
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) ListWarehouses(_ context.Context) ([]*model.Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []*model.Warehouse{}
	for _, w := range m.warehouses {
		c := *w
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (m *memStore) UpdateWarehouse(_ context.Context, w *model.Warehouse) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.warehouses[w.WarehouseID]
	if !ok {
		return false, nil
	}
	c := *w
	c.TotalEmployees, c.Managers = existing.TotalEmployees, existing.Managers
	m.warehouses[w.WarehouseID] = &c
	return true, nil
}

func (m *memStore) SetTotalEmployees(_ context.Context, id string, total int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.warehouses[id]; ok {
		w.TotalEmployees = int(total)
	}
	return nil
}

func (m *memStore) AddManager(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.warehouses[id]; ok && !containsString(w.Managers, userID) {
		w.Managers = append(append([]string(nil), w.Managers...), userID)
	}
	return nil
}

func (m *memStore) RemoveManager(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.warehouses[id]; ok {
		w.Managers = removeString(w.Managers, userID)
	}
	return nil
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func removeString(list []string, v string) []string {
	out := []string{}
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

func (m *memStore) DeleteWarehouse(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.warehouses[id]
	delete(m.warehouses, id)
	return ok, nil
}

// activities

func (m *memStore) Insert(_ context.Context, ev *model.ActivityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *ev
	m.events = append(m.events, &c)
	return nil
}

func (m *memStore) InsertMany(ctx context.Context, evs []*model.ActivityEvent) error {
	for _, ev := range evs {
		if err := m.Insert(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) List(_ context.Context, userID string, page, limit int64) ([]*model.ActivityEvent, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*model.ActivityEvent
	for i := len(m.events) - 1; i >= 0; i-- {
		if userID == "" || m.events[i].UserID == userID {
			all = append(all, m.events[i])
		}
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= total {
		return []*model.ActivityEvent{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *memStore) FindByUserRange(_ context.Context, userID string, from, to time.Time) ([]*model.ActivityEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ActivityEvent
	for _, ev := range m.events {
		if ev.UserID == userID && !ev.CreatedAt.Before(from) && !ev.CreatedAt.After(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memStore) GroupByUsers(ctx context.Context, userIDs []string, from, to time.Time) (map[string][]*model.ActivityEvent, error) {
	grouped := map[string][]*model.ActivityEvent{}
	for _, id := range userIDs {
		if events, _ := m.FindByUserRange(ctx, id, from, to); len(events) > 0 {
			grouped[id] = events
		}
	}
	return grouped, nil
}

func (m *memStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, ev := range m.events {
		if ev.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
