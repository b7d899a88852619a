package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"employee_tracker/model"
	"employee_tracker/repository"
	"employee_tracker/services"
	"employee_tracker/utils"
)

type UserStore interface {
	AddUser(ctx context.Context, user *model.User) error
	FindUser(ctx context.Context, userID string) (*model.User, error)
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, int64, error)
	UpdateUser(ctx context.Context, user *model.User) (bool, error)
	UpdateAppToken(ctx context.Context, userID, token string) (bool, error)
	UpdateUserPassword(ctx context.Context, userID, hashedPassword string) (bool, error)
	DeleteUserByID(ctx context.Context, userID string) (bool, error)
	CountWarehouseEmployees(ctx context.Context, warehouseID string) (int64, error)
}

// WarehouseRoster keeps the derived head count and manager list of a
// warehouse in step with user assignments.
type WarehouseRoster interface {
	WarehouseLookup
	SetTotalEmployees(ctx context.Context, id string, total int64) error
	AddManager(ctx context.Context, id, userID string) error
	RemoveManager(ctx context.Context, id, userID string) error
}

type TokenIssuer interface {
	GenerateToken(userID, role string) (string, time.Time, error)
}

type TokenRevoker interface {
	Blacklist(ctx context.Context, token string, expiresAt time.Time) error
}

type UserService struct {
	users      UserStore
	warehouses WarehouseRoster
	tokens     TokenIssuer
	revoker    TokenRevoker
	clock      utils.Clock
}

// NewUserService builds the service. revoker may be nil, in which case
// logout only succeeds client-side.
func NewUserService(users UserStore, warehouses WarehouseRoster, tokens TokenIssuer, revoker TokenRevoker) *UserService {
	return &UserService{
		users:      users,
		warehouses: warehouses,
		tokens:     tokens,
		revoker:    revoker,
		clock:      utils.RealClock{},
	}
}

type RegisterInput struct {
	Username          string
	Email             string
	Password          string
	Role              model.Role
	AssignedWarehouse string
}

type UpdateUserInput struct {
	Username          *string
	Email             *string
	Role              *model.Role
	AssignedWarehouse *string
	IsActive          *bool
	Password          *string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func (s *UserService) checkWarehouse(ctx context.Context, warehouseID string) error {
	if warehouseID == "" {
		return nil
	}
	w, err := s.warehouses.FindWarehouse(ctx, warehouseID)
	if err != nil {
		return upstream("failed to load warehouse", err)
	}
	if w == nil {
		return invalidInput("assigned warehouse does not exist")
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" {
		return nil, invalidInput("username and email are required")
	}
	if in.Role == "" {
		in.Role = model.RoleEmployee
	}
	if !in.Role.Valid() {
		return nil, invalidInput("unknown role")
	}
	if err := s.checkWarehouse(ctx, in.AssignedWarehouse); err != nil {
		return nil, err
	}

	hashed, err := services.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, services.ErrWeakPassword) {
			return nil, invalidInput(err.Error())
		}
		return nil, upstream("failed to hash password", err)
	}

	now := s.clock.Now()
	user := &model.User{
		UserID:            utils.GenerateID(),
		Username:          in.Username,
		Email:             in.Email,
		Password:          hashed,
		Role:              in.Role,
		AssignedWarehouse: in.AssignedWarehouse,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.users.AddUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("username or email already exists")
		}
		return nil, upstream("failed to create user", err)
	}
	s.syncRoster(ctx, nil, user)
	return user, nil
}

// Login accepts either the username or the email address.
func (s *UserService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		utils.TrackAuthAttempt("failure", "lookup_error")
		return nil, upstream("failed to load user", err)
	}
	if user == nil {
		utils.TrackAuthAttempt("failure", "user_not_found")
		return nil, unauthorized("invalid credentials")
	}
	if !services.ComparePasswords(user.Password, password) {
		utils.TrackAuthAttempt("failure", "invalid_password")
		return nil, unauthorized("invalid credentials")
	}
	if !user.IsActive {
		utils.TrackAuthAttempt("failure", "inactive")
		return nil, unauthorized("account is disabled")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.UserID, string(user.Role))
	if err != nil {
		utils.TrackError("auth", "token_generation")
		return nil, upstream("failed to generate token", err)
	}

	utils.TrackAuthAttempt("success", "login")
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// AdminLogin is Login restricted to admins.
func (s *UserService) AdminLogin(ctx context.Context, login, password string) (*LoginResult, error) {
	result, err := s.Login(ctx, login, password)
	if err != nil {
		return nil, err
	}
	if result.User.Role != model.RoleAdmin {
		utils.TrackAuthAttempt("failure", "not_admin")
		return nil, forbidden("Access denied: Admins only")
	}
	return result, nil
}

func (s *UserService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Blacklist(ctx, token, expiresAt); err != nil {
		return upstream("failed to revoke token", err)
	}
	return nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, upstream("failed to load user", err)
	}
	if user == nil {
		return nil, notFound("user not found")
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, int64, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, invalidInput("unknown role")
	}
	users, total, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		return nil, 0, upstream("failed to list users", err)
	}
	return users, total, nil
}

func (s *UserService) UpdateUser(ctx context.Context, userID string, in UpdateUserInput) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	before := *user

	var hashed string
	if in.Password != nil {
		hashed, err = services.HashPassword(*in.Password)
		if err != nil {
			if errors.Is(err, services.ErrWeakPassword) {
				return nil, invalidInput(err.Error())
			}
			return nil, upstream("failed to hash password", err)
		}
	}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, invalidInput("username cannot be empty")
		}
		user.Username = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, invalidInput("email cannot be empty")
		}
		user.Email = email
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, invalidInput("unknown role")
		}
		user.Role = *in.Role
	}
	if in.AssignedWarehouse != nil {
		if err := s.checkWarehouse(ctx, *in.AssignedWarehouse); err != nil {
			return nil, err
		}
		user.AssignedWarehouse = *in.AssignedWarehouse
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	user.UpdatedAt = s.clock.Now()

	ok, err := s.users.UpdateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("username or email already exists")
		}
		return nil, upstream("failed to update user", err)
	}
	if !ok {
		return nil, notFound("user not found")
	}

	if hashed != "" {
		ok, err := s.users.UpdateUserPassword(ctx, userID, hashed)
		if err != nil {
			return nil, upstream("failed to update password", err)
		}
		if !ok {
			return nil, notFound("user not found")
		}
		user.Password = hashed
	}

	s.syncRoster(ctx, &before, user)
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := s.users.DeleteUserByID(ctx, userID)
	if err != nil {
		return upstream("failed to delete user", err)
	}
	if !ok {
		return notFound("user not found")
	}
	s.syncRoster(ctx, user, nil)
	return nil
}

// syncRoster updates the manager lists and head counts of the warehouses a
// user left or joined. Failures are logged; the user change stands.
func (s *UserService) syncRoster(ctx context.Context, before, after *model.User) {
	managerOf := func(u *model.User) string {
		if u == nil || u.Role != model.RoleWarehouseManager {
			return ""
		}
		return u.AssignedWarehouse
	}

	oldManaged, newManaged := managerOf(before), managerOf(after)
	if oldManaged != "" && oldManaged != newManaged {
		if err := s.warehouses.RemoveManager(ctx, oldManaged, before.UserID); err != nil {
			log.Printf("Warning: failed to remove manager %s from warehouse %s: %v", before.UserID, oldManaged, err)
		}
	}
	if newManaged != "" {
		if err := s.warehouses.AddManager(ctx, newManaged, after.UserID); err != nil {
			log.Printf("Warning: failed to add manager %s to warehouse %s: %v", after.UserID, newManaged, err)
		}
	}

	touched := map[string]bool{}
	for _, u := range []*model.User{before, after} {
		if u != nil && u.AssignedWarehouse != "" {
			touched[u.AssignedWarehouse] = true
		}
	}
	for warehouseID := range touched {
		total, err := s.users.CountWarehouseEmployees(ctx, warehouseID)
		if err != nil {
			log.Printf("Warning: failed to count employees of warehouse %s: %v", warehouseID, err)
			continue
		}
		if err := s.warehouses.SetTotalEmployees(ctx, warehouseID, total); err != nil {
			log.Printf("Warning: failed to update head count of warehouse %s: %v", warehouseID, err)
		}
	}
}

// SetAppToken registers the push token of the caller's mobile app.
func (s *UserService) SetAppToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if !services.ValidExpoToken(token) {
		return invalidInput("invalid push token")
	}
	ok, err := s.users.UpdateAppToken(ctx, userID, token)
	if err != nil {
		return upstream("failed to save push token", err)
	}
	if !ok {
		return notFound("user not found")
	}
	return nil
}
