package dto

import (
	"strings"
	"time"

	"employee_tracker/model"
)

type RegisterRequest struct {
	Username          string `json:"username" binding:"required,min=3,max=64"`
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,password"`
	Role              string `json:"role" binding:"omitempty,oneof=admin warehouse_manager employee"`
	AssignedWarehouse string `json:"assignedWarehouse"`
}

// LoginRequest accepts either a username or an email.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) Login() string {
	if login := strings.TrimSpace(r.Username); login != "" {
		return login
	}
	return strings.ToLower(strings.TrimSpace(r.Email))
}

type UpdateUserRequest struct {
	Username          *string `json:"username" binding:"omitempty,min=3,max=64"`
	Email             *string `json:"email" binding:"omitempty,email"`
	Role              *string `json:"role" binding:"omitempty,oneof=admin warehouse_manager employee"`
	AssignedWarehouse *string `json:"assignedWarehouse"`
	IsActive          *bool   `json:"isActive"`
	Password          *string `json:"password" binding:"omitempty,password"`
}

type AppTokenRequest struct {
	Token string `json:"appToken" binding:"required"`
}

type UserResponse struct {
	UserID            string     `json:"user_id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Role              model.Role `json:"role"`
	AssignedWarehouse string     `json:"assignedWarehouse,omitempty"`
	IsActive          bool       `json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		UserID:            user.UserID,
		Username:          user.Username,
		Email:             user.Email,
		Role:              user.Role,
		AssignedWarehouse: user.AssignedWarehouse,
		IsActive:          user.IsActive,
		CreatedAt:         user.CreatedAt,
	}
}

func ToUserList(users []*model.User) []UserResponse {
	list := make([]UserResponse, 0, len(users))
	for _, u := range users {
		list = append(list, ToUserResponse(u))
	}
	return list
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
