package handler

import (
	"context"

	"employee_tracker/dto"
	"employee_tracker/middleware"
	"employee_tracker/model"
	"employee_tracker/usecase"
	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *usecase.UserService
}

func NewUserHandler(service *usecase.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Login(c *gin.Context) {
	h.login(c, h.service.Login)
}

// AdminLogin is the admin console login. Non-admins get 403.
func (h *UserHandler) AdminLogin(c *gin.Context) {
	h.login(c, h.service.AdminLogin)
}

func (h *UserHandler) login(c *gin.Context, authenticate func(ctx context.Context, login, password string) (*usecase.LoginResult, error)) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Login() == "" {
		utils.TrackAuthAttempt("failure", "validation")
		utils.BadRequest(c, "Username or email and password are required")
		return
	}

	result, err := authenticate(c.Request.Context(), req.Login(), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Login successful", dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.ToUserResponse(result.User),
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	token, expiresAt := middleware.Token(c)
	if err := h.service.Logout(c.Request.Context(), token, expiresAt); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Successfully logged out", nil)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req, false) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), usecase.RegisterInput{
		Username:          req.Username,
		Email:             req.Email,
		Password:          req.Password,
		Role:              model.Role(req.Role),
		AssignedWarehouse: req.AssignedWarehouse,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "User registered successfully", dto.ToUserResponse(user))
}

func (h *UserHandler) Me(c *gin.Context) {
	h.respondUser(c, middleware.UserID(c))
}

func (h *UserHandler) Get(c *gin.Context) {
	h.respondUser(c, c.Param("id"))
}

func (h *UserHandler) respondUser(c *gin.Context, userID string) {
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "", dto.ToUserResponse(user))
}

func (h *UserHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "Invalid pagination parameters")
		return
	}
	q.Normalize()

	users, total, err := h.service.ListUsers(c.Request.Context(), model.UserFilter{
		Role:      model.Role(c.Query("role")),
		Warehouse: c.Query("warehouse"),
		Page:      q.Page,
		Limit:     q.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Paginated(c, dto.ToUserList(users), total)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req, false) {
		return
	}

	in := usecase.UpdateUserInput{
		Username:          req.Username,
		Email:             req.Email,
		AssignedWarehouse: req.AssignedWarehouse,
		IsActive:          req.IsActive,
		Password:          req.Password,
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		in.Role = &role
	}

	user, err := h.service.UpdateUser(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "User updated successfully", dto.ToUserResponse(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	if c.Param("id") == middleware.UserID(c) {
		utils.BadRequest(c, "You cannot delete your own account")
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "User deleted successfully", nil)
}

// SetAppToken stores the Expo push token of the caller's device.
func (h *UserHandler) SetAppToken(c *gin.Context) {
	var req dto.AppTokenRequest
	if !bindJSON(c, &req, false) {
		return
	}
	if err := h.service.SetAppToken(c.Request.Context(), middleware.UserID(c), req.Token); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Push token saved", nil)
}
