package handler

import (
	"employee_tracker/middleware"
	"employee_tracker/model"
	"employee_tracker/usecase"
	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// RouterDeps is everything the HTTP layer needs. Blacklist and Health may
// be nil.
type RouterDeps struct {
	Attendance     *usecase.AttendanceService
	Activity       *usecase.ActivityService
	Users          *usecase.UserService
	Warehouses     *usecase.WarehouseService
	Tokens         middleware.TokenParser
	Blacklist      middleware.Blacklist
	Health         *HealthHandler
	Clock          utils.Clock
	AllowedOrigins []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Logger(),
		middleware.EnhancedRecoveryMiddleware(),
		middleware.RequestTracingMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.CORSMiddleware(deps.AllowedOrigins),
		middleware.RequestSizeLimiter(maxBodyBytes),
	)

	attendance := NewAttendanceHandler(deps.Attendance, deps.Clock)
	activity := NewActivityHandler(deps.Activity, deps.Attendance.Location(), deps.Clock)
	users := NewUserHandler(deps.Users)
	warehouses := NewWarehouseHandler(deps.Warehouses)

	if deps.Health != nil {
		router.GET("/health", deps.Health.Health)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/users/login", users.Login)
	api.POST("/users/admin/login", users.AdminLogin)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.Blacklist), middleware.NoStore())

	adminOnly := middleware.RequireRole(model.RoleAdmin)
	supervisors := middleware.RequireRole(model.RoleAdmin, model.RoleWarehouseManager)

	userRoutes := protected.Group("/users")
	{
		userRoutes.POST("/logout", users.Logout)
		userRoutes.GET("/me", users.Me)
		userRoutes.PUT("/app-token", users.SetAppToken)

		userRoutes.POST("/register", adminOnly, users.Register)
		userRoutes.GET("", adminOnly, users.List)
		userRoutes.GET("/:id", adminOnly, users.Get)
		userRoutes.PUT("/:id", adminOnly, users.Update)
		userRoutes.DELETE("/:id", adminOnly, users.Delete)
	}

	warehouseRoutes := protected.Group("/warehouses")
	{
		warehouseRoutes.GET("", warehouses.List)
		warehouseRoutes.GET("/:id", warehouses.Get)
		warehouseRoutes.POST("", adminOnly, warehouses.Create)
		warehouseRoutes.PUT("/:id", adminOnly, warehouses.Update)
		warehouseRoutes.DELETE("/:id", adminOnly, warehouses.Delete)
	}

	attendanceRoutes := protected.Group("/attendance")
	{
		attendanceRoutes.POST("/toggle", attendance.Toggle)
		attendanceRoutes.GET("/status", attendance.Status)
		attendanceRoutes.GET("/my-attendance", attendance.MyAttendance)
		attendanceRoutes.GET("/daily-summary", attendance.DailySummary)
		attendanceRoutes.GET("/:id", attendance.GetByID)

		attendanceRoutes.GET("", supervisors, attendance.List)
		attendanceRoutes.POST("/get-summary", supervisors, attendance.Summary)
		attendanceRoutes.GET("/warehouse/:id/status", supervisors, attendance.WarehouseStatus)
		attendanceRoutes.POST("/reconcile", adminOnly, attendance.Reconcile)
	}

	notifyRoutes := protected.Group("/notify")
	{
		notifyRoutes.POST("/log", activity.Log)
		notifyRoutes.POST("/bulk-log", activity.BulkLog)
		notifyRoutes.GET("/summary", activity.Summary)
		notifyRoutes.GET("/daily", activity.Daily)
		notifyRoutes.GET("/:employeeId", activity.ListByEmployee)

		notifyRoutes.GET("", supervisors, activity.ListAll)
		notifyRoutes.POST("/total-time", supervisors, activity.TotalTime)
		notifyRoutes.DELETE("/:activityId", adminOnly, activity.Delete)
	}

	return router
}
