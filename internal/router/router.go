package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasksnap/backend/api/handler"
)

type Handlers struct {
	Auth        *apiHandler.AuthHandler
	Profile     *apiHandler.ProfileHandler
	Task        *apiHandler.TaskHandler
	Streak      *apiHandler.StreakHandler
	Achievement *apiHandler.AchievementHandler
	Space       *apiHandler.SpaceHandler
	Focus       *apiHandler.FocusHandler
	Health      *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))

	r.GET("/api/v1/board", authMiddleware(handlers.Task.GetBoard))
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.POST("/api/v1/tasks/{id}/status", authMiddleware(handlers.Task.SetStatus))
	r.POST("/api/v1/tasks/{id}/urgent", authMiddleware(handlers.Task.ToggleUrgent))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.GET("/api/v1/streak", authMiddleware(handlers.Streak.GetStreak))
	r.GET("/api/v1/achievements", authMiddleware(handlers.Achievement.GetAchievements))

	r.GET("/api/v1/spaces", authMiddleware(handlers.Space.GetSpaces))
	r.POST("/api/v1/spaces", authMiddleware(handlers.Space.CreateSpace))
	r.GET("/api/v1/spaces/{id}/members", authMiddleware(handlers.Space.GetMembers))
	r.POST("/api/v1/spaces/{id}/members", authMiddleware(handlers.Space.InviteMember))

	r.GET("/api/v1/focus", authMiddleware(handlers.Focus.GetSessions))
	r.POST("/api/v1/focus/start", authMiddleware(handlers.Focus.StartSession))
	r.POST("/api/v1/focus/{id}/finish", authMiddleware(handlers.Focus.FinishSession))

	return r
}
