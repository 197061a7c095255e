package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/safezoneph/syncd/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Buddy   *apiHandler.BuddyHandler
	Points  *apiHandler.PointsHandler
	Message *apiHandler.MessageHandler
	Prefs   *apiHandler.PrefsHandler
	Sync    *apiHandler.SyncHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PATCH("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.ListTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/counts", authMiddleware(handlers.Task.TaskCounts))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PATCH("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.GET("/api/v1/buddies", authMiddleware(handlers.Buddy.ListBuddies))
	r.POST("/api/v1/buddies", authMiddleware(handlers.Buddy.AddBuddy))
	r.DELETE("/api/v1/buddies/{id}", authMiddleware(handlers.Buddy.RemoveBuddy))
	r.POST("/api/v1/buddy-sessions", authMiddleware(handlers.Buddy.StartSession))
	r.GET("/api/v1/buddy-sessions/active", authMiddleware(handlers.Buddy.ActiveSessions))
	r.POST("/api/v1/buddy-sessions/{id}/check-in", authMiddleware(handlers.Buddy.CheckIn))
	r.POST("/api/v1/buddy-sessions/{id}/complete", authMiddleware(handlers.Buddy.CompleteSession))
	r.GET("/api/v1/check-ins", authMiddleware(handlers.Buddy.CheckInHistory))

	r.GET("/api/v1/points/history", authMiddleware(handlers.Points.History))
	r.GET("/api/v1/points/summary", authMiddleware(handlers.Points.Summary))
	r.POST("/api/v1/points/award", authMiddleware(handlers.Points.Award))

	r.POST("/api/v1/messages", authMiddleware(handlers.Message.Send))
	r.GET("/api/v1/conversations", authMiddleware(handlers.Message.Conversations))

	r.GET("/api/v1/notifications", authMiddleware(handlers.Prefs.Notifications))
	r.POST("/api/v1/notifications", authMiddleware(handlers.Prefs.AddNotification))
	r.POST("/api/v1/notifications/{id}/read", authMiddleware(handlers.Prefs.MarkNotificationRead))
	r.DELETE("/api/v1/notifications", authMiddleware(handlers.Prefs.ClearNotifications))
	r.GET("/api/v1/settings", authMiddleware(handlers.Prefs.GetSettings))
	r.PUT("/api/v1/settings", authMiddleware(handlers.Prefs.SaveSettings))
	r.GET("/api/v1/onboarding", authMiddleware(handlers.Prefs.GetOnboarding))
	r.PUT("/api/v1/onboarding", authMiddleware(handlers.Prefs.SaveOnboarding))

	r.GET("/api/v1/sync/status", authMiddleware(handlers.Sync.Status))
	r.POST("/api/v1/sync/run", authMiddleware(handlers.Sync.Run))

	return r
}
