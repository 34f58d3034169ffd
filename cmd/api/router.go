package api

import (
	"net/http"

	"genius-keeper-backend/internal/auth/delivery"
	notificationDelivery "genius-keeper-backend/internal/notification/delivery"
	orderDelivery "genius-keeper-backend/internal/order/delivery"
	"genius-keeper-backend/internal/supervisor"
	taskDelivery "genius-keeper-backend/internal/task/delivery"
	visitDelivery "genius-keeper-backend/internal/visit/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	authMiddleware := delivery.AuthMiddleware(deps.Auth)
	managerOnly := delivery.RequireManager()

	authHandler := delivery.NewAuthHandler(deps.Auth)
	notificationHandler := notificationDelivery.NewNotificationHandler(deps.Notifications)
	visitHandler := visitDelivery.NewVisitHandler(deps.Visits)
	orderHandler := orderDelivery.NewOrderHandler(deps.Orders)
	taskHandler := taskDelivery.NewTaskHandler(deps.Tasks)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// WebSocket endpoint for in-app notifications
		if deps.Hub != nil {
			api.GET("/ws", authMiddleware, func(c *gin.Context) {
				deps.Hub.ServeHTTP(c, c.GetString("userID"))
			})
		}

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.GET("/me", authMiddleware, authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(authMiddleware)
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Notification center (protected)
		notifications := api.Group("/notifications")
		notifications.Use(authMiddleware)
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/:id/open", notificationHandler.Open)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}

		// Points of sale and visit reports (protected)
		pos := api.Group("/pos")
		pos.Use(authMiddleware)
		{
			pos.GET("", visitHandler.List)
			pos.POST("", managerOnly, visitHandler.Create)
			pos.GET("/:id", visitHandler.Get)
			pos.PATCH("/:id", managerOnly, visitHandler.Update)
			pos.GET("/:id/visits", visitHandler.History)
			pos.POST("/:id/visits", visitHandler.LogVisit)
		}

		// Orders (protected)
		orders := api.Group("/orders")
		orders.Use(authMiddleware)
		{
			orders.GET("", orderHandler.List)
			orders.POST("", orderHandler.Create)
			orders.PATCH("/:id/status", managerOnly, orderHandler.UpdateStatus)
		}

		// Task routes (protected); permissions are checked per task
		tasks := api.Group("/tasks")
		tasks.Use(authMiddleware)
		{
			tasks.GET("", taskHandler.GetTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTaskByID)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
		}

		if deps.Supervisors != nil {
			supervisorHandler := supervisor.NewHandler(deps.Supervisors)
			settingsHandler := NewSettingsHandler(deps.Config, deps.Supervisors)

			supervisors := api.Group("/supervisors")
			supervisors.Use(authMiddleware, managerOnly)
			{
				supervisors.POST("/:name/run", supervisorHandler.Run)
			}

			// Settings routes (read-only)
			settings := api.Group("/settings")
			settings.Use(authMiddleware, managerOnly)
			{
				settings.GET("/supervisors", settingsHandler.GetSupervisorSettings)
			}
		}
	}
}
