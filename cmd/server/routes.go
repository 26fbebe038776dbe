package main

import (
	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/handlers"
	"github.com/volunteerhub/backend/internal/middleware"
	"github.com/volunteerhub/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine. The
// returned limiter must be stopped on shutdown.
func registerRoutes(r *gin.Engine, svc *appServices) *middleware.RateLimiter {
	handlers.SetupValidator()

	// Middleware
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.Server.AllowedOrigins))

	// Rate limiter for credential routes
	authLimiter := middleware.NewRateLimiter(1, 10)

	r.GET("/health", svc.healthHandler.CheckHealth)
	r.GET("/metrics", svc.healthHandler.Metrics)

	api := r.Group("/api")
	api.Use(middleware.AuditLog(svc.auditService))
	{
		api.GET("/config", svc.authHandler.GetClientConfig)

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			credentials := auth.Group("", authLimiter.Middleware())
			credentials.POST("/signup", svc.authHandler.Signup)
			credentials.POST("/login", svc.authHandler.Login)
			credentials.POST("/refresh", svc.authHandler.Refresh)

			auth.GET("/vk/login", svc.authHandler.VKLogin)
			auth.GET("/vk/callback", svc.authHandler.VKCallback)
		}

		// Public routes that reveal more to owners and staff
		public := api.Group("")
		public.Use(middleware.OptionalAuth())
		{
			public.GET("/ngo", svc.ngoHandler.List)
			public.GET("/ngo/:id", svc.ngoHandler.GetByID)

			public.GET("/events", svc.eventHandler.List)
			public.GET("/events/urgent", svc.eventHandler.Urgent)
			public.GET("/events/:id", svc.eventHandler.GetByID)

			public.GET("/articles", svc.articleHandler.List)
			public.GET("/articles/:slug", svc.articleHandler.GetBySlug)

			public.GET("/projects", svc.projectHandler.List)

			public.GET("/search", svc.catalogHandler.Search)
			public.GET("/cities", svc.catalogHandler.Cities)
			public.GET("/categories", svc.catalogHandler.Categories)
			public.GET("/map", svc.catalogHandler.Map)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// NGOs
			protected.POST("/ngo", svc.ngoHandler.Register)
			protected.GET("/ngo/my", svc.ngoHandler.Mine)
			protected.PATCH("/ngo/:id", svc.ngoHandler.Patch)
			protected.DELETE("/ngo/:id", svc.ngoHandler.Delete)

			// Events
			protected.POST("/events", svc.eventHandler.Create)
			protected.GET("/events/my", svc.eventHandler.Mine)
			protected.GET("/events/:id/manage", svc.eventHandler.Manage)
			protected.PATCH("/events/:id", svc.eventHandler.Update)
			protected.DELETE("/events/:id", svc.eventHandler.Delete)

			// Participations
			protected.POST("/events/:id/participate", svc.participationHandler.Participate)
			protected.GET("/participations/my", svc.participationHandler.Mine)
			protected.PATCH("/participations/:id", svc.participationHandler.Update)

			// Projects
			protected.POST("/projects", svc.projectHandler.Create)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)

			// Notifications
			protected.GET("/notifications", svc.notificationHandler.List)
			protected.GET("/notifications/stream", svc.notificationHandler.Stream)
			protected.PATCH("/notifications", svc.notificationHandler.MarkRead)
			protected.POST("/notifications/read-all", svc.notificationHandler.MarkAllRead)
			protected.DELETE("/notifications/:id", svc.notificationHandler.Delete)

			// Knowledge base (admin only)
			articles := protected.Group("/articles", middleware.AdminRequired())
			{
				articles.POST("", svc.articleHandler.Create)
				articles.DELETE("/:id", svc.articleHandler.Delete)
			}

			// Moderation (admins and moderators)
			moderation := protected.Group("/admin", middleware.StaffRequired())
			{
				moderation.GET("/ngo/pending", svc.ngoHandler.Pending)
				moderation.GET("/events/pending", svc.eventHandler.Pending)
				moderation.POST("/events/:id/approve", svc.eventHandler.Moderate)
			}

			// Administration
			admin := protected.Group("/admin", middleware.AdminRequired())
			{
				admin.GET("/stats", svc.adminHandler.GetStats)
				admin.GET("/users", svc.adminHandler.ListUsers)
				admin.DELETE("/users/:id", svc.adminHandler.DeleteUser)
				admin.GET("/audit-logs", svc.adminHandler.ListAuditLogs)
			}
		}
	}

	return authLimiter
}
