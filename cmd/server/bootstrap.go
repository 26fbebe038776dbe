package main

import (
	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/internal/handlers"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/internal/utils"
	"github.com/volunteerhub/backend/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg             *config.Config
	db              *gorm.DB
	taskQueue       services.TaskQueue
	worker          *services.Worker
	cache           services.Cache
	hub             *services.NotificationHub
	auditService    *services.AuditService
	reminderService *services.ReminderService

	authHandler          *handlers.AuthHandler
	ngoHandler           *handlers.NGOHandler
	eventHandler         *handlers.EventHandler
	participationHandler *handlers.ParticipationHandler
	notificationHandler  *handlers.NotificationHandler
	articleHandler       *handlers.ArticleHandler
	projectHandler       *handlers.ProjectHandler
	catalogHandler       *handlers.CatalogHandler
	adminHandler         *handlers.AdminHandler
	healthHandler        *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, queue,
// services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	db, err := models.OpenDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedReferenceData(db); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed reference data")
	}

	return newAppServices(cfg, db, services.NewTaskQueue(cfg))
}

// newAppServices wires services and handlers around an open database and a
// task queue, and starts the background workers.
func newAppServices(cfg *config.Config, db *gorm.DB, taskQueue services.TaskQueue) *appServices {
	emailService := services.NewEmailService(&cfg.Email)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.Deliver)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if taskQueue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(emailService.Deliver)
			if err := worker.Start(); err != nil {
				logger.Error().Err(err).Msg("Failed to start async worker")
			}
		}
	}

	hub := services.NewNotificationHub()
	notifier := services.NewNotificationService(db, taskQueue)
	notifier.SetHub(hub)

	cache := services.NewCache(&cfg.Redis)
	auditService := services.NewAuditService(db)
	statsService := services.NewStatsService(db)

	authService := services.NewAuthService(db, &cfg.JWT, &cfg.Admin)
	if err := authService.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	var reminderService *services.ReminderService
	if cfg.Reminders.Enabled {
		reminderService = services.NewReminderService(db, notifier, auditService, cfg)
		if err := reminderService.StartScheduler(); err != nil {
			logger.Error().Err(err).Msg("Failed to start reminder scheduler")
			reminderService = nil
		}
	}

	vkService := services.NewVKOAuthService(&cfg.OAuth, cfg.App.URL)
	ngoService := services.NewNGOService(db, notifier, cfg.App.URL)
	eventService := services.NewEventService(db, notifier)
	participationService := services.NewParticipationService(db, notifier, cfg.App.URL, cfg.Participation.RequireApproval)
	referenceService := services.NewReferenceService(db, cache)

	return &appServices{
		cfg:             cfg,
		db:              db,
		taskQueue:       taskQueue,
		worker:          worker,
		cache:           cache,
		hub:             hub,
		auditService:    auditService,
		reminderService: reminderService,

		authHandler:          handlers.NewAuthHandler(authService, vkService, cfg),
		ngoHandler:           handlers.NewNGOHandler(ngoService),
		eventHandler:         handlers.NewEventHandler(eventService),
		participationHandler: handlers.NewParticipationHandler(participationService),
		notificationHandler:  handlers.NewNotificationHandler(notifier, hub),
		articleHandler:       handlers.NewArticleHandler(services.NewArticleService(db)),
		projectHandler:       handlers.NewProjectHandler(services.NewProjectService(db)),
		catalogHandler:       handlers.NewCatalogHandler(services.NewSearchService(db), referenceService),
		adminHandler:         handlers.NewAdminHandler(statsService, services.NewUserService(db), auditService),
		healthHandler:        handlers.NewHealthHandler(db, taskQueue, hub, statsService),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	if s.reminderService != nil {
		s.reminderService.StopScheduler()
		logger.Info().Msg("Reminder scheduler stopped")
	}

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close task queue")
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close cache")
		}
	}
	if err := models.CloseDB(s.db); err != nil {
		logger.Warn().Err(err).Msg("Failed to close database")
	}
}
