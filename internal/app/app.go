package app

import (
	"context"

	"soundtrace/config"
	"soundtrace/internal/controllers"
	"soundtrace/internal/database"
	"soundtrace/internal/events"
	"soundtrace/internal/handlers/middleware"
	"soundtrace/internal/jobs"
	"soundtrace/internal/repositories"
	"soundtrace/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	EventBus    *events.EventBus
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	requeuePolicy := config.RetryPolicyRequeue
	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus, err := events.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create event bus", err)
	}

	service, err := services.New(db, config, eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	repos := repositories.New(db)
	middleware := middleware.New(db, eventBus, config, repos)
	controllers := controllers.New(service, repos, config, db)

	// The sweep job only makes sense under the requeue policy; with drop,
	// unpublished scrobbles are intentionally abandoned.
	if config.SchedulerEnabled && config.ScrobbleRetryPolicy == requeuePolicy {
		sweepJob := jobs.NewScrobbleSweepJob(service.Scrobble, services.Hourly)
		if err := service.Scheduler.AddJob(sweepJob); err != nil {
			return &App{}, log.Err("failed to register scrobble sweep job", err)
		}
		log.Info("Registered scrobble sweep job with scheduler")

		if err := service.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware,
		EventBus:    eventBus,
		Services:    service,
		Repos:       repos,
		Controllers: controllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.EventBus,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.RecordWriter,
		a.Services.Ensure,
		a.Services.Converge,
		a.Services.Relationship,
		a.Services.Scrobble,
		a.Controllers.Scrobble,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		a.EventBus.Close()
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
