package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/notification"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/scheduler"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/sla"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	complaintRepo := repository.NewComplaintRepository(pool)
	workerRepo := repository.NewWorkerRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	sink := notification.NewRedisSink(redis.Client, cfg.Notification.Channel, logger)
	notificationService := service.NewNotificationService(dispatcher, workerRepo, sink, logger)
	notificationService.RegisterHandlers()

	slaTable := sla.TableFromHours(cfg.SLA.CriticalHours, cfg.SLA.HighHours, cfg.SLA.MediumHours, cfg.SLA.LowHours)

	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		HistoryRepo:   historyRepo,
		Dispatcher:    dispatcher,
		SLATable:      slaTable,
	})
	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		ComplaintRepo: complaintRepo,
		WorkerRepo:    workerRepo,
		HistoryRepo:   historyRepo,
		Dispatcher:    dispatcher,
		ReopenWindow:  cfg.SLA.ReopenWindow(),
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		ComplaintRepo: complaintRepo,
		WorkerRepo:    workerRepo,
		Workflow:      workflowService,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	workerService := service.NewWorkerService(workerRepo, tokens, cfg.Auth.BcryptCost)
	authMiddleware := auth.NewAuthMiddleware(tokens, workerRepo)

	if cfg.Scheduler.Enabled {
		sweeper := scheduler.NewSweeper(complaintRepo, dispatcher, logger, scheduler.SweepConfig{
			Table:                 slaTable,
			ReminderWindow:        cfg.SLA.ReminderWindow(),
			ApproachThreshold:     cfg.SLA.ApproachThreshold,
			CriticalEscalationPct: cfg.SLA.CriticalEscalationPct,
			HighEscalationPct:     cfg.SLA.HighEscalationPct,
			RecurrenceWindow:      cfg.SLA.RecurrenceWindow(),
			RecurrenceMinCount:    cfg.SLA.RecurrenceMinimumCount,
		})

		sched := scheduler.New(logger)
		sched.Register(scheduler.Task{Name: "sla_sweep", Interval: cfg.Scheduler.SLASweepInterval(), Run: sweeper.RunSLASweep})
		sched.Register(scheduler.Task{Name: "reminder_sweep", Interval: cfg.Scheduler.ReminderSweepInterval(), Run: sweeper.RunReminderSweep})
		sched.Register(scheduler.Task{Name: "escalation_sweep", Interval: cfg.Scheduler.EscalationSweepInterval(), Run: sweeper.RunEscalationSweep})
		sched.Register(scheduler.Task{Name: "maintenance_sweep", Interval: cfg.Scheduler.MaintenanceSweepInterval(), Run: sweeper.RunMaintenanceSweep})
		sched.Start(ctx)
		defer sched.Wait()
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	complaintsHandler := handlers.NewComplaintsHandler(complaintService, workflowService, assignmentService)
	workersHandler := handlers.NewWorkersHandler(workerService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Complaints:     complaintsHandler,
		Workers:        workersHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
