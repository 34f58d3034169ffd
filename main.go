package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	api "genius-keeper-backend/cmd/api"
	authdomain "genius-keeper-backend/internal/auth/domain"
	authRepo "genius-keeper-backend/internal/auth/repository"
	authUsecase "genius-keeper-backend/internal/auth/usecase"
	"genius-keeper-backend/internal/notification/dispatcher"
	notificationdomain "genius-keeper-backend/internal/notification/domain"
	"genius-keeper-backend/internal/notification/events"
	notificationRepo "genius-keeper-backend/internal/notification/repository"
	notificationUsecase "genius-keeper-backend/internal/notification/usecase"
	orderdomain "genius-keeper-backend/internal/order/domain"
	orderRepo "genius-keeper-backend/internal/order/repository"
	orderUsecase "genius-keeper-backend/internal/order/usecase"
	"genius-keeper-backend/internal/supervisor"
	taskdomain "genius-keeper-backend/internal/task/domain"
	taskRepo "genius-keeper-backend/internal/task/repository"
	taskScheduler "genius-keeper-backend/internal/task/scheduler"
	taskUsecase "genius-keeper-backend/internal/task/usecase"
	visitdomain "genius-keeper-backend/internal/visit/domain"
	visitRepo "genius-keeper-backend/internal/visit/repository"
	visitUsecase "genius-keeper-backend/internal/visit/usecase"
	"genius-keeper-backend/pkg/config"
	"genius-keeper-backend/pkg/database"
	"genius-keeper-backend/pkg/fcm"
	fb "genius-keeper-backend/pkg/firebase"
	"genius-keeper-backend/pkg/push"
	"genius-keeper-backend/pkg/realtime"
	"genius-keeper-backend/pkg/sns"

	firebase "firebase.google.com/go/v4"
	"github.com/sirupsen/logrus"
)

// kafkaConcurrency bounds how many notification requests are handled at once.
const kafkaConcurrency = 8

// repositories is every store the service needs, backed by one database.
type repositories struct {
	users         authRepo.UserRepository
	tokens        authRepo.FCMTokenRepository
	notifications notificationRepo.NotificationRepository
	locations     visitRepo.PointOfSaleRepository
	visits        visitRepo.VisitReportRepository
	orders        orderRepo.OrderRepository
	tasks         taskRepo.TaskRepository
	close         func() error
}

func main() {
	// Load configuration
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logrus.WithError(err).Fatal("[Main] service stopped with error")
	}
	logrus.Info("[Main] service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Firebase backs both the document store and FCM
	var app *firebase.App
	if cfg.StoreBackend == "firestore" || cfg.PushBackend == "fcm" {
		var err error
		app, err = fb.NewApp(ctx, cfg.GoogleProjectID, cfg.FirebaseCredentials)
		if err != nil {
			if cfg.StoreBackend == "firestore" {
				return err
			}
			logrus.WithError(err).Warn("[Main] Firebase unavailable, push notifications disabled")
		}
	}

	repos, err := openRepositories(ctx, cfg, app)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			logrus.WithError(err).Warn("[Main] closing store")
		}
	}()

	sender, registrar := openPush(ctx, cfg, app)

	// Initialize realtime hub and the dispatcher every trigger goes through
	hub := realtime.NewHub()
	notifier := dispatcher.New(repos.notifications, repos.tokens, sender, hub)

	// Initialize use cases (dependency injection)
	authService := authUsecase.NewAuthUsecase(repos.users, repos.tokens, registrar, cfg)
	visits := visitUsecase.NewVisitUsecase(repos.locations, repos.visits)
	orders := orderUsecase.NewOrderUsecase(repos.orders)
	tasks := taskUsecase.NewTaskUsecase(repos.tasks, notifier)

	// Scheduled supervisors
	scheduler := supervisor.NewScheduler(cfg.SchedulerTimezone)
	overdue := supervisor.NewOverdueVisitSupervisor(repos.locations, repos.visits, notifier, authService,
		cfg.OverdueRecipientEmail, cfg.OverdueNotifyAssignee)
	if err := scheduler.Register(cfg.OverdueVisitSchedule, overdue); err != nil {
		return err
	}
	pending := supervisor.NewPendingOrderSupervisor(repos.orders, notifier, authService,
		cfg.PendingOrderRecipients, cfg.SchedulerTimezone, cfg.BusinessHoursStart, cfg.BusinessHoursEnd)
	if err := scheduler.Register(cfg.PendingOrderSchedule, pending); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	reminders := taskScheduler.NewTaskReminderScheduler(repos.tasks, notifier, cfg.TaskReminderInterval)
	reminders.Start(ctx)
	defer reminders.Stop()

	// Event-triggered notifications
	source, err := openEventSource(ctx, cfg, events.NewHandler(notifier, authService, authUsecase.IsNotFound))
	if err != nil {
		logrus.WithError(err).Error("[Main] event intake disabled")
	}
	if source != nil {
		defer source.Close()
		go func() {
			if err := source.Run(ctx); err != nil {
				logrus.WithError(err).Error("[Main] event source stopped")
			}
		}()
	}

	// Initialize HTTP handler
	handler := api.NewHandler(api.Dependencies{
		Config:        cfg,
		Auth:          authService,
		Notifications: notificationUsecase.NewNotificationUsecase(repos.notifications),
		Visits:        visits,
		Orders:        orders,
		Tasks:         tasks,
		Supervisors:   scheduler,
		Hub:           hub,
	})
	return handler.Start(ctx, ":"+cfg.Port)
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("[Main] unknown log level, using info")
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

func openRepositories(ctx context.Context, cfg *config.Config, app *firebase.App) (*repositories, error) {
	switch cfg.StoreBackend {
	case "firestore":
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get firestore client: %w", err)
		}
		logrus.Info("[Main] using Firestore store")
		return &repositories{
			users:         authRepo.NewFirestoreUserRepository(client),
			tokens:        authRepo.NewFirestoreFCMTokenRepository(client),
			notifications: notificationRepo.NewFirestoreNotificationRepository(client),
			locations:     visitRepo.NewFirestorePointOfSaleRepository(client),
			visits:        visitRepo.NewFirestoreVisitReportRepository(client),
			orders:        orderRepo.NewFirestoreOrderRepository(client),
			tasks:         taskRepo.NewFirestoreTaskRepository(client),
			close:         client.Close,
		}, nil

	case "postgres", "":
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			return nil, err
		}

		// Auto-migrate database schemas
		if err := db.AutoMigrate(
			&authdomain.User{}, &authdomain.FCMToken{},
			&notificationdomain.Notification{},
			&visitdomain.PointOfSale{}, &visitdomain.VisitReport{},
			&orderdomain.Order{}, &taskdomain.Task{},
		); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		logrus.Info("[Main] using Postgres store")
		return &repositories{
			users:         authRepo.NewUserRepository(db),
			tokens:        authRepo.NewFCMTokenRepository(db),
			notifications: notificationRepo.NewGormNotificationRepository(db),
			locations:     visitRepo.NewGormPointOfSaleRepository(db),
			visits:        visitRepo.NewGormVisitReportRepository(db),
			orders:        orderRepo.NewGormOrderRepository(db),
			tasks:         taskRepo.NewGormTaskRepository(db),
			close:         sqlDB.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}

// openPush returns the configured push backend. A nil sender makes the
// dispatcher record notifications without pushing them.
func openPush(ctx context.Context, cfg *config.Config, app *firebase.App) (push.Sender, authUsecase.EndpointRegistrar) {
	switch cfg.PushBackend {
	case "fcm":
		if app == nil {
			return nil, nil
		}
		client, err := fcm.NewClient(ctx, app, cfg.AppBaseURL)
		if err != nil {
			logrus.WithError(err).Warn("[Main] FCM unavailable, push notifications disabled")
			return nil, nil
		}
		return client, nil

	case "sns":
		client, err := sns.NewClient(ctx, cfg.AWSRegion, cfg.SNSPlatformARN)
		if err != nil {
			logrus.WithError(err).Warn("[Main] SNS unavailable, push notifications disabled")
			return nil, nil
		}
		logrus.WithField("region", cfg.AWSRegion).Info("[Main] using SNS push")
		// stored tokens are endpoint ARNs, so registration goes through SNS too
		return client, client
	}

	logrus.WithField("backend", cfg.PushBackend).Info("[Main] push notifications disabled")
	return nil, nil
}

func openEventSource(ctx context.Context, cfg *config.Config, handler *events.Handler) (events.Source, error) {
	switch cfg.EventTransport {
	case "pubsub":
		if cfg.GoogleProjectID == "" {
			return nil, errors.New("GOOGLE_PROJECT_ID not configured")
		}
		client, err := events.NewPubSubClient(ctx, cfg.GoogleProjectID, cfg.FirebaseCredentials)
		if err != nil {
			return nil, err
		}
		return events.NewPubSubSource(client, cfg.PubSubTopic, cfg.PubSubSubscription, handler), nil

	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS not configured")
		}
		return events.NewKafkaSource(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, kafkaConcurrency, handler), nil
	}
	return nil, nil
}
