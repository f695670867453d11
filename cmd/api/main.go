package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/medportal-notify/internal/application/appointment"
	"github.com/medportal-notify/internal/application/availability"
	"github.com/medportal-notify/internal/application/dispatch"
	"github.com/medportal-notify/internal/application/reminder"
	"github.com/medportal-notify/internal/config"
	"github.com/medportal-notify/internal/infrastructure/dynamo"
	redisclient "github.com/medportal-notify/internal/infrastructure/redis"
	s3infra "github.com/medportal-notify/internal/infrastructure/s3"
	"github.com/medportal-notify/internal/infrastructure/sns"
	"github.com/medportal-notify/internal/realtime"
	transporthttp "github.com/medportal-notify/internal/transport/http"
	"github.com/medportal-notify/internal/transport/ws"
	"github.com/medportal-notify/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(rootCtx, dynamoClient, cfg.DynamoTables)

	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	reminderRepo := dynamo.NewReminderRepo(dynamoClient, cfg.DynamoTables.Reminders)
	doctorRepo := dynamo.NewDoctorRepo(dynamoClient, cfg.DynamoTables.Doctors)
	availabilityRepo := dynamo.NewAvailabilityRepo(dynamoClient, cfg.DynamoTables.Availabilities)
	appointmentRepo := dynamo.NewAppointmentRepo(dynamoClient, cfg.DynamoTables.Appointments)

	hub := realtime.NewHub(realtime.NewRegistry())
	defer hub.Close()

	// Redis (optional): cross-instance push relay and sweep lock.
	var pusher dispatch.Pusher = hub
	var locker worker.Locker
	if cfg.RedisAddr != "" {
		rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		log.Println("connected to Redis")

		relay := redisclient.NewRelay(rdb, hub)
		go func() {
			if err := relay.Run(rootCtx); err != nil {
				log.Printf("push relay stopped: %v", err)
			}
		}()
		pusher = relay
		locker = redisclient.NewSweepLocker(rdb, cfg.LockTTL)
	}

	dispatchOpts := []dispatch.Option{dispatch.WithBroadcastMode(cfg.BroadcastMode)}
	// SNS notification sink (optional).
	if cfg.SNSTopicARN != "" {
		snsClient, err := sns.NewClient(cfg)
		if err != nil {
			log.Printf("WARN: SNS sink not available: %v", err)
		} else {
			dispatchOpts = append(dispatchOpts, dispatch.WithSink(sns.NewPublisher(snsClient, cfg.SNSTopicARN)))
		}
	}
	dispatcher := dispatch.New(notificationRepo, pusher, hub.Registry(), dispatchOpts...)

	schedOpts := []worker.Option{worker.WithLocker(locker)}
	// S3 sweep report archive (optional).
	if cfg.SweepReportBucket != "" {
		s3Client, err := s3infra.NewClient(cfg)
		if err != nil {
			log.Printf("WARN: sweep report archive not available: %v", err)
		} else {
			schedOpts = append(schedOpts, worker.WithReporter(s3infra.NewReportStore(s3Client, cfg.SweepReportBucket)))
		}
	}

	reminders := reminder.NewScanner(reminderRepo, dispatcher, cfg.ReminderOffsets, nil)
	availabilities := availability.NewScanner(doctorRepo, availabilityRepo, cfg.GracePeriod, cfg.Location, nil)
	appointments := appointment.NewScanner(appointmentRepo, cfg.GracePeriod, cfg.Location, nil)

	scheduler := worker.NewScheduler(cfg.SweepTimeout, schedOpts...)
	scheduler.Add(worker.Job{Name: "reminders", Interval: cfg.ScanInterval, Run: reminders.Sweep().Run})
	scheduler.Add(worker.Job{Name: "availabilities", Interval: cfg.ScanInterval, Run: availabilities.Sweep().Run})
	scheduler.Add(worker.Job{Name: "appointments", Interval: cfg.ScanInterval, Run: appointments.Sweep().Run})
	scheduler.Start(rootCtx)

	deps := &transporthttp.Deps{
		NotificationRepo: notificationRepo,
		Dispatcher:       dispatcher,
		Reminders:        reminders,
		Connections:      hub.Registry(),
		LiveChannel:      ws.NewHandler(hub, cfg.AllowedOrigins),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.AppPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, broadcast=%s)", cfg.AppPort, cfg.AppEnv, cfg.BroadcastMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	scheduler.Wait()
	log.Println("Server stopped")
}
