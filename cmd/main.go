package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"anglerlog/backend/internal/api/handler"
	"anglerlog/backend/internal/api/middleware"
	"anglerlog/backend/internal/comments"
	"anglerlog/backend/internal/config"
	"anglerlog/backend/internal/models"
	"anglerlog/backend/internal/moderation"
	"anglerlog/backend/internal/modlog"
	"anglerlog/backend/internal/notify"
	"anglerlog/backend/internal/ratelimit"
	"anglerlog/backend/internal/report"
	"anglerlog/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func postgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "user"),
		envOr("DB_PASSWORD", "password"),
		envOr("DB_NAME", "anglerlogdb"),
		envOr("DB_PORT", "5432"),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupDependencies() (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(postgresDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Profile{},
		&models.Follow{},
		&models.Catch{},
		&models.Comment{},
		&models.Report{},
		&models.UserWarning{},
		&models.ModerationLogEntry{},
		&models.RateLimitRecord{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting AnglerLog moderation backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	// Telegram alerting is optional; without a token admins simply get no
	// out-of-band pings.
	var alerter *notify.AdminAlerter
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_ADMIN_CHAT_ID"), 10, 64)
		if err != nil {
			log.Fatalf("TELEGRAM_ADMIN_CHAT_ID is not a valid chat id: %v", err)
		}
		alerter, err = notify.NewAdminAlerter(token, chatID)
		if err != nil {
			log.Fatalf("Failed to start Telegram alerter: %v", err)
		}
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, admin alerts disabled")
	}

	notifier := notify.NewNotifier(s)
	limiter := ratelimit.NewService(s)
	modlogSvc := modlog.NewService(s)
	moderationSvc := moderation.NewService(s, notifier, alerter)
	commentsSvc := comments.NewService(s, limiter, moderationSvc, notifier)
	reportSvc := report.NewService(s, limiter, moderationSvc, modlogSvc, notifier, alerter)

	hub := notify.NewHub(s)
	go hub.Run()

	edge := middleware.NewEdgeLimiter(config.EdgeLimiterRPS, config.EdgeLimiterBurst)
	edge.StartJanitor(context.Background(), 2*time.Minute)

	r := gin.Default()
	r.Use(edge.Handler())

	h := handler.NewHandler(s, limiter, commentsSvc, reportSvc, moderationSvc, modlogSvc, hub)

	r.POST("/auth/token", h.IssueToken)
	r.GET("/ws/notifications", h.ServeNotifications)

	authed := r.Group("/")
	authed.Use(h.AuthRequired())
	{
		authed.GET("/ratelimit/status", h.RateLimitStatus)
		authed.GET("/ratelimit/usage", h.RateLimitUsage)

		authed.POST("/catches/:id/comments", h.CreateComment)
		authed.GET("/catches/:id/comments", h.GetThread)
		authed.DELETE("/comments/:id", h.DeleteComment)

		authed.POST("/reports", h.CreateReport)
	}

	// Admin authorization lives in the services; the group only requires a
	// valid token.
	admin := r.Group("/admin")
	admin.Use(h.AuthRequired())
	{
		admin.GET("/reports", h.ListReports)
		admin.PUT("/reports/:id/status", h.UpdateReportStatus)
		admin.GET("/reports/:id/context", h.ReportContext)

		admin.DELETE("/comments/:id", h.AdminDeleteComment)
		admin.POST("/comments/:id/restore", h.AdminRestoreComment)
		admin.DELETE("/catches/:id", h.AdminDeleteCatch)
		admin.POST("/catches/:id/restore", h.AdminRestoreCatch)

		admin.POST("/users/:id/warn", h.WarnUser)
		admin.POST("/users/:id/clear-moderation", h.ClearModeration)

		admin.GET("/moderation-log", h.ListModerationLog)
		admin.POST("/ratelimit/cleanup", h.CleanupRateLimits)
	}

	server := &http.Server{
		Addr:           ":" + envOr("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
