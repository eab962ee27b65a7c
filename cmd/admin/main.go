package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"anglerlog/backend/internal/moderation"
	"anglerlog/backend/internal/notify"
	"anglerlog/backend/internal/ratelimit"
	"anglerlog/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Operator CLI. Actions run under the admin profile named by ADMIN_USER_ID,
// go through the same service layer as the HTTP API and land in the same
// moderation log.

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// No redis: suspension flags are rebuilt lazily by the API process and
	// live notifications are best effort anyway.
	s := storage.NewStorageService(db, nil)
	notifier := notify.NewNotifier(s)
	moderationSvc := moderation.NewService(s, notifier, nil)
	limiter := ratelimit.NewService(s)

	adminID := os.Getenv("ADMIN_USER_ID")
	if adminID == "" {
		fmt.Println("ADMIN_USER_ID must be set to the acting admin's profile id")
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "warn":
		if len(os.Args) < 5 {
			fmt.Println("Usage: admin warn <user_id> <severity> <reason> [duration_hours]")
			os.Exit(1)
		}
		userID, severity, reason := os.Args[2], os.Args[3], os.Args[4]
		var duration *int
		if len(os.Args) > 5 {
			hours, err := strconv.Atoi(os.Args[5])
			if err != nil {
				fmt.Println("Invalid duration. Please provide an integer number of hours.")
				os.Exit(1)
			}
			duration = &hours
		}
		warningID, err := moderationSvc.WarnUser(adminID, userID, reason, severity, duration)
		if err != nil {
			log.Fatalf("Error warning user: %v", err)
		}
		fmt.Printf("Warning %s recorded for user %s.\n", warningID, userID)

	case "clear":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin clear <user_id> <reason>")
			os.Exit(1)
		}
		if err := moderationSvc.ClearStatus(adminID, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Error clearing moderation status: %v", err)
		}
		fmt.Printf("Moderation status cleared for user %s.\n", os.Args[2])

	case "reports":
		filters := storage.ReportFilters{}
		if len(os.Args) > 2 {
			filters.Status = os.Args[2]
		}
		reports, err := s.ListReports(filters, 50, 0)
		if err != nil {
			log.Fatalf("Error listing reports: %v", err)
		}
		for _, r := range reports {
			fmt.Printf("%s  %-9s %-8s %s  %s\n", r.ID, r.Status, r.TargetType, r.TargetID, r.Reason)
		}
		fmt.Printf("%d report(s)\n", len(reports))

	case "cleanup":
		deleted, err := limiter.Cleanup()
		if err != nil {
			log.Fatalf("Error cleaning rate limit records: %v", err)
		}
		fmt.Printf("Deleted %d expired rate limit record(s).\n", deleted)

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: admin <warn|clear|reports|cleanup> [args]")
}
