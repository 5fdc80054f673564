package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/fintrack/fintrack_server/config"
	"github.com/fintrack/fintrack_server/internal/database"
	"github.com/fintrack/fintrack_server/internal/repository"
	"github.com/fintrack/fintrack_server/internal/service"
)

var (
	dryRun = flag.Bool("dry-run", true, "Dry run mode, don't actually write")
)

func main() {
	flag.Parse()

	log.Println("Starting period rollover task...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	now := time.Now().UTC()
	subRepo := repository.NewSubscriptionRepository(db)

	if *dryRun {
		due, err := subRepo.ListDue(now)
		if err != nil {
			log.Fatalf("Failed to list due subscriptions: %v", err)
		}
		for _, sub := range due {
			action := "advance period"
			if sub.CancelAtPeriodEnd {
				action = "cancel and downgrade to starter"
			}
			log.Printf("Would %s: subscription=%s user=%s tier=%s period_end=%s",
				action, sub.ID, sub.UserID, sub.Tier, sub.CurrentPeriodEnd.Format(time.RFC3339))
		}
		log.Printf("Dry run complete, %d subscriptions due", len(due))
		return
	}

	usageRepo := repository.NewUsageMetricRepository(db)
	subService := service.NewSubscriptionService(db, subRepo, usageRepo)

	n, err := subService.RolloverDueSubscriptions(now)
	if err != nil {
		log.Fatalf("Rollover failed after %d subscriptions: %v", n, err)
	}

	log.Printf("Rollover complete, %d subscriptions processed", n)
}
