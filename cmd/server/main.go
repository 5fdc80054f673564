package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fintrack/fintrack_server/config"
	"github.com/fintrack/fintrack_server/internal/api"
	"github.com/fintrack/fintrack_server/internal/api/handler"
	"github.com/fintrack/fintrack_server/internal/database"
	"github.com/fintrack/fintrack_server/internal/pkg/cron"
	"github.com/fintrack/fintrack_server/internal/pkg/pubsub"
	"github.com/fintrack/fintrack_server/internal/pkg/ws"
	"github.com/fintrack/fintrack_server/internal/repository"
	"github.com/fintrack/fintrack_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	usageRepo := repository.NewUsageMetricRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	// 初始化 Service
	publisher := pubsub.NewPublisher(rdb)
	calculator := service.NewMetricsCalculator(accountRepo)
	authService := service.NewAuthService(userRepo, cfg)
	subService := service.NewSubscriptionService(db, subRepo, usageRepo)
	usageService := service.NewUsageService(db, subRepo, usageRepo, calculator, publisher)
	enforcementService := service.NewEnforcementService(subService, usageService, calculator)
	accountService := service.NewAccountService(accountRepo, calculator, enforcementService, usageService)

	// 订阅用量告警并推给在线用户
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(alert *pubsub.AlertMessage) {
			_ = wsHub.PushUsageAlert(alert.UserID, alert)
		})
		if err != nil && err != context.Canceled {
			log.Printf("Usage alert subscriber stopped: %v", err)
		}
	}()
	log.Println("Usage alert subscriber started")

	// 账期滚动定时任务
	if cfg.Rollover.Enabled {
		cronService := cron.NewService(subService, cfg.Rollover.IntervalHours)
		cronService.Start()
		defer cronService.Stop()
	}

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	plansHandler := handler.NewPlansHandler()
	subscriptionHandler := handler.NewSubscriptionHandler(subService)
	usageHandler := handler.NewUsageHandler(usageService, enforcementService)
	accountHandler := handler.NewAccountHandler(accountService)
	exportHandler := handler.NewExportHandler(enforcementService, usageService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		plansHandler,
		subscriptionHandler,
		usageHandler,
		accountHandler,
		exportHandler,
		websocketHandler,
		usageService,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
