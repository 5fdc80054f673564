package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack_server/config"
	"github.com/fintrack/fintrack_server/internal/api/handler"
	"github.com/fintrack/fintrack_server/internal/api/middleware"
	"github.com/fintrack/fintrack_server/internal/service"
)

type Router struct {
	authHandler         *handler.AuthHandler
	plansHandler        *handler.PlansHandler
	subscriptionHandler *handler.SubscriptionHandler
	usageHandler        *handler.UsageHandler
	accountHandler      *handler.AccountHandler
	exportHandler       *handler.ExportHandler
	websocketHandler    *handler.WebSocketHandler
	usageService        *service.UsageService
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	plansHandler *handler.PlansHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	usageHandler *handler.UsageHandler,
	accountHandler *handler.AccountHandler,
	exportHandler *handler.ExportHandler,
	websocketHandler *handler.WebSocketHandler,
	usageService *service.UsageService,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		plansHandler:        plansHandler,
		subscriptionHandler: subscriptionHandler,
		usageHandler:        usageHandler,
		accountHandler:      accountHandler,
		exportHandler:       exportHandler,
		websocketHandler:    websocketHandler,
		usageService:        usageService,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket（用量告警推送）
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 公开接口 - 套餐目录
		api.GET("/plans", r.plansHandler.List)

		// 需要认证的接口，顺带按请求计量 API 调用
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		authenticated.Use(middleware.APIUsage(r.usageService))
		{
			// 订阅
			subscription := authenticated.Group("/subscription")
			{
				subscription.GET("", r.subscriptionHandler.Get)
				subscription.POST("", r.subscriptionHandler.Create)
				subscription.PUT("", r.subscriptionHandler.Update)
				subscription.POST("/cancel", r.subscriptionHandler.Cancel)
			}

			// 用量
			usage := authenticated.Group("/usage")
			{
				usage.GET("", r.usageHandler.List)
				usage.GET("/status", r.usageHandler.Status)
				usage.GET("/summary", r.usageHandler.Summary)
				usage.GET("/suggestions", r.usageHandler.Suggestions)
			}

			// 账户
			accounts := authenticated.Group("/accounts")
			{
				accounts.POST("", r.accountHandler.Connect)
				accounts.GET("", r.accountHandler.List)
				accounts.POST("/:id/sync", r.accountHandler.Sync)
			}

			// 导出
			authenticated.POST("/exports", r.exportHandler.Create)
		}
	}

	return engine
}
