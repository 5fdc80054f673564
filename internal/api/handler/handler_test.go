package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack_server/internal/api/middleware"
	"github.com/fintrack/fintrack_server/internal/pkg/response"
	"github.com/fintrack/fintrack_server/internal/repository"
	"github.com/fintrack/fintrack_server/internal/service"
	"github.com/fintrack/fintrack_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// handlerEnv 接口层测试环境：真实服务对象图 + 注入身份的路由
type handlerEnv struct {
	db           *gorm.DB
	subService   *service.SubscriptionService
	usageService *service.UsageService
	enforcement  *service.EnforcementService
	accounts     *service.AccountService
	usageRepo    *repository.UsageMetricRepository
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	subRepo := repository.NewSubscriptionRepository(db)
	usageRepo := repository.NewUsageMetricRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	calculator := service.NewMetricsCalculator(accountRepo)
	subService := service.NewSubscriptionService(db, subRepo, usageRepo)
	usageService := service.NewUsageService(db, subRepo, usageRepo, calculator, nil)
	enforcement := service.NewEnforcementService(subService, usageService, calculator)
	accounts := service.NewAccountService(accountRepo, calculator, enforcement, usageService)

	return &handlerEnv{
		db:           db,
		subService:   subService,
		usageService: usageService,
		enforcement:  enforcement,
		accounts:     accounts,
		usageRepo:    usageRepo,
	}
}

// router 构造带固定身份的测试路由，跳过 JWT 校验
func (e *handlerEnv) router(userID string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})

	subHandler := NewSubscriptionHandler(e.subService)
	usageHandler := NewUsageHandler(e.usageService, e.enforcement)
	accountHandler := NewAccountHandler(e.accounts)
	exportHandler := NewExportHandler(e.enforcement, e.usageService)

	r.GET("/plans", NewPlansHandler().List)
	r.GET("/subscription", subHandler.Get)
	r.POST("/subscription", subHandler.Create)
	r.PUT("/subscription", subHandler.Update)
	r.POST("/subscription/cancel", subHandler.Cancel)
	r.GET("/usage", usageHandler.List)
	r.GET("/usage/status", usageHandler.Status)
	r.GET("/usage/summary", usageHandler.Summary)
	r.GET("/usage/suggestions", usageHandler.Suggestions)
	r.POST("/accounts", accountHandler.Connect)
	r.GET("/accounts", accountHandler.List)
	r.POST("/accounts/:id/sync", accountHandler.Sync)
	r.POST("/exports", exportHandler.Create)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *response.Response {
	t.Helper()

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}
