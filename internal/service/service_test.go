package service

import (
	"testing"

	"gorm.io/gorm"

	"github.com/fintrack/fintrack_server/internal/repository"
	"github.com/fintrack/fintrack_server/internal/testutil"
)

// testServices 服务层测试共用的对象图。告警发布器留空，
// 推送路径在 pubsub 包里单独测。
type testServices struct {
	db           *gorm.DB
	subRepo      *repository.SubscriptionRepository
	usageRepo    *repository.UsageMetricRepository
	accountRepo  *repository.AccountRepository
	userRepo     *repository.UserRepository
	calculator   *MetricsCalculator
	subService   *SubscriptionService
	usageService *UsageService
	enforcement  *EnforcementService
	accounts     *AccountService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	s := &testServices{
		db:          db,
		subRepo:     repository.NewSubscriptionRepository(db),
		usageRepo:   repository.NewUsageMetricRepository(db),
		accountRepo: repository.NewAccountRepository(db),
		userRepo:    repository.NewUserRepository(db),
	}
	s.calculator = NewMetricsCalculator(s.accountRepo)
	s.subService = NewSubscriptionService(db, s.subRepo, s.usageRepo)
	s.usageService = NewUsageService(db, s.subRepo, s.usageRepo, s.calculator, nil)
	s.enforcement = NewEnforcementService(s.subService, s.usageService, s.calculator)
	s.accounts = NewAccountService(s.accountRepo, s.calculator, s.enforcement, s.usageService)
	return s
}
