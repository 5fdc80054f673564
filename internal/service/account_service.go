package service

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack_server/internal/model"
	"github.com/fintrack/fintrack_server/internal/model/dto"
	"github.com/fintrack/fintrack_server/internal/repository"
)

// AccountService 连接账户 / 同步的编排：先问策略层拿放行，动作成功后
// 再记用量（先检查后执行，失败的动作不扣量）。
type AccountService struct {
	accountRepo  *repository.AccountRepository
	calculator   *MetricsCalculator
	enforcement  *EnforcementService
	usageService *UsageService
}

func NewAccountService(
	accountRepo *repository.AccountRepository,
	calculator *MetricsCalculator,
	enforcement *EnforcementService,
	usageService *UsageService,
) *AccountService {
	return &AccountService{
		accountRepo:  accountRepo,
		calculator:   calculator,
		enforcement:  enforcement,
		usageService: usageService,
	}
}

// ConnectAccount 连接一个账户。账户数按「还能再加一个」口径把关，
// 总余额按「不超过上限」口径把关。
func (s *AccountService) ConnectAccount(userID string, req *dto.ConnectAccountRequest) (*model.Account, error) {
	if err := s.enforcement.CheckAccountLimit(userID); err != nil {
		return nil, err
	}

	current, err := s.calculator.TotalBalance(userID)
	if err != nil {
		return nil, err
	}
	proposed := current + math.Round(math.Abs(req.CurrentBalance))
	if err := s.enforcement.CheckBalanceLimit(userID, proposed); err != nil {
		return nil, err
	}

	account := &model.Account{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           req.Name,
		Institution:    req.Institution,
		AccountType:    req.AccountType,
		CurrentBalance: req.CurrentBalance,
	}
	if err := s.accountRepo.Create(account); err != nil {
		return nil, err
	}

	// 创建成功后记账；无订阅用户（隐含 STARTER）没有可记的行，跳过
	if _, err := s.usageService.TrackUsage(userID, model.MetricConnectedAccounts, 1); err != nil {
		var notFound *SubscriptionNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return account, nil
}

// ListAccounts 用户的账户列表
func (s *AccountService) ListAccounts(userID string) ([]*model.Account, error) {
	return s.accountRepo.ListByUser(userID)
}

// SyncAccount 触发一次账户同步。按套餐同步频率限流，记 SYNC_REQUESTS。
// 同步本身（拉取银行数据）由外部流程完成，这里只做门禁与登记。
func (s *AccountService) SyncAccount(userID, accountID string) error {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if account.UserID != userID {
		return ErrAccountNotFound
	}

	if err := s.enforcement.CheckSyncAllowed(userID); err != nil {
		return err
	}
	if err := s.usageService.EnforceUsageLimit(userID, model.MetricSyncRequests, 1); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.accountRepo.CreateSyncLog(&model.SyncLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		AccountID: accountID,
		Status:    "completed",
		CreatedAt: now,
	}); err != nil {
		return err
	}
	if err := s.accountRepo.UpdateLastSynced(accountID, now); err != nil {
		return err
	}

	if _, err := s.usageService.TrackUsage(userID, model.MetricSyncRequests, 1); err != nil {
		var notFound *SubscriptionNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return nil
}
