package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fintrack/fintrack_server/internal/model"
	"github.com/fintrack/fintrack_server/internal/model/dto"
	"github.com/fintrack/fintrack_server/internal/tier"
)

// approachingLimitThreshold 「接近上限」的用量百分比阈值。
// 升级建议、接近上限判定与越限告警共用这一个常量。
const approachingLimitThreshold = 80.0

// EnforcementService 策略层：把「这次操作是否消耗配额」翻译成
// 放行/拒绝。Enforce* 返回布尔判定，Check* 在拒绝时返回携带所需
// 套餐的类型化错误。
type EnforcementService struct {
	subService   *SubscriptionService
	usageService *UsageService
	calculator   *MetricsCalculator
}

func NewEnforcementService(
	subService *SubscriptionService,
	usageService *UsageService,
	calculator *MetricsCalculator,
) *EnforcementService {
	return &EnforcementService{
		subService:   subService,
		usageService: usageService,
		calculator:   calculator,
	}
}

// EnforceAccountLimit 还能否再连接一个账户。无限制套餐直接放行；
// 尚无用量行时放行（首次使用的宽松默认）。
func (s *EnforcementService) EnforceAccountLimit(userID string) (bool, error) {
	t := s.subService.GetUserTier(userID)
	if tier.LimitsFor(t).Accounts == tier.Unlimited {
		return true, nil
	}
	return s.usageService.CheckUsageLimit(userID, model.MetricConnectedAccounts)
}

// EnforceBalanceLimit 拟追踪的总余额是否在套餐上限内。这里是 ≤：
// 恰好等于上限允许，与账户数的严格 < 口径刻意不同。
func (s *EnforcementService) EnforceBalanceLimit(userID string, proposedTotalBalance float64) (bool, error) {
	t := s.subService.GetUserTier(userID)
	limit := tier.LimitsFor(t).BalanceLimit
	if limit == tier.Unlimited {
		return true, nil
	}
	return proposedTotalBalance <= limit, nil
}

// CheckAccountLimit 账户数限制的拒绝即错误版本，错误里带上当前值、
// 上限与满足请求的最低套餐。
func (s *EnforcementService) CheckAccountLimit(userID string) error {
	t := s.subService.GetUserTier(userID)
	limit := tier.MetricLimitFor(t, model.MetricConnectedAccounts)
	if limit == model.UnlimitedValue {
		return nil
	}

	current, err := s.currentAccountUsage(userID)
	if err != nil {
		return err
	}

	if current < limit {
		return nil
	}
	return &TierLimitExceededError{
		LimitType:    model.MetricConnectedAccounts.Label(),
		CurrentValue: current,
		LimitValue:   limit,
		RequiredTier: requiredTierForMetric(t, model.MetricConnectedAccounts, current+1),
	}
}

// CheckBalanceLimit 余额上限的拒绝即错误版本
func (s *EnforcementService) CheckBalanceLimit(userID string, proposedTotalBalance float64) error {
	ok, err := s.EnforceBalanceLimit(userID, proposedTotalBalance)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	t := s.subService.GetUserTier(userID)
	return &TierLimitExceededError{
		LimitType:    model.MetricTotalBalance.Label(),
		CurrentValue: proposedTotalBalance,
		LimitValue:   tier.LimitsFor(t).BalanceLimit,
		RequiredTier: requiredTierForMetric(t, model.MetricTotalBalance, proposedTotalBalance),
	}
}

// CheckFeatureAccess 功能门禁。拒绝时给出包含该功能的最低套餐
// （从当前套餐起向上找，找不到回落最高档）。
func (s *EnforcementService) CheckFeatureAccess(userID string, feature tier.Feature) error {
	if s.subService.CanPerformAction(userID, feature) {
		return nil
	}

	t := s.subService.GetUserTier(userID)
	required := t
	for {
		if tier.IsFeatureAvailable(required, feature) {
			break
		}
		next, ok := tier.NextTier(required)
		if !ok {
			required = tier.TopTier()
			break
		}
		required = next
	}

	return &FeatureNotAvailableError{Feature: feature, RequiredTier: required}
}

// CheckSyncAllowed 按套餐的同步频率档位限流：daily 档 24 小时内
// 只允许一次同步，realtime/priority 不限。
func (s *EnforcementService) CheckSyncAllowed(userID string) error {
	t := s.subService.GetUserTier(userID)
	if tier.LimitsFor(t).SyncFrequency != tier.SyncDaily {
		return nil
	}

	count, err := s.calculator.CountSyncsSince(userID, time.Now().Add(-24*time.Hour))
	if err != nil {
		return err
	}
	if count >= 1 {
		return ErrSyncTooFrequent
	}
	return nil
}

// GetUsageSummary 用量总览（只读报表视图）
func (s *EnforcementService) GetUsageSummary(userID string) (*dto.UsageSummary, error) {
	status, err := s.usageService.GetUsageLimitStatus(userID)
	if err != nil {
		return nil, err
	}

	return &dto.UsageSummary{
		Tier:    s.subService.GetUserTier(userID),
		Metrics: status,
	}, nil
}

// IsApproachingLimits 是否有任一受限指标用量达到告警阈值
func (s *EnforcementService) IsApproachingLimits(userID string) (bool, error) {
	status, err := s.usageService.GetUsageLimitStatus(userID)
	if err != nil {
		return false, err
	}

	for _, ms := range status {
		if ms.Limit == model.UnlimitedValue {
			continue
		}
		if ms.Percentage >= approachingLimitThreshold {
			return true, nil
		}
	}
	return false, nil
}

// GetUpgradeSuggestions 升级建议。咨询性质、不报错：任一受限指标
// 用量达到阈值即建议升到高一档，每个触发指标各给一条理由。
// 不会建议等于或低于当前档的套餐。
func (s *EnforcementService) GetUpgradeSuggestions(userID string) (*dto.UpgradeSuggestion, error) {
	status, err := s.usageService.GetUsageLimitStatus(userID)
	if err != nil {
		return nil, err
	}

	current := s.subService.GetUserTier(userID)
	suggestion := &dto.UpgradeSuggestion{CurrentTier: current}

	var reasons []string
	for _, mt := range model.AllMetricTypes {
		ms, ok := status[mt]
		if !ok || ms.Limit == model.UnlimitedValue {
			continue
		}
		if ms.Percentage >= approachingLimitThreshold {
			reasons = append(reasons, fmt.Sprintf("%s 已使用 %.0f%%（%.0f/%.0f）",
				mt.Label(), ms.Percentage, ms.Current, ms.Limit))
		}
	}

	if len(reasons) == 0 {
		return suggestion, nil
	}

	next, ok := tier.NextTier(current)
	if !ok {
		// 已是最高档，无可建议的套餐
		return suggestion, nil
	}

	suggestion.ShouldUpgrade = true
	suggestion.SuggestedTier = next
	suggestion.Reasons = reasons
	return suggestion, nil
}

// currentAccountUsage 账户数的当前用量：有订阅取存量计数行，
// 无订阅（隐含 STARTER）退回资源表实时计数。
func (s *EnforcementService) currentAccountUsage(userID string) (float64, error) {
	sub, err := s.subService.GetUserSubscription(userID)
	if err != nil {
		var notFound *SubscriptionNotFoundError
		if errors.As(err, &notFound) {
			count, err := s.calculator.CountConnectedAccounts(userID)
			if err != nil {
				return 0, err
			}
			return float64(count), nil
		}
		return 0, err
	}

	row, err := s.usageService.usageRepo.GetOpenRow(userID, model.MetricConnectedAccounts, sub.CurrentPeriodStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.CurrentValue, nil
}
