package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack_server/internal/model"
	"github.com/fintrack/fintrack_server/internal/model/dto"
	"github.com/fintrack/fintrack_server/internal/pkg/pubsub"
	"github.com/fintrack/fintrack_server/internal/repository"
	"github.com/fintrack/fintrack_server/internal/tier"
)

// AlertPublisher 用量告警的发布端。生产实现是 Redis pub/sub
// 的 *pubsub.Publisher。
type AlertPublisher interface {
	PublishAlert(ctx context.Context, msg *pubsub.AlertMessage) error
}

// UsageService 用量计量服务：当前账期用量行的增量、读取与上限检查。
// 行按需创建：某 (用户, 指标, 账期) 的第一次增量或检查会以当时套餐的
// 上限播种一条清零的行。
type UsageService struct {
	db         *gorm.DB
	subRepo    *repository.SubscriptionRepository
	usageRepo  *repository.UsageMetricRepository
	calculator *MetricsCalculator
	publisher  AlertPublisher // 可为 nil，告警推送是尽力而为
}

func NewUsageService(
	db *gorm.DB,
	subRepo *repository.SubscriptionRepository,
	usageRepo *repository.UsageMetricRepository,
	calculator *MetricsCalculator,
	publisher AlertPublisher,
) *UsageService {
	return &UsageService{
		db:         db,
		subRepo:    subRepo,
		usageRepo:  usageRepo,
		calculator: calculator,
		publisher:  publisher,
	}
}

// TrackUsage 累加用量。增量必须 ≥ 0（不支持回退消费）。累加本身是
// 数据库侧的单条 UPDATE，同一行的并发增量不会互相覆盖。
func (s *UsageService) TrackUsage(userID string, metric model.MetricType, increment float64) (*model.UsageMetric, error) {
	if increment < 0 {
		return nil, ErrInvalidIncrement
	}
	if !metric.Valid() {
		return nil, errors.New("未知的指标类型")
	}

	sub, err := s.subRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &SubscriptionNotFoundError{UserID: userID}
		}
		return nil, err
	}

	var row *model.UsageMetric
	err = s.db.Transaction(func(tx *gorm.DB) error {
		usageRepo := s.usageRepo.WithTx(tx)

		row, err = usageRepo.GetOpenRow(userID, metric, sub.CurrentPeriodStart)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// 并发首写可能同时走到这里，按「已存在即跳过」写入后重读，
			// 两边拿到的都是同一行
			if err := usageRepo.CreateIfAbsent(s.newOpenRow(sub, metric)); err != nil {
				return err
			}
			row, err = usageRepo.GetOpenRow(userID, metric, sub.CurrentPeriodStart)
			if err != nil {
				return err
			}
		}

		return usageRepo.Increment(row.ID, increment)
	})
	if err != nil {
		return nil, err
	}

	before := row.CurrentValue
	row.CurrentValue += increment

	s.maybePublishAlert(sub, row, before)

	return row, nil
}

// CheckUsageLimit 「还能再加一个吗」判定：无行视为未消费返回 true，
// 无限制返回 true，否则 current < limit（严格小于——恰好达到上限时
// 下一个单位就会超限）。
func (s *UsageService) CheckUsageLimit(userID string, metric model.MetricType) (bool, error) {
	sub, err := s.subRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}

	row, err := s.usageRepo.GetOpenRow(userID, metric, sub.CurrentPeriodStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}

	if row.Unlimited() {
		return true, nil
	}
	return row.CurrentValue < row.LimitValue, nil
}

// EnforceUsageLimit 校验「加上 increment 是否超限」，超限返回
// TierLimitExceededError。本方法不记账——调用方应在受保护的动作成功
// 之后再调 TrackUsage，避免为失败的动作扣量。
func (s *UsageService) EnforceUsageLimit(userID string, metric model.MetricType, increment float64) error {
	sub, err := s.subRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SubscriptionNotFoundError{UserID: userID}
		}
		return err
	}

	current := float64(0)
	limit := tier.MetricLimitFor(sub.Tier, metric)

	row, err := s.usageRepo.GetOpenRow(userID, metric, sub.CurrentPeriodStart)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if row != nil {
		current = row.CurrentValue
		limit = row.LimitValue
	}

	if limit == model.UnlimitedValue {
		return nil
	}
	if current+increment > limit {
		return &TierLimitExceededError{
			LimitType:    metric.Label(),
			CurrentValue: current,
			LimitValue:   limit,
			RequiredTier: requiredTierForMetric(sub.Tier, metric, current+increment),
		}
	}
	return nil
}

// GetCurrentUsage 返回当前账期已存在的用量行。未产生过行的指标不出现
// 在结果里，调用方把缺席当作 0。
func (s *UsageService) GetCurrentUsage(userID string) ([]*model.UsageMetric, error) {
	sub, err := s.subRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &SubscriptionNotFoundError{UserID: userID}
		}
		return nil, err
	}

	return s.usageRepo.ListOpenRows(userID, sub.CurrentPeriodStart)
}

// GetUsageLimitStatus 返回全部五项指标的用量状态。账户数与总余额按
// 资源表实时计算，其余取存量计数。对没有任何行的新用户也保证给出
// 完整的映射。
func (s *UsageService) GetUsageLimitStatus(userID string) (dto.UsageLimitStatus, error) {
	currentTier := model.TierStarter
	var periodStart *time.Time

	sub, err := s.subRepo.GetByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if sub != nil {
		currentTier = sub.Tier
		periodStart = &sub.CurrentPeriodStart
	}

	stored := map[model.MetricType]*model.UsageMetric{}
	if periodStart != nil {
		rows, err := s.usageRepo.ListOpenRows(userID, *periodStart)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			stored[row.MetricType] = row
		}
	}

	status := dto.UsageLimitStatus{}
	for _, mt := range model.AllMetricTypes {
		var current float64
		switch mt {
		case model.MetricConnectedAccounts:
			count, err := s.calculator.CountConnectedAccounts(userID)
			if err != nil {
				return nil, err
			}
			current = float64(count)
		case model.MetricTotalBalance:
			balance, err := s.calculator.TotalBalance(userID)
			if err != nil {
				return nil, err
			}
			current = balance
		default:
			if row, ok := stored[mt]; ok {
				current = row.CurrentValue
			}
		}

		limit := tier.MetricLimitFor(currentTier, mt)
		if row, ok := stored[mt]; ok {
			limit = row.LimitValue
		}

		status[mt] = dto.MetricStatus{
			Current:    current,
			Limit:      limit,
			Percentage: usagePercentage(current, limit),
		}
	}

	return status, nil
}

func (s *UsageService) newOpenRow(sub *model.Subscription, metric model.MetricType) *model.UsageMetric {
	return &model.UsageMetric{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		MetricType:     metric,
		CurrentValue:   0,
		LimitValue:     tier.MetricLimitFor(sub.Tier, metric),
		PeriodStart:    sub.CurrentPeriodStart,
		PeriodEnd:      sub.CurrentPeriodEnd,
	}
}

// maybePublishAlert 受限指标向上越过告警阈值时发布一条告警。
// 发布失败不影响记账。
func (s *UsageService) maybePublishAlert(sub *model.Subscription, row *model.UsageMetric, before float64) {
	if s.publisher == nil || row.Unlimited() || row.LimitValue <= 0 {
		return
	}

	pctBefore := usagePercentage(before, row.LimitValue)
	pctAfter := usagePercentage(row.CurrentValue, row.LimitValue)
	if pctBefore >= approachingLimitThreshold || pctAfter < approachingLimitThreshold {
		return
	}

	msg := &pubsub.AlertMessage{
		UserID:       sub.UserID,
		MetricType:   string(row.MetricType),
		MetricLabel:  row.MetricType.Label(),
		CurrentValue: row.CurrentValue,
		LimitValue:   row.LimitValue,
		Percentage:   pctAfter,
	}
	if next, ok := tier.NextTier(sub.Tier); ok {
		msg.SuggestedTier = string(next)
	}

	_ = s.publisher.PublishAlert(context.Background(), msg)
}

// usagePercentage 用量百分比。无限制恒为 0；上限为 0 时只要有消费
// 即视为 100。
func usagePercentage(current, limit float64) float64 {
	if limit == model.UnlimitedValue {
		return 0
	}
	if limit <= 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return current / limit * 100
}

// requiredTierForMetric 从当前套餐向上找第一个能容纳 needed 的套餐，
// 没有更高的合适档位时回落到最高档。
func requiredTierForMetric(current model.Tier, metric model.MetricType, needed float64) model.Tier {
	t := current
	for {
		next, ok := tier.NextTier(t)
		if !ok {
			return tier.TopTier()
		}
		t = next
		limit := tier.MetricLimitFor(t, metric)
		if limit == model.UnlimitedValue || limit >= needed {
			return t
		}
	}
}
