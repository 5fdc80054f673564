package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack_server/internal/model"
	"github.com/fintrack/fintrack_server/internal/model/dto"
	"github.com/fintrack/fintrack_server/internal/repository"
	"github.com/fintrack/fintrack_server/internal/tier"
)

// SubscriptionService 订阅生命周期的唯一写入方。
// 套餐变更时负责把当前账期的用量行上限重写到新套餐（只改 limit_value，
// 不动 current_value），且整个重写在一个事务内完成。
type SubscriptionService struct {
	db        *gorm.DB
	subRepo   *repository.SubscriptionRepository
	usageRepo *repository.UsageMetricRepository
}

func NewSubscriptionService(
	db *gorm.DB,
	subRepo *repository.SubscriptionRepository,
	usageRepo *repository.UsageMetricRepository,
) *SubscriptionService {
	return &SubscriptionService{
		db:        db,
		subRepo:   subRepo,
		usageRepo: usageRepo,
	}
}

// CreateSubscription 创建订阅。账期按日历字段推进（月付 +1 月、年付 +1 年），
// 扣费日落在每月同一天。已存在非 CANCELED 订阅时返回 ErrDuplicateSubscription；
// CANCELED 记录原地复活（同一行、新账期），保持一人一单的唯一约束。
func (s *SubscriptionService) CreateSubscription(userID string, t model.Tier, cycle model.BillingCycle, trialEnd *time.Time) (*model.Subscription, error) {
	if !t.Valid() {
		return nil, ErrInvalidTier
	}
	if !cycle.Valid() {
		return nil, ErrInvalidBillingCycle
	}

	now := time.Now().UTC().Truncate(time.Second)
	sub := &model.Subscription{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Tier:               t,
		Status:             model.StatusActive,
		BillingCycle:       cycle,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   periodEnd(now, cycle),
		CancelAtPeriodEnd:  false,
		TrialEnd:           trialEnd,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.subRepo.WithTx(tx).GetByUserID(userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			if existing.Status != model.StatusCanceled {
				return ErrDuplicateSubscription
			}
			// 复用已取消的记录
			sub.ID = existing.ID
			sub.CreatedAt = existing.CreatedAt
			if err := s.subRepo.WithTx(tx).Update(sub); err != nil {
				return err
			}
		} else {
			if err := s.subRepo.WithTx(tx).Create(sub); err != nil {
				return err
			}
		}

		return s.seedMetrics(tx, sub)
	})
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// UpdateSubscription 按字段部分更新。tier 发生变化时在同一事务内
// 对当前账期的全部用量行重写上限。
func (s *SubscriptionService) UpdateSubscription(subscriptionID string, req *dto.UpdateSubscriptionRequest) (*model.Subscription, error) {
	var updated *model.Subscription

	err := s.db.Transaction(func(tx *gorm.DB) error {
		sub, err := s.subRepo.WithTx(tx).GetByID(subscriptionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &SubscriptionUpdateError{SubscriptionID: subscriptionID, Message: "订阅不存在"}
			}
			return err
		}

		tierChanged := false
		if req.Tier != nil && *req.Tier != sub.Tier {
			if !req.Tier.Valid() {
				return ErrInvalidTier
			}
			sub.Tier = *req.Tier
			tierChanged = true
		}
		if req.Status != nil {
			sub.Status = *req.Status
		}
		if req.BillingCycle != nil {
			if !req.BillingCycle.Valid() {
				return ErrInvalidBillingCycle
			}
			sub.BillingCycle = *req.BillingCycle
		}
		if req.CancelAtPeriodEnd != nil {
			sub.CancelAtPeriodEnd = *req.CancelAtPeriodEnd
		}
		if req.TrialEnd != nil {
			sub.TrialEnd = req.TrialEnd
		}

		if err := s.subRepo.WithTx(tx).Update(sub); err != nil {
			return err
		}

		if tierChanged {
			if err := s.rebaseLimits(tx, sub); err != nil {
				return err
			}
		}

		updated = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// CancelSubscription 取消订阅。atPeriodEnd 为 true 只置标记，套餐与状态
// 不变，实际降级由账期滚动任务处理；为 false 时在同一次更新里降回
// STARTER 并置 CANCELED，随后按套餐变更路径重写用量上限。
func (s *SubscriptionService) CancelSubscription(subscriptionID string, atPeriodEnd bool) (*model.Subscription, error) {
	if atPeriodEnd {
		flag := true
		return s.UpdateSubscription(subscriptionID, &dto.UpdateSubscriptionRequest{
			CancelAtPeriodEnd: &flag,
		})
	}

	starter := model.TierStarter
	canceled := model.StatusCanceled
	return s.UpdateSubscription(subscriptionID, &dto.UpdateSubscriptionRequest{
		Tier:   &starter,
		Status: &canceled,
	})
}

// GetUserSubscription 查询用户订阅，不存在时返回 SubscriptionNotFoundError
func (s *SubscriptionService) GetUserSubscription(userID string) (*model.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &SubscriptionNotFoundError{UserID: userID}
		}
		return nil, err
	}
	return sub, nil
}

// GetUserTier 返回用户套餐。无订阅记录时默认 STARTER，从不报错。
func (s *SubscriptionService) GetUserTier(userID string) model.Tier {
	sub, err := s.subRepo.GetByUserID(userID)
	if err != nil {
		return model.TierStarter
	}
	return sub.Tier
}

// CanPerformAction 判断用户当前是否可使用某功能。无订阅、订阅失效、
// 套餐不含该功能都是正常的 false，不是错误。
func (s *SubscriptionService) CanPerformAction(userID string, feature tier.Feature) bool {
	sub, err := s.subRepo.GetByUserID(userID)
	if err != nil {
		return false
	}
	if !sub.Status.Entitled() {
		return false
	}
	return tier.IsFeatureAvailable(sub.Tier, feature)
}

// RolloverDueSubscriptions 处理账期已到期的订阅：置了取消标记的降回
// STARTER 并置 CANCELED；其余推进一个计费周期并为新账期播种清零的
// 用量行。历史账期的行保留不动。返回处理的订阅数。
func (s *SubscriptionService) RolloverDueSubscriptions(now time.Time) (int, error) {
	due, err := s.subRepo.ListDue(now)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, sub := range due {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if sub.CancelAtPeriodEnd {
				sub.Tier = model.TierStarter
				sub.Status = model.StatusCanceled
				sub.CancelAtPeriodEnd = false
				if err := s.subRepo.WithTx(tx).Update(sub); err != nil {
					return err
				}
				return s.rebaseLimits(tx, sub)
			}

			// 从上个账期终点续推，扣费日不漂移
			sub.CurrentPeriodStart = sub.CurrentPeriodEnd
			sub.CurrentPeriodEnd = periodEnd(sub.CurrentPeriodStart, sub.BillingCycle)
			if err := s.subRepo.WithTx(tx).Update(sub); err != nil {
				return err
			}
			return s.seedMetrics(tx, sub)
		})
		if err != nil {
			return processed, err
		}
		processed++
	}

	return processed, nil
}

// seedMetrics 为订阅当前账期播种全部指标行（清零、上限取自套餐目录）
func (s *SubscriptionService) seedMetrics(tx *gorm.DB, sub *model.Subscription) error {
	metrics := make([]*model.UsageMetric, 0, len(model.AllMetricTypes))
	for _, mt := range model.AllMetricTypes {
		metrics = append(metrics, &model.UsageMetric{
			ID:             uuid.NewString(),
			SubscriptionID: sub.ID,
			UserID:         sub.UserID,
			MetricType:     mt,
			CurrentValue:   0,
			LimitValue:     tier.MetricLimitFor(sub.Tier, mt),
			PeriodStart:    sub.CurrentPeriodStart,
			PeriodEnd:      sub.CurrentPeriodEnd,
		})
	}
	return s.usageRepo.WithTx(tx).CreateBatch(metrics)
}

// rebaseLimits 把当前账期全部用量行的上限重写到订阅的现套餐
func (s *SubscriptionService) rebaseLimits(tx *gorm.DB, sub *model.Subscription) error {
	usageRepo := s.usageRepo.WithTx(tx)
	for _, mt := range model.AllMetricTypes {
		limit := tier.MetricLimitFor(sub.Tier, mt)
		if err := usageRepo.RebaseLimit(sub.UserID, mt, sub.CurrentPeriodStart, limit); err != nil {
			return err
		}
	}
	return nil
}

func periodEnd(start time.Time, cycle model.BillingCycle) time.Time {
	if cycle == model.CycleYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}
