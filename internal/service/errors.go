package service

import (
	"errors"
	"fmt"

	"github.com/fintrack/fintrack_server/internal/model"
	"github.com/fintrack/fintrack_server/internal/tier"
)

var (
	ErrDuplicateSubscription = errors.New("该用户已存在有效订阅")
	ErrInvalidTier           = errors.New("未知的套餐等级")
	ErrInvalidBillingCycle   = errors.New("未知的计费周期")
	ErrInvalidIncrement      = errors.New("用量增量不能为负数")
	ErrInvalidCredentials    = errors.New("邮箱或密码错误")
	ErrEmailExists           = errors.New("邮箱已被注册")
	ErrUsernameExists        = errors.New("用户名已被占用")
	ErrAccountNotFound       = errors.New("账户不存在")
	ErrSyncTooFrequent       = errors.New("当前套餐今日已同步过，请升级以获得实时同步")
)

// TierLimitExceededError 配额已达上限。携带指标名、当前值、上限值
// 与满足本次请求所需的最低套餐，调用方无需再查询即可渲染升级提示。
type TierLimitExceededError struct {
	LimitType    string     `json:"limit_type"`
	CurrentValue float64    `json:"current_value"`
	LimitValue   float64    `json:"limit_value"`
	RequiredTier model.Tier `json:"required_tier"`
}

func (e *TierLimitExceededError) Error() string {
	return fmt.Sprintf("已达到套餐限制：%s（%.0f/%.0f），需升级至 %s",
		e.LimitType, e.CurrentValue, e.LimitValue, e.RequiredTier)
}

// FeatureNotAvailableError 当前套餐不包含该功能
type FeatureNotAvailableError struct {
	Feature      tier.Feature `json:"feature"`
	RequiredTier model.Tier   `json:"required_tier"`
}

func (e *FeatureNotAvailableError) Error() string {
	return fmt.Sprintf("当前套餐不包含功能 %s，需升级至 %s", e.Feature, e.RequiredTier)
}

// SubscriptionNotFoundError 对无订阅用户执行了要求订阅的操作
type SubscriptionNotFoundError struct {
	UserID string `json:"user_id"`
}

func (e *SubscriptionNotFoundError) Error() string {
	return fmt.Sprintf("用户 %s 不存在订阅记录", e.UserID)
}

// SubscriptionUpdateError 订阅更新/取消时目标记录不存在或写入失败
type SubscriptionUpdateError struct {
	SubscriptionID string `json:"subscription_id"`
	Message        string `json:"message"`
}

func (e *SubscriptionUpdateError) Error() string {
	return fmt.Sprintf("订阅 %s 更新失败：%s", e.SubscriptionID, e.Message)
}
