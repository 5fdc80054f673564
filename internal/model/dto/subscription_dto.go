package dto

import (
	"time"

	"github.com/fintrack/fintrack_server/internal/model"
)

// CreateSubscriptionRequest 创建订阅请求（计费侧确认后调用）
type CreateSubscriptionRequest struct {
	Tier         model.Tier         `json:"tier" binding:"required"`
	BillingCycle model.BillingCycle `json:"billing_cycle" binding:"required"`
	TrialEnd     *time.Time         `json:"trial_end,omitempty"`
}

// UpdateSubscriptionRequest 部分更新请求，nil 字段不触碰
type UpdateSubscriptionRequest struct {
	Tier              *model.Tier               `json:"tier,omitempty"`
	Status            *model.SubscriptionStatus `json:"status,omitempty"`
	BillingCycle      *model.BillingCycle       `json:"billing_cycle,omitempty"`
	CancelAtPeriodEnd *bool                     `json:"cancel_at_period_end,omitempty"`
	TrialEnd          *time.Time                `json:"trial_end,omitempty"`
}

// CancelSubscriptionRequest 取消订阅请求
type CancelSubscriptionRequest struct {
	AtPeriodEnd bool `json:"at_period_end"`
}

// SubscriptionInfo 返回给前端的订阅视图
type SubscriptionInfo struct {
	ID                 string     `json:"id,omitempty"`
	Tier               model.Tier `json:"tier"`
	Status             string     `json:"status"`
	BillingCycle       string     `json:"billing_cycle,omitempty"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	TrialEnd           *time.Time `json:"trial_end,omitempty"`
	Price              float64    `json:"price"`
}

// PlanInfo 套餐目录条目（公开接口）
type PlanInfo struct {
	Tier          model.Tier `json:"tier"`
	Accounts      int        `json:"accounts"`
	BalanceLimit  float64    `json:"balance_limit"`
	HistoryMonths int        `json:"transaction_history_months"`
	SyncFrequency string     `json:"sync_frequency"`
	Features      []string   `json:"features"`
	Support       string     `json:"support"`
	PriceMonthly  float64    `json:"price_monthly"`
	PriceYearly   float64    `json:"price_yearly"`
}
