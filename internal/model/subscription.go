package model

import (
	"time"
)

// Tier 订阅套餐等级，按 TierOrder 全序排列
type Tier string

const (
	TierStarter Tier = "starter"
	TierGrowth  Tier = "growth"
	TierPro     Tier = "pro"
)

// TierOrder 套餐从低到高的顺序
var TierOrder = []Tier{TierStarter, TierGrowth, TierPro}

// Index 返回套餐在全序中的位置，未知套餐返回 -1
func (t Tier) Index() int {
	for i, tier := range TierOrder {
		if tier == t {
			return i
		}
	}
	return -1
}

// Less 判断 t 是否低于 other
func (t Tier) Less(other Tier) bool {
	return t.Index() < other.Index()
}

// Valid 判断是否为已知套餐
func (t Tier) Valid() bool {
	return t.Index() >= 0
}

// SubscriptionStatus 订阅状态
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusUnpaid   SubscriptionStatus = "unpaid"
)

// Entitled 判断该状态是否享有套餐权益
func (s SubscriptionStatus) Entitled() bool {
	return s == StatusActive || s == StatusTrialing
}

// BillingCycle 计费周期
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// Valid 判断是否为已知计费周期
func (c BillingCycle) Valid() bool {
	return c == CycleMonthly || c == CycleYearly
}

type Subscription struct {
	ID                 string             `gorm:"primaryKey;size:36" json:"id"`
	UserID             string             `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	Tier               Tier               `gorm:"size:20;not null" json:"tier"`
	Status             SubscriptionStatus `gorm:"size:20;default:active;index" json:"status"`
	BillingCycle       BillingCycle       `gorm:"size:20;not null" json:"billing_cycle"`
	CurrentPeriodStart time.Time          `gorm:"not null" json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `gorm:"not null;index" json:"current_period_end"`
	CancelAtPeriodEnd  bool               `gorm:"default:false" json:"cancel_at_period_end"`
	TrialEnd           *time.Time         `json:"trial_end,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
