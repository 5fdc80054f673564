package model

import (
	"time"
)

// MetricType 计量指标类型
type MetricType string

const (
	MetricConnectedAccounts  MetricType = "connected_accounts"
	MetricTotalBalance       MetricType = "total_balance"
	MetricTransactionExports MetricType = "transaction_exports"
	MetricAPICalls           MetricType = "api_calls"
	MetricSyncRequests       MetricType = "sync_requests"
)

// AllMetricTypes 全部指标类型，建新账期行时按此遍历
var AllMetricTypes = []MetricType{
	MetricConnectedAccounts,
	MetricTotalBalance,
	MetricTransactionExports,
	MetricAPICalls,
	MetricSyncRequests,
}

// Valid 判断是否为已知指标类型
func (m MetricType) Valid() bool {
	for _, t := range AllMetricTypes {
		if t == m {
			return true
		}
	}
	return false
}

// Label 指标的展示名称（错误信息、升级提示里用）
func (m MetricType) Label() string {
	switch m {
	case MetricConnectedAccounts:
		return "Connected accounts"
	case MetricTotalBalance:
		return "Total balance"
	case MetricTransactionExports:
		return "Transaction exports"
	case MetricAPICalls:
		return "API calls"
	case MetricSyncRequests:
		return "Sync requests"
	}
	return string(m)
}

// UnlimitedValue limit_value 的无限制哨兵值
const UnlimitedValue = -1

// UsageMetric 单用户单指标在一个账期内的用量行。
// (user_id, metric_type, period_start) 唯一；账期结束后历史行保留且不再修改。
type UsageMetric struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	SubscriptionID string     `gorm:"size:36;not null;index" json:"subscription_id"`
	UserID         string     `gorm:"size:36;not null;uniqueIndex:idx_user_metric_period,priority:1" json:"user_id"`
	MetricType     MetricType `gorm:"size:30;not null;uniqueIndex:idx_user_metric_period,priority:2" json:"metric_type"`
	CurrentValue   float64    `gorm:"type:decimal(14,2);default:0" json:"current_value"`
	LimitValue     float64    `gorm:"type:decimal(14,2);default:0" json:"limit_value"`
	PeriodStart    time.Time  `gorm:"not null;uniqueIndex:idx_user_metric_period,priority:3" json:"period_start"`
	PeriodEnd      time.Time  `gorm:"not null" json:"period_end"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (UsageMetric) TableName() string {
	return "usage_metrics"
}

// Unlimited 判断该行是否不设上限
func (m *UsageMetric) Unlimited() bool {
	return m.LimitValue == UnlimitedValue
}
