package dto

import (
	"github.com/fintrack/fintrack_server/internal/model"
)

// MetricStatus 单指标的用量状态
type MetricStatus struct {
	Current    float64 `json:"current"`
	Limit      float64 `json:"limit"` // -1 表示无限制
	Percentage float64 `json:"percentage"`
}

// UsageLimitStatus 全部指标的用量状态，对任意用户都是完整的五项
type UsageLimitStatus map[model.MetricType]MetricStatus

// UsageSummary 用量总览
type UsageSummary struct {
	Tier    model.Tier       `json:"tier"`
	Metrics UsageLimitStatus `json:"metrics"`
}

// UpgradeSuggestion 升级建议（只读、不报错的咨询接口）
type UpgradeSuggestion struct {
	ShouldUpgrade bool       `json:"should_upgrade"`
	CurrentTier   model.Tier `json:"current_tier"`
	SuggestedTier model.Tier `json:"suggested_tier,omitempty"`
	Reasons       []string   `json:"reasons,omitempty"`
}
