// Package tier 定义静态的套餐目录：各套餐的配额、功能集、同步频率与价格。
// 目录是纯查表，无状态；功能集满足单调解锁（高套餐是低套餐的超集），
// 该不变式在包初始化时断言一次，运行期不再检查。
package tier

import (
	"fmt"

	"github.com/fintrack/fintrack_server/internal/model"
)

// Unlimited 配额无限制的哨兵值
const Unlimited = -1

// Feature 套餐功能标识
type Feature string

const (
	FeatureExpenseTracking  Feature = "expense_tracking"
	FeatureBasicBudgets     Feature = "basic_budgets"
	FeatureBankSync         Feature = "bank_sync"
	FeatureCSVExport        Feature = "csv_export"
	FeatureCustomCategories Feature = "custom_categories"
	FeatureGoalTracking     Feature = "goal_tracking"
	FeatureAPIAccess        Feature = "api_access"
	FeatureAdvancedReports  Feature = "advanced_reports"
	FeaturePrioritySync     Feature = "priority_sync"
)

// SyncFrequency 同步频率档位
type SyncFrequency string

const (
	SyncDaily    SyncFrequency = "daily"
	SyncRealtime SyncFrequency = "realtime"
	SyncPriority SyncFrequency = "priority"
)

// SupportLevel 客服支持档位
type SupportLevel string

const (
	SupportCommunity SupportLevel = "community"
	SupportEmail     SupportLevel = "email"
	SupportPriority  SupportLevel = "priority"
)

// Limits 单个套餐的配额与功能集。数值 -1 表示无限制。
type Limits struct {
	Accounts                 int
	BalanceLimit             float64
	TransactionHistoryMonths int
	SyncFrequency            SyncFrequency
	Features                 []Feature
	Support                  SupportLevel
}

// Prices 套餐价格（单位：元/美元，按产品定价口径）
type Prices struct {
	Monthly float64
	Yearly  float64
}

var catalog = map[model.Tier]Limits{
	model.TierStarter: {
		Accounts:                 3,
		BalanceLimit:             15000,
		TransactionHistoryMonths: 3,
		SyncFrequency:            SyncDaily,
		Features: []Feature{
			FeatureExpenseTracking,
			FeatureBasicBudgets,
			FeatureBankSync,
		},
		Support: SupportCommunity,
	},
	model.TierGrowth: {
		Accounts:                 10,
		BalanceLimit:             100000,
		TransactionHistoryMonths: 24,
		SyncFrequency:            SyncRealtime,
		Features: []Feature{
			FeatureExpenseTracking,
			FeatureBasicBudgets,
			FeatureBankSync,
			FeatureCSVExport,
			FeatureCustomCategories,
			FeatureGoalTracking,
		},
		Support: SupportEmail,
	},
	model.TierPro: {
		Accounts:                 Unlimited,
		BalanceLimit:             Unlimited,
		TransactionHistoryMonths: Unlimited,
		SyncFrequency:            SyncPriority,
		Features: []Feature{
			FeatureExpenseTracking,
			FeatureBasicBudgets,
			FeatureBankSync,
			FeatureCSVExport,
			FeatureCustomCategories,
			FeatureGoalTracking,
			FeatureAPIAccess,
			FeatureAdvancedReports,
			FeaturePrioritySync,
		},
		Support: SupportPriority,
	},
}

var pricing = map[model.Tier]Prices{
	model.TierStarter: {Monthly: 0, Yearly: 0},
	model.TierGrowth:  {Monthly: 9.99, Yearly: 99},
	model.TierPro:     {Monthly: 19.99, Yearly: 199},
}

func init() {
	// 断言：每级套餐的功能集必须是下一级的超集（单调解锁）
	for i := 1; i < len(model.TierOrder); i++ {
		lower, higher := model.TierOrder[i-1], model.TierOrder[i]
		for _, f := range catalog[lower].Features {
			if !hasFeature(catalog[higher].Features, f) {
				panic(fmt.Sprintf("tier catalog: %s 缺少低级套餐 %s 的功能 %s", higher, lower, f))
			}
		}
	}
	for _, t := range model.TierOrder {
		if _, ok := catalog[t]; !ok {
			panic(fmt.Sprintf("tier catalog: 缺少套餐 %s 的目录项", t))
		}
		if _, ok := pricing[t]; !ok {
			panic(fmt.Sprintf("tier catalog: 缺少套餐 %s 的价格", t))
		}
	}
}

func hasFeature(features []Feature, f Feature) bool {
	for _, feature := range features {
		if feature == f {
			return true
		}
	}
	return false
}

// LimitsFor 返回套餐配额；未知套餐按 STARTER 处理
func LimitsFor(t model.Tier) Limits {
	if limits, ok := catalog[t]; ok {
		return limits
	}
	return catalog[model.TierStarter]
}

// PricingFor 返回套餐在指定计费周期下的价格
func PricingFor(t model.Tier, cycle model.BillingCycle) float64 {
	p, ok := pricing[t]
	if !ok {
		return 0
	}
	if cycle == model.CycleYearly {
		return p.Yearly
	}
	return p.Monthly
}

// IsFeatureAvailable 判断套餐是否包含某功能
func IsFeatureAvailable(t model.Tier, f Feature) bool {
	return hasFeature(LimitsFor(t).Features, f)
}

// NextTier 返回高一级的套餐，已是最高档时 ok 为 false
func NextTier(t model.Tier) (model.Tier, bool) {
	idx := t.Index()
	if idx < 0 || idx+1 >= len(model.TierOrder) {
		return "", false
	}
	return model.TierOrder[idx+1], true
}

// PreviousTier 返回低一级的套餐，已是最低档时 ok 为 false
func PreviousTier(t model.Tier) (model.Tier, bool) {
	idx := t.Index()
	if idx <= 0 {
		return "", false
	}
	return model.TierOrder[idx-1], true
}

// TopTier 返回最高档套餐
func TopTier() model.Tier {
	return model.TierOrder[len(model.TierOrder)-1]
}

// MetricLimitFor 返回套餐下某指标行应写入的 limit_value。
// 映射规则：账户数、余额上限来自目录；导出无 csv_export 功能时为 0，
// 有则无限制；API 调用与同步请求当前策略下一律无限制。
func MetricLimitFor(t model.Tier, metric model.MetricType) float64 {
	limits := LimitsFor(t)
	switch metric {
	case model.MetricConnectedAccounts:
		return float64(limits.Accounts)
	case model.MetricTotalBalance:
		return limits.BalanceLimit
	case model.MetricTransactionExports:
		if hasFeature(limits.Features, FeatureCSVExport) {
			return Unlimited
		}
		return 0
	case model.MetricAPICalls, model.MetricSyncRequests:
		return Unlimited
	}
	return 0
}
