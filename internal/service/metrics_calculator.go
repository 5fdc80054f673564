package service

import (
	"math"
	"time"

	"github.com/fintrack/fintrack_server/internal/repository"
)

// MetricsCalculator 对资源表的只读实时聚合。账户数和总余额随时可以
// 从源头表重算，所以不走存量计数；算出的值也不回写。
type MetricsCalculator struct {
	accountRepo *repository.AccountRepository
}

func NewMetricsCalculator(accountRepo *repository.AccountRepository) *MetricsCalculator {
	return &MetricsCalculator{accountRepo: accountRepo}
}

// CountConnectedAccounts 用户已连接账户数
func (c *MetricsCalculator) CountConnectedAccounts(userID string) (int64, error) {
	return c.accountRepo.CountByUser(userID)
}

// TotalBalance 全部账户余额绝对值之和，四舍五入到整数货币单位。
// 负债账户（信用卡）按绝对值计入被追踪的资产规模。
func (c *MetricsCalculator) TotalBalance(userID string) (float64, error) {
	balances, err := c.accountRepo.ListBalances(userID)
	if err != nil {
		return 0, err
	}

	total := float64(0)
	for _, b := range balances {
		total += math.Abs(b)
	}
	return math.Round(total), nil
}

// CountSyncsSince 某时点之后的同步次数
func (c *MetricsCalculator) CountSyncsSince(userID string, since time.Time) (int64, error) {
	return c.accountRepo.CountSyncsSince(userID, since)
}
