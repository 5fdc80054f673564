package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack_server/internal/model"
	"github.com/fintrack/fintrack_server/internal/model/dto"
	"github.com/fintrack/fintrack_server/internal/pkg/response"
	"github.com/fintrack/fintrack_server/internal/tier"
)

type PlansHandler struct{}

func NewPlansHandler() *PlansHandler {
	return &PlansHandler{}
}

// List 套餐目录（公开接口）
// GET /api/v1/plans
func (h *PlansHandler) List(c *gin.Context) {
	plans := make([]*dto.PlanInfo, 0, len(model.TierOrder))
	for _, t := range model.TierOrder {
		limits := tier.LimitsFor(t)

		features := make([]string, 0, len(limits.Features))
		for _, f := range limits.Features {
			features = append(features, string(f))
		}

		plans = append(plans, &dto.PlanInfo{
			Tier:          t,
			Accounts:      limits.Accounts,
			BalanceLimit:  limits.BalanceLimit,
			HistoryMonths: limits.TransactionHistoryMonths,
			SyncFrequency: string(limits.SyncFrequency),
			Features:      features,
			Support:       string(limits.Support),
			PriceMonthly:  tier.PricingFor(t, model.CycleMonthly),
			PriceYearly:   tier.PricingFor(t, model.CycleYearly),
		})
	}

	response.Success(c, plans)
}
