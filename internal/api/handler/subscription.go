package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack_server/internal/api/middleware"
	"github.com/fintrack/fintrack_server/internal/model"
	"github.com/fintrack/fintrack_server/internal/model/dto"
	"github.com/fintrack/fintrack_server/internal/pkg/response"
	"github.com/fintrack/fintrack_server/internal/service"
	"github.com/fintrack/fintrack_server/internal/tier"
)

type SubscriptionHandler struct {
	subService *service.SubscriptionService
}

func NewSubscriptionHandler(subService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subService: subService,
	}
}

// Get 当前用户的订阅视图
// GET /api/v1/subscription
func (h *SubscriptionHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	sub, err := h.subService.GetUserSubscription(userID)
	if err != nil {
		var notFound *service.SubscriptionNotFoundError
		if errors.As(err, &notFound) {
			// 无订阅记录按隐含的 STARTER 展示
			response.Success(c, &dto.SubscriptionInfo{
				Tier:   model.TierStarter,
				Status: string(model.StatusActive),
				Price:  0,
			})
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, subscriptionInfo(sub))
}

// Create 创建订阅（计费侧确认购买后调用）
// POST /api/v1/subscription
func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.subService.CreateSubscription(userID, req.Tier, req.BillingCycle, req.TrialEnd)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, "订阅已开通", subscriptionInfo(sub))
}

// Update 部分更新（升降级、改周期）
// PUT /api/v1/subscription
func (h *SubscriptionHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.subService.GetUserSubscription(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	updated, err := h.subService.UpdateSubscription(sub.ID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, subscriptionInfo(updated))
}

// Cancel 取消订阅
// POST /api/v1/subscription/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.subService.GetUserSubscription(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	updated, err := h.subService.CancelSubscription(sub.ID, req.AtPeriodEnd)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	msg := "已取消订阅"
	if req.AtPeriodEnd {
		msg = "将于本账期结束后取消"
	}
	response.SuccessWithMessage(c, msg, subscriptionInfo(updated))
}

func subscriptionInfo(sub *model.Subscription) *dto.SubscriptionInfo {
	start := sub.CurrentPeriodStart
	end := sub.CurrentPeriodEnd
	return &dto.SubscriptionInfo{
		ID:                 sub.ID,
		Tier:               sub.Tier,
		Status:             string(sub.Status),
		BillingCycle:       string(sub.BillingCycle),
		CurrentPeriodStart: &start,
		CurrentPeriodEnd:   &end,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		TrialEnd:           sub.TrialEnd,
		Price:              tier.PricingFor(sub.Tier, sub.BillingCycle),
	}
}
