package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack_server/internal/pkg/response"
	"github.com/fintrack/fintrack_server/internal/service"
)

// handleServiceError 把服务层的类型化错误映射到统一响应码。
// 配额/功能类拒绝带上结构化负载，前端直接渲染升级提示。
func handleServiceError(c *gin.Context, err error) {
	var limitErr *service.TierLimitExceededError
	var featureErr *service.FeatureNotAvailableError
	var notFoundErr *service.SubscriptionNotFoundError
	var updateErr *service.SubscriptionUpdateError

	switch {
	case errors.As(err, &limitErr):
		response.ErrorWithData(c, response.CodeQuotaExceeded, limitErr.Error(), limitErr)
	case errors.As(err, &featureErr):
		response.ErrorWithData(c, response.CodeQuotaExceeded, featureErr.Error(), featureErr)
	case errors.As(err, &notFoundErr):
		response.NotFoundError(c, notFoundErr.Error())
	case errors.As(err, &updateErr):
		response.NotFoundError(c, updateErr.Error())
	case errors.Is(err, service.ErrDuplicateSubscription):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrSyncTooFrequent):
		response.QuotaError(c, err.Error())
	case errors.Is(err, service.ErrInvalidTier),
		errors.Is(err, service.ErrInvalidBillingCycle),
		errors.Is(err, service.ErrInvalidIncrement):
		response.ParamError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
