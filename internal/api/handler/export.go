package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fintrack/fintrack_server/internal/api/middleware"
	"github.com/fintrack/fintrack_server/internal/model"
	"github.com/fintrack/fintrack_server/internal/model/dto"
	"github.com/fintrack/fintrack_server/internal/pkg/response"
	"github.com/fintrack/fintrack_server/internal/service"
	"github.com/fintrack/fintrack_server/internal/tier"
)

type ExportHandler struct {
	enforcementService *service.EnforcementService
	usageService       *service.UsageService
}

func NewExportHandler(enforcementService *service.EnforcementService, usageService *service.UsageService) *ExportHandler {
	return &ExportHandler{
		enforcementService: enforcementService,
		usageService:       usageService,
	}
}

// Create 受理一次交易导出。功能门禁 + 导出配额都过了才受理，
// 受理成功后记 TRANSACTION_EXPORTS。导出文件的生成在计量核心之外。
// POST /api/v1/exports
func (h *ExportHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.enforcementService.CheckFeatureAccess(userID, tier.FeatureCSVExport); err != nil {
		handleServiceError(c, err)
		return
	}
	if err := h.usageService.EnforceUsageLimit(userID, model.MetricTransactionExports, 1); err != nil {
		handleServiceError(c, err)
		return
	}

	exportID := uuid.NewString()

	if _, err := h.usageService.TrackUsage(userID, model.MetricTransactionExports, 1); err != nil {
		var notFound *service.SubscriptionNotFoundError
		if !errors.As(err, &notFound) {
			response.ServerError(c, "")
			return
		}
	}

	response.SuccessWithMessage(c, "导出任务已受理", &dto.ExportResponse{
		ExportID: exportID,
		Status:   "queued",
	})
}
