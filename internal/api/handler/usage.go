package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack_server/internal/api/middleware"
	"github.com/fintrack/fintrack_server/internal/pkg/response"
	"github.com/fintrack/fintrack_server/internal/service"
)

type UsageHandler struct {
	usageService       *service.UsageService
	enforcementService *service.EnforcementService
}

func NewUsageHandler(usageService *service.UsageService, enforcementService *service.EnforcementService) *UsageHandler {
	return &UsageHandler{
		usageService:       usageService,
		enforcementService: enforcementService,
	}
}

// List 当前账期已存在的用量行
// GET /api/v1/usage
func (h *UsageHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	rows, err := h.usageService.GetCurrentUsage(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, rows)
}

// Status 全部指标的用量状态（对任何用户都是完整五项）
// GET /api/v1/usage/status
func (h *UsageHandler) Status(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	status, err := h.usageService.GetUsageLimitStatus(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, status)
}

// Summary 用量总览
// GET /api/v1/usage/summary
func (h *UsageHandler) Summary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	summary, err := h.enforcementService.GetUsageSummary(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, summary)
}

// Suggestions 升级建议
// GET /api/v1/usage/suggestions
func (h *UsageHandler) Suggestions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	suggestion, err := h.enforcementService.GetUpgradeSuggestions(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, suggestion)
}
