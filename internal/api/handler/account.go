package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack_server/internal/api/middleware"
	"github.com/fintrack/fintrack_server/internal/model/dto"
	"github.com/fintrack/fintrack_server/internal/pkg/response"
	"github.com/fintrack/fintrack_server/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// Connect 连接账户
// POST /api/v1/accounts
func (h *AccountHandler) Connect(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ConnectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	account, err := h.accountService.ConnectAccount(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, "账户已连接", account)
}

// List 账户列表
// GET /api/v1/accounts
func (h *AccountHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	accounts, err := h.accountService.ListAccounts(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, accounts)
}

// Sync 触发账户同步
// POST /api/v1/accounts/:id/sync
func (h *AccountHandler) Sync(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	accountID := c.Param("id")
	if err := h.accountService.SyncAccount(userID, accountID); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		handleServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, "同步已触发", nil)
}
