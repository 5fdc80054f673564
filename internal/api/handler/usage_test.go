package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack_server/internal/model"
	"github.com/fintrack/fintrack_server/internal/pkg/response"
	"github.com/fintrack/fintrack_server/internal/testutil"
)

func TestUsageHandler_Status(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	doJSON(t, r, http.MethodPost, "/subscription", map[string]interface{}{
		"tier": "starter", "billing_cycle": "monthly",
	})

	w := doJSON(t, r, http.MethodGet, "/usage/status", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	status := resp.Data.(map[string]interface{})
	require.Len(t, status, len(model.AllMetricTypes))

	accounts := status["connected_accounts"].(map[string]interface{})
	assert.Equal(t, float64(3), accounts["limit"])
	assert.Equal(t, float64(0), accounts["current"])
}

func TestUsageHandler_Status_NoSubscription(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	w := doJSON(t, r, http.MethodGet, "/usage/status", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)
	status := resp.Data.(map[string]interface{})
	assert.Len(t, status, len(model.AllMetricTypes))
}

func TestUsageHandler_List_NoSubscription(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	w := doJSON(t, r, http.MethodGet, "/usage", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestUsageHandler_Summary(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	doJSON(t, r, http.MethodPost, "/subscription", map[string]interface{}{
		"tier": "growth", "billing_cycle": "monthly",
	})

	w := doJSON(t, r, http.MethodGet, "/usage/summary", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)
	summary := resp.Data.(map[string]interface{})
	assert.Equal(t, "growth", summary["tier"])
}

func TestAccountHandler_ConnectUntilDenied(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	doJSON(t, r, http.MethodPost, "/subscription", map[string]interface{}{
		"tier": "starter", "billing_cycle": "monthly",
	})

	body := map[string]interface{}{
		"name":            "Checking",
		"institution":     "Test Bank",
		"account_type":    "checking",
		"current_balance": 100,
	}
	for i := 0; i < 3; i++ {
		resp := parseResponse(t, doJSON(t, r, http.MethodPost, "/accounts", body))
		require.Equal(t, response.CodeSuccess, resp.Code)
	}

	// 第 4 个被配额拒绝，负载里带上升级所需套餐
	resp := parseResponse(t, doJSON(t, r, http.MethodPost, "/accounts", body))
	require.Equal(t, response.CodeQuotaExceeded, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Connected accounts", data["limit_type"])
	assert.Equal(t, float64(3), data["current_value"])
	assert.Equal(t, float64(3), data["limit_value"])
	assert.Equal(t, "growth", data["required_tier"])
}

func TestExportHandler_FeatureGate(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	doJSON(t, r, http.MethodPost, "/subscription", map[string]interface{}{
		"tier": "starter", "billing_cycle": "monthly",
	})

	// STARTER 无 csv_export 功能
	resp := parseResponse(t, doJSON(t, r, http.MethodPost, "/exports", map[string]interface{}{"format": "csv"}))
	require.Equal(t, response.CodeQuotaExceeded, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "csv_export", data["feature"])
	assert.Equal(t, "growth", data["required_tier"])
}

func TestExportHandler_Create(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	doJSON(t, r, http.MethodPost, "/subscription", map[string]interface{}{
		"tier": "growth", "billing_cycle": "monthly",
	})

	resp := parseResponse(t, doJSON(t, r, http.MethodPost, "/exports", map[string]interface{}{"format": "csv"}))
	require.Equal(t, response.CodeSuccess, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "queued", data["status"])
	assert.NotEmpty(t, data["export_id"])

	// 受理成功后记了一笔导出量
	sub, err := env.subService.GetUserSubscription(user.ID)
	require.NoError(t, err)
	row, err := env.usageRepo.GetOpenRow(user.ID, model.MetricTransactionExports, sub.CurrentPeriodStart)
	require.NoError(t, err)
	assert.Equal(t, float64(1), row.CurrentValue)
}

func TestAccountHandler_Sync_NotFound(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	resp := parseResponse(t, doJSON(t, r, http.MethodPost, "/accounts/missing/sync", nil))
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}
