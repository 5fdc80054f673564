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

func TestSubscriptionHandler_Get_ImplicitStarter(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	w := doJSON(t, r, http.MethodGet, "/subscription", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "starter", data["tier"])
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, float64(0), data["price"])
}

func TestSubscriptionHandler_CreateAndGet(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	w := doJSON(t, r, http.MethodPost, "/subscription", map[string]interface{}{
		"tier":          "growth",
		"billing_cycle": "monthly",
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	w = doJSON(t, r, http.MethodGet, "/subscription", nil)
	resp = parseResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "growth", data["tier"])
	assert.Equal(t, 9.99, data["price"])
}

func TestSubscriptionHandler_Create_Duplicate(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	body := map[string]interface{}{"tier": "starter", "billing_cycle": "monthly"}
	doJSON(t, r, http.MethodPost, "/subscription", body)

	w := doJSON(t, r, http.MethodPost, "/subscription", body)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeDuplicateAction, resp.Code)
}

func TestSubscriptionHandler_Create_InvalidTier(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	w := doJSON(t, r, http.MethodPost, "/subscription", map[string]interface{}{
		"tier":          "platinum",
		"billing_cycle": "monthly",
	})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestSubscriptionHandler_Update(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	doJSON(t, r, http.MethodPost, "/subscription", map[string]interface{}{
		"tier": "starter", "billing_cycle": "monthly",
	})

	w := doJSON(t, r, http.MethodPut, "/subscription", map[string]interface{}{"tier": "pro"})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pro", data["tier"])
}

func TestSubscriptionHandler_Update_NoSubscription(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	w := doJSON(t, r, http.MethodPut, "/subscription", map[string]interface{}{"tier": "pro"})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestSubscriptionHandler_Cancel(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	doJSON(t, r, http.MethodPost, "/subscription", map[string]interface{}{
		"tier": "pro", "billing_cycle": "monthly",
	})

	w := doJSON(t, r, http.MethodPost, "/subscription/cancel", map[string]interface{}{
		"at_period_end": false,
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "starter", data["tier"])
	assert.Equal(t, string(model.StatusCanceled), data["status"])
}

func TestPlansHandler_List(t *testing.T) {
	env := newHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	r := env.router(user.ID)

	w := doJSON(t, r, http.MethodGet, "/plans", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	plans := resp.Data.([]interface{})
	require.Len(t, plans, 3)
	first := plans[0].(map[string]interface{})
	assert.Equal(t, "starter", first["tier"])
	assert.Equal(t, float64(3), first["accounts"])
}
