package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack_server/internal/testutil"
)

func TestMetricsCalculator_TotalBalance(t *testing.T) {
	s := newTestServices(t)
	user := testutil.TestUser(t, s.db)

	total, err := s.calculator.TotalBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), total)

	testutil.TestAccount(t, s.db, user.ID, testutil.WithBalance(1200.30))
	testutil.TestAccount(t, s.db, user.ID, testutil.WithBalance(-850.25))

	total, err = s.calculator.TotalBalance(user.ID)
	require.NoError(t, err)
	// 信用卡负债按绝对值计入：1200.30 + 850.25 = 2050.55，取整 2051
	assert.Equal(t, float64(2051), total)
}

func TestMetricsCalculator_CountConnectedAccounts(t *testing.T) {
	s := newTestServices(t)
	user := testutil.TestUser(t, s.db)
	other := testutil.TestUser(t, s.db)

	testutil.TestAccount(t, s.db, user.ID)
	testutil.TestAccount(t, s.db, user.ID)
	testutil.TestAccount(t, s.db, other.ID)

	count, err := s.calculator.CountConnectedAccounts(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
