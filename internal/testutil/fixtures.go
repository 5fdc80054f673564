package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	nano := time.Now().UnixNano()
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     fmt.Sprintf("testuser_%d", nano%1000000),
		Email:        fmt.Sprintf("test_%d@example.com", nano),
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// TestSubscription 创建测试订阅，默认 STARTER 月付、账期从当前时刻起一个月
func TestSubscription(t *testing.T, db *gorm.DB, userID string, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	sub := &model.Subscription{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Tier:               model.TierStarter,
		Status:             model.StatusActive,
		BillingCycle:       model.CycleMonthly,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithTier 设置套餐
func WithTier(tier model.Tier) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Tier = tier
	}
}

// WithStatus 设置订阅状态
func WithStatus(status model.SubscriptionStatus) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = status
	}
}

// WithPeriod 设置账期窗口
func WithPeriod(start, end time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.CurrentPeriodStart = start
		s.CurrentPeriodEnd = end
	}
}

// TestAccount 创建测试账户
func TestAccount(t *testing.T, db *gorm.DB, userID string, opts ...func(*model.Account)) *model.Account {
	t.Helper()

	account := &model.Account{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        fmt.Sprintf("Checking %d", time.Now().UnixNano()%10000),
		Institution: "Test Bank",
		AccountType: "checking",
	}

	for _, opt := range opts {
		opt(account)
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return account
}

// WithBalance 设置账户余额
func WithBalance(balance float64) func(*model.Account) {
	return func(a *model.Account) {
		a.CurrentBalance = balance
	}
}
