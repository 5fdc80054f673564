package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/fintrack/fintrack_server/internal/model"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(account *model.Account) error {
	return r.db.Create(account).Error
}

func (r *AccountRepository) GetByID(id string) (*model.Account, error) {
	var account model.Account
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) ListByUser(userID string) ([]*model.Account, error) {
	var accounts []*model.Account
	err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Account{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ListBalances 返回用户全部账户的当前余额
func (r *AccountRepository) ListBalances(userID string) ([]float64, error) {
	var balances []float64
	err := r.db.Model(&model.Account{}).Where("user_id = ?", userID).
		Pluck("current_balance", &balances).Error
	return balances, err
}

func (r *AccountRepository) CreateSyncLog(log *model.SyncLog) error {
	return r.db.Create(log).Error
}

// CountSyncsSince 统计某时点之后的同步次数
func (r *AccountRepository) CountSyncsSince(userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.SyncLog{}).
		Where("user_id = ? AND created_at >= ?", userID, since).Count(&count).Error
	return count, err
}

func (r *AccountRepository) UpdateLastSynced(accountID string, at time.Time) error {
	return r.db.Model(&model.Account{}).Where("id = ?", accountID).
		Update("last_synced_at", at).Error
}
