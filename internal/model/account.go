package model

import (
	"time"
)

// Account 用户关联的银行账户。本核心只在「连接账户」流程写入，
// 其余场景均为只读聚合（计数、余额求和）。
type Account struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	UserID         string     `gorm:"size:36;not null;index" json:"user_id"`
	Name           string     `gorm:"size:100;not null" json:"name"`
	Institution    string     `gorm:"size:100" json:"institution"`
	AccountType    string     `gorm:"size:20" json:"account_type"` // checking, savings, credit, investment
	CurrentBalance float64    `gorm:"type:decimal(14,2);default:0" json:"current_balance"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// SyncLog 账户同步记录，同步频率限制按它统计
type SyncLog struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	AccountID string    `gorm:"size:36;not null;index" json:"account_id"`
	Status    string    `gorm:"size:20;default:completed" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}
