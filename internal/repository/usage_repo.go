package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fintrack/fintrack_server/internal/model"
)

type UsageMetricRepository struct {
	db *gorm.DB
}

func NewUsageMetricRepository(db *gorm.DB) *UsageMetricRepository {
	return &UsageMetricRepository{db: db}
}

func (r *UsageMetricRepository) Create(metric *model.UsageMetric) error {
	return r.db.Create(metric).Error
}

// CreateIfAbsent 按唯一索引写入，行已存在时静默跳过。
// 同一 (user, metric, period) 的并发首写走这里不会互相报错。
func (r *UsageMetricRepository) CreateIfAbsent(metric *model.UsageMetric) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(metric).Error
}

func (r *UsageMetricRepository) CreateBatch(metrics []*model.UsageMetric) error {
	if len(metrics) == 0 {
		return nil
	}
	return r.db.Create(metrics).Error
}

// GetOpenRow 返回指定账期起点的用量行，不存在时返回 gorm.ErrRecordNotFound
func (r *UsageMetricRepository) GetOpenRow(userID string, metric model.MetricType, periodStart time.Time) (*model.UsageMetric, error) {
	var row model.UsageMetric
	err := r.db.Where("user_id = ? AND metric_type = ? AND period_start = ?",
		userID, metric, periodStart).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListOpenRows 返回用户当前账期的全部用量行
func (r *UsageMetricRepository) ListOpenRows(userID string, periodStart time.Time) ([]*model.UsageMetric, error) {
	var rows []*model.UsageMetric
	err := r.db.Where("user_id = ? AND period_start = ?", userID, periodStart).
		Order("metric_type").Find(&rows).Error
	return rows, err
}

// Increment 把增量累加到 current_value。单条 UPDATE 表达式在数据库侧完成
// 读改写，并发调用不会丢失增量。
func (r *UsageMetricRepository) Increment(id string, delta float64) error {
	return r.db.Model(&model.UsageMetric{}).Where("id = ?", id).
		Update("current_value", gorm.Expr("current_value + ?", delta)).Error
}

// RebaseLimit 重写某指标行的 limit_value，不触碰 current_value
func (r *UsageMetricRepository) RebaseLimit(userID string, metric model.MetricType, periodStart time.Time, limit float64) error {
	return r.db.Model(&model.UsageMetric{}).
		Where("user_id = ? AND metric_type = ? AND period_start = ?", userID, metric, periodStart).
		Update("limit_value", limit).Error
}

// WithTx 返回绑定到事务的仓库实例
func (r *UsageMetricRepository) WithTx(tx *gorm.DB) *UsageMetricRepository {
	return &UsageMetricRepository{db: tx}
}
