package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelUsageAlerts = "usage_alerts"
)

// AlertMessage 用量告警消息。某个受限指标越过告警阈值时发布，
// 服务进程订阅后经 WebSocket 推给在线用户。
type AlertMessage struct {
	Type          string  `json:"type"`
	UserID        string  `json:"user_id"`
	MetricType    string  `json:"metric_type"`
	MetricLabel   string  `json:"metric_label"`
	CurrentValue  float64 `json:"current_value"`
	LimitValue    float64 `json:"limit_value"`
	Percentage    float64 `json:"percentage"`
	SuggestedTier string  `json:"suggested_tier,omitempty"`
	Message       string  `json:"message,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishAlert 发布用量告警
func (p *Publisher) PublishAlert(ctx context.Context, msg *AlertMessage) error {
	msg.Type = "usage_alert"

	if msg.Message == "" {
		msg.Message = fmt.Sprintf("%s 已使用 %.0f%%（%.0f/%.0f）",
			msg.MetricLabel, msg.Percentage, msg.CurrentValue, msg.LimitValue)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal alert message: %w", err)
	}

	return p.client.Publish(ctx, ChannelUsageAlerts, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅用量告警
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*AlertMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelUsageAlerts)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var alert AlertMessage
			if err := json.Unmarshal([]byte(msg.Payload), &alert); err != nil {
				continue // 忽略解析错误
			}

			handler(&alert)
		}
	}
}
