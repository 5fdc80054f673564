// Package cron 服务进程内的定时任务：周期性扫描到期订阅并滚动账期。
// 降级到 STARTER 的「到期取消」也在这里落地。
package cron

import (
	"log"
	"time"

	"github.com/fintrack/fintrack_server/internal/service"
)

type Service struct {
	subService *service.SubscriptionService
	interval   time.Duration
	stopChan   chan struct{}
}

func NewService(subService *service.SubscriptionService, intervalHours int) *Service {
	if intervalHours <= 0 {
		intervalHours = 24
	}
	return &Service{
		subService: subService,
		interval:   time.Duration(intervalHours) * time.Hour,
		stopChan:   make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runRollover()
	log.Println("Cron service started (period rollover)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

func (s *Service) runRollover() {
	// 启动时先跑一轮，补上停机期间积压的到期订阅
	s.rolloverOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.rolloverOnce()
		}
	}
}

func (s *Service) rolloverOnce() {
	n, err := s.subService.RolloverDueSubscriptions(time.Now().UTC())
	if err != nil {
		log.Printf("Rollover failed after %d subscriptions: %v", n, err)
		return
	}
	if n > 0 {
		log.Printf("Rollover processed %d subscriptions", n)
	}
}
