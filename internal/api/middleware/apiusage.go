package middleware

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack_server/internal/model"
	"github.com/fintrack/fintrack_server/internal/service"
)

// APIUsage 按请求累计 API_CALLS 指标。当前策略下该指标不设上限，
// 所以只计量不拦截；记账失败（如用户无订阅）不影响请求本身。
func APIUsage(usageService *service.UsageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		userID, ok := GetUserID(c)
		if !ok {
			return
		}

		if _, err := usageService.TrackUsage(userID, model.MetricAPICalls, 1); err != nil {
			var notFound *service.SubscriptionNotFoundError
			if !errors.As(err, &notFound) {
				log.Printf("API usage tracking failed for user %s: %v", userID, err)
			}
		}
	}
}
