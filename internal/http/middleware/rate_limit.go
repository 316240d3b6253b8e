package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/ignatzorin/appeals-backend/internal/interface/http/response"
	"github.com/ignatzorin/appeals-backend/internal/logger"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
)

const rateLimitPrefix = "appeals:ratelimit"

// NewRateLimitStore возвращает общий для всех инстансов redis store,
// а без redis store в памяти процесса.
func NewRateLimitStore(client *goredis.Client) limiter.Store {
	if client != nil {
		store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
		if err == nil {
			return store
		}
		logger.Get().WithField("error", err.Error()).Warn("rate limit: redis store недоступен, используем память")
	}
	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix, CleanUpInterval: time.Minute})
}

// RateLimitMiddleware ограничивает количество запросов с одного IP.
// По умолчанию: 10 запросов в минуту.
func RateLimitMiddleware(store limiter.Store, name string, limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = 1 * time.Minute
	}

	instance := limiter.New(store, limiter.Rate{Period: period, Limit: limit})

	return func(c *gin.Context) {
		key := name + ":" + c.ClientIP()
		state, err := instance.Get(c, key)
		if err != nil {
			// Лимитер не должен ронять приём апелляций.
			logger.Get().WithFields(logrus.Fields{"error": err.Error(), "key": key}).Warn("rate limit: store недоступен")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", state.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", state.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", state.Reset))

		if state.Reached {
			response.Abort(c, apperror.ErrRateLimited)
			return
		}

		c.Next()
	}
}
