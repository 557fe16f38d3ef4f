package ratelimit

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/incdrops/server/internal/errors"
	"codeberg.org/incdrops/server/internal/logger"
)

const keyPrefix = "incdrops:ratelimit"

// resolves the caller key for a request, "" falls back to the client IP
type KeyFunc func(c *gin.Context) string

// per-caller request rate limiter, independent of the monthly generation quota
type Limiter struct {
	instance *limiter.Limiter
	key      KeyFunc
}

// creates a limiter for a ulule formatted rate ("10-M"). with a redis client the
// counters are shared between server instances, otherwise they are in memory
func New(rate string, client *redis.Client, key KeyFunc) (*Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}

	var store limiter.Store

	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   keyPrefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          keyPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
	}

	return &Limiter{
		instance: limiter.New(store, parsed),
		key:      key,
	}, nil
}

// gin middleware that answers 429 once the caller exceeded the rate. store
// errors let the request through
func (l *Limiter) Middleware() gin.HandlerFunc {
	return mgin.NewMiddleware(l.instance,
		mgin.WithKeyGetter(l.keyFor),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "too many generation requests, slow down")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.WarnErr(err, "rate limiter store failed, allowing request",
				"path", c.FullPath(),
			)
			c.Next()
		}),
	)
}

func (l *Limiter) keyFor(c *gin.Context) string {
	if l.key != nil {
		if k := l.key(c); k != "" {
			return "account:" + k
		}
	}

	return "ip:" + c.ClientIP()
}
