// app/seenmw.go
package app

import (
	"time"

	"Gin_postgres_redis_qr_tracker/tracker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TouchLastSeen records activity at most once per throttle window per worker.
func TouchLastSeen(engine *tracker.Engine, rdb *redis.Client, throttle time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxWorkerID)
		if uid == "" {
			c.Next()
			return
		}

		key := "worker:lastseen:" + uid
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			// 忽略错误，不阻塞请求
			if err := engine.TouchWorkerSeen(c, uid); err != nil {
				log.Warn("touch last seen failed", zap.String("worker_id", uid), zap.Error(err))
			}
		}
		c.Next()
	}
}
