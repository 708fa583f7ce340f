package handler

import (
	"context"
	"net/http"
	"time"

	"crmseguros/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BreakerReporter is implemented by the S3 file store.
type BreakerReporter interface {
	BreakerState() infra.CBState
}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// An open storage breaker is reported but does not fail the check, since only
// document endpoints depend on it.
func Health(db *gorm.DB, rdb *redis.Client, storage BreakerReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if storage != nil {
			body["storage"] = storage.BreakerState().String()
		}
		c.JSON(status, body)
	}
}
