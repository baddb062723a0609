package logger

import (
	log "log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupGin 访问日志走 slog，带上 trace_id
func SetupGin(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := log.LevelInfo
		if c.Writer.Status() >= 500 {
			level = log.LevelError
		}
		log.Log(c.Request.Context(), level, "GIN_ACCESS",
			log.String("method", c.Request.Method),
			log.String("path", c.FullPath()),
			log.Int("status", c.Writer.Status()),
			log.Duration("latency", time.Since(start)),
			log.String("client_ip", c.ClientIP()),
		)
	})

	// panic 堆栈同样写入 Logstash
	r.Use(gin.RecoveryWithWriter(LogWriter))
}
