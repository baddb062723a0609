package logger

import (
	"LikeRelay/internal/api/config"
	"io"
	log "log/slog"
	"net"
	"os"
	"strings"
	"time"
)

var LogWriter io.Writer = os.Stdout

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

// InitLogger 设置默认 slog，配置了 Logstash 时同时上报带 trace_id 的日志
func InitLogger(cfg config.LogConfig) {
	opts := &log.HandlerOptions{Level: parseLevel(cfg.Level)}
	hStdout := log.NewJSONHandler(os.Stdout, opts)

	var finalHandler log.Handler = hStdout

	if cfg.LogstashAddr != "" {
		conn, err := net.DialTimeout("tcp", cfg.LogstashAddr, 3*time.Second)
		if err == nil {
			hRemote := log.NewJSONHandler(conn, opts).
				WithAttrs([]log.Attr{log.String("target_index", cfg.LogstashIndex)})

			finalHandler = &TeeHandler{
				handlers: []log.Handler{hStdout, &RemoteFilterHandler{next: hRemote}},
			}
			LogWriter = io.MultiWriter(os.Stdout, conn)
		} else {
			log.Warn("Failed to connect to Logstash, logging to stdout only", "err", err)
		}
	}

	log.SetDefault(log.New(&ContextHandler{finalHandler}))
}
