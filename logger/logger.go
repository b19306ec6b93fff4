package logger

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	RequestIDKey = "X-Request-ID"
	contextKey   = "logger"
)

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// Init builds the global logger. Production emits JSON, anything else a console encoder.
func Init(level, env string) (*zap.Logger, error) {
	var logConfig zap.Config
	if env == "production" {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(lvl)

	built, err := logConfig.Build()
	if err != nil {
		return nil, err
	}
	Set(built)
	return built, nil
}

// Set replaces the global logger and zap's globals.
func Set(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
}

// Get returns the global logger, falling back to a no-op logger before Init.
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// FromGin returns the request-scoped logger, or the global one tagged with whatever
// request id is known.
func FromGin(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(contextKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	requestID := c.GetString(RequestIDKey)
	if requestID == "" {
		requestID = "unknown"
	}
	return Get().With(zap.String("request_id", requestID))
}

// Middleware stores a request-scoped logger in the context and logs every request once it completes.
func Middleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetString(RequestIDKey)
		if requestID == "" {
			requestID = c.GetHeader(RequestIDKey)
		}
		ctxLogger := base.With(zap.String("request_id", requestID))
		c.Set(contextKey, ctxLogger)

		c.Next()

		fields := []zapcore.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if userID, ok := c.Get("userID"); ok {
			fields = append(fields, zap.Any("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			ctxLogger.Error("HTTP request failed", fields...)
		case status >= 400:
			ctxLogger.Warn("HTTP request rejected", fields...)
		default:
			ctxLogger.Info("HTTP request completed", fields...)
		}
	}
}
