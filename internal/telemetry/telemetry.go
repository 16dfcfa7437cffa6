package telemetry

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// Payment flow counters. Signature rejections get their own counter because a
// spike there means someone is probing the verify endpoint.
var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_orders_created_total",
		Help: "Gateway orders opened for course purchases",
	})
	SettlementsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_settlements_recorded_total",
		Help: "Completed transactions recorded after gateway corroboration",
	})
	SettlementReplays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_settlement_replays_total",
		Help: "Callback replays rejected by idempotency checks",
	})
	SignatureRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_signature_rejections_total",
		Help: "Callbacks rejected for a bad HMAC signature",
	})
	RefundsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_refunds_issued_total",
		Help: "Refunds issued through the gateway",
	})
	ReconciliationsRequired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_reconciliations_required_total",
		Help: "Refunds that succeeded at the gateway but failed to record locally",
	})
)

// Init builds the structured logger. Call once at process start.
func Init(serviceName string) error {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	Logger, err = config.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// Shutdown flushes buffered log entries.
func Shutdown() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// RequestLogger logs every request with method, path, status and duration.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		Logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
