package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by operation name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inkwell_redis_errors_total",
	Help: "Total number of Redis errors by operation type",
}, []string{"operation"})

// EmailsSent counts outbound emails by kind and outcome.
var EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inkwell_emails_sent_total",
	Help: "Total number of outbound emails by kind and outcome",
}, []string{"kind", "outcome"})

// BlobOperations counts blob-storage calls by operation and outcome.
var BlobOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inkwell_blob_operations_total",
	Help: "Total number of blob storage operations by type and outcome",
}, []string{"operation", "outcome"})

var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The underlying collectors register in the default registry, so the
// instance is created once per process and shared thereafter.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New(serviceName)
	})
	return promInst
}

// MetricsMiddleware returns the request-instrumentation handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
