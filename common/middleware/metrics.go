package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KeshRD/BrightBuy-G16/pkg/aws"
)

// Metrics returns a Gin middleware that records request count, latency and
// error-class counts to CloudWatch. Metrics are published asynchronously so
// the request path never blocks on the CloudWatch API.
func Metrics(metrics *aws.MetricsClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil || !metrics.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		dims := map[string]string{
			"Method": c.Request.Method,
			"Route":  c.FullPath(),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			metrics.RecordCount(ctx, aws.MetricHTTPRequests, dims)
			metrics.RecordLatency(ctx, aws.MetricHTTPLatency, latency, dims)
			if status >= 500 {
				metrics.RecordCount(ctx, aws.MetricHTTP5xx, dims)
				metrics.RecordCount(ctx, aws.MetricHTTPErrors, dims)
			} else if status >= 400 {
				metrics.RecordCount(ctx, aws.MetricHTTP4xx, dims)
				metrics.RecordCount(ctx, aws.MetricHTTPErrors, dims)
			}
		}()
	}
}
