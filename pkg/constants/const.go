package constants

import "time"

const (
	APIPrefix      = "/v1"
	AdminAPIPrefix = APIPrefix + "/admin"

	// MetricsPath is scraped unauthenticated.
	MetricsPath = "/metrics"

	// GracefulShutdownTimeout bounds in-flight request draining on SIGTERM.
	GracefulShutdownTimeout = 10 * time.Second
)
