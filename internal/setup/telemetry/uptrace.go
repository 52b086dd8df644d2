package telemetry

import (
	"context"

	"github.com/robalyx/modreport/internal/setup/config"
	"github.com/uptrace/uptrace-go/uptrace"
)

// ServiceName identifies this program in exported traces.
const ServiceName = "modreport"

// ServiceVersion is reported alongside every span.
const ServiceVersion = config.RepositoryVersion

// StartTracing configures the global OpenTelemetry providers to export to Uptrace.
// It returns a shutdown function that flushes pending spans, which is a no-op
// when tracing is disabled.
func StartTracing(cfg *config.Telemetry, componentName string) func(context.Context) error {
	if !cfg.Enabled || cfg.DSN == "" {
		return func(context.Context) error { return nil }
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.DSN),
		uptrace.WithServiceName(ServiceName+"-"+componentName),
		uptrace.WithServiceVersion(ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.Environment),
	)

	return uptrace.Shutdown
}
