package observability

import (
	"resumescreen/internal/config"
)

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    "resumescreen",
			ServiceVersion: version,
			Enabled:        true,
			ConsoleOutput:  true,
			PrettyPrint:    true,
			SampleRate:     1.0,
			Prometheus: PrometheusConfig{
				Enabled:  true,
				Endpoint: "/metrics",
				Port:     "9090",
			},
		}
	}

	obsConfig := cfg.Observability

	serviceVersion := obsConfig.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	sampleRate := obsConfig.SampleRate
	if obsConfig.Tracing.Enabled && obsConfig.Tracing.SampleRate > 0 {
		sampleRate = obsConfig.Tracing.SampleRate
	}

	return ObservabilityConfig{
		ServiceName:    obsConfig.ServiceName,
		ServiceVersion: serviceVersion,
		Enabled:        obsConfig.Enabled,
		ConsoleOutput:  obsConfig.ConsoleOutput,
		PrettyPrint:    obsConfig.ConsoleOutput,
		SampleRate:     sampleRate,
		Prometheus: PrometheusConfig{
			Enabled:  obsConfig.Prometheus.Enabled,
			Endpoint: obsConfig.Prometheus.Endpoint,
			Port:     obsConfig.Prometheus.Port,
		},
	}
}
