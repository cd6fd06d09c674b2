package telemetry

import (
	"fmt"
	"os"

	"github.com/grafana/pyroscope-go"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Profiler pushes continuous profiles to a Pyroscope server
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
}

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// StartProfiler starts profiling when cfg.ProfilingEnabled is set. Profiling
// does not depend on the OTLP collector being enabled.
func StartProfiler(cfg config.TelemetryConfig, version string, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger}
	if !cfg.ProfilingEnabled {
		return p, nil
	}
	if cfg.ProfilingServer == "" {
		return nil, fmt.Errorf("telemetry.profiling_server is required when profiling is enabled")
	}

	tags := map[string]string{"version": version}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}

	prof, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.ProfilingServer,
		Logger:          pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:            tags,
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}
	p.profiler = prof
	logger.Info("Profiling enabled", zap.String("server", cfg.ProfilingServer))
	return p, nil
}

// Enabled reports whether profiles are pushed
func (p *Profiler) Enabled() bool {
	return p.profiler != nil
}

// Stop flushes and stops the profiler; safe to call more than once
func (p *Profiler) Stop() error {
	if p.profiler == nil {
		return nil
	}
	prof := p.profiler
	p.profiler = nil
	if err := prof.Stop(); err != nil {
		return fmt.Errorf("failed to stop profiler: %w", err)
	}
	return nil
}

type pyroscopeLogger struct {
	*zap.SugaredLogger
}

var _ pyroscope.Logger = pyroscopeLogger{}
