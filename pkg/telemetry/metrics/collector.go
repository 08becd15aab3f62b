package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"keelson-hq/sprintgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus registry for one sprintgate process and
// hands out the per-component metric sets.
//
// sprintgate runs once per agent action, so there is no scrape endpoint.
// Instead the registry is flushed to a node_exporter textfile after every
// invocation when a textfile path is configured.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	gateMetrics     *GateMetrics
	feedbackMetrics *FeedbackMetrics
	auditMetrics    *AuditMetrics
}

// NewCollector creates a collector with the specified configuration. If
// registry is nil a fresh registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}
	if !cfg.Enabled {
		return c
	}

	c.gateMetrics = NewGateMetrics(cfg, registry)
	c.feedbackMetrics = NewFeedbackMetrics(cfg, registry)
	c.auditMetrics = NewAuditMetrics(cfg, registry)
	return c
}

// Gate returns the gate metric set, or nil when metrics are disabled.
// All GateMetrics methods accept a nil receiver.
func (c *Collector) Gate() *GateMetrics {
	return c.gateMetrics
}

// Feedback returns the feedback metric set, or nil when disabled.
func (c *Collector) Feedback() *FeedbackMetrics {
	return c.feedbackMetrics
}

// Audit returns the audit metric set, or nil when disabled.
func (c *Collector) Audit() *AuditMetrics {
	return c.auditMetrics
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Flush writes the registry to the configured textfile. It is a no-op when
// metrics are disabled or no textfile is configured.
func (c *Collector) Flush() error {
	if !c.config.Enabled || c.config.TextfilePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.config.TextfilePath), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(c.config.TextfilePath, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
