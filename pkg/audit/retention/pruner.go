package retention

import (
	"context"
	"fmt"
	"time"

	"keelson-hq/sprintgate/pkg/audit"
	"keelson-hq/sprintgate/pkg/config"
	"keelson-hq/sprintgate/pkg/telemetry/logging"
	"keelson-hq/sprintgate/pkg/telemetry/metrics"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain records.
	// 0 means keep records forever.
	RetentionDays int

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// ConfigFrom converts the retention settings of the configuration file.
func ConfigFrom(cfg config.AuditRetentionConfig) *Config {
	return &Config{
		RetentionDays: cfg.Days,
		PruneSchedule: cfg.Schedule,
		MaxRecords:    cfg.MaxRecords,
	}
}

// Pruner enforces retention policies on audit records.
type Pruner struct {
	storage audit.Storage
	config  *Config
	logger  *logging.Logger
	metrics *metrics.AuditMetrics
	now     func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(storage audit.Storage, cfg *Config, logger *logging.Logger, am *metrics.AuditMetrics) *Pruner {
	if cfg == nil {
		cfg = ConfigFrom(config.AuditRetentionConfig{
			Days:     config.DefaultAuditRetentionDays,
			Schedule: config.DefaultAuditRetentionSched,
		})
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pruner{
		storage: storage,
		config:  cfg,
		logger:  logger.WithComponent("audit.retention"),
		metrics: am,
		now:     time.Now,
	}
}

// Prune deletes records older than the retention period, then the oldest
// records beyond the record cap. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by count failed: %w", err)
		}
		total += deleted
	}

	p.metrics.RecordPruned(total)
	if total > 0 {
		p.logger.Info("audit pruning completed",
			"total_deleted", total,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Debug("no audit records pruned")
	}
	return total, nil
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}
	return deleted, nil
}

// pruneByCount deletes the oldest records while the total exceeds the cap.
// Records sharing the cutoff timestamp go together, so a run can remove a
// few more than the strict excess.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, nil)
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	excess := int(count - p.config.MaxRecords)
	oldest, err := p.storage.Query(ctx, &audit.Query{SortOrder: "asc", Limit: excess})
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	cutoff := oldest[len(oldest)-1].Timestamp
	p.logger.Info("audit record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"cutoff", cutoff,
	)

	deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}
	return deleted, nil
}
