package recorder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"keelson-hq/sprintgate/pkg/audit"
	"keelson-hq/sprintgate/pkg/config"
	"keelson-hq/sprintgate/pkg/feedback"
	"keelson-hq/sprintgate/pkg/gate"
	"keelson-hq/sprintgate/pkg/telemetry/logging"
	"keelson-hq/sprintgate/pkg/telemetry/metrics"
)

// ErrClosed is returned when a record arrives after Close.
var ErrClosed = errors.New("recorder closed")

// Config contains configuration for the audit recorder.
type Config struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 64
	AsyncBuffer int

	// WriteTimeout bounds enqueueing and each storage write.
	// Default: 2 seconds
	WriteTimeout time.Duration

	// MaxFieldLength is the maximum length for command and reason fields
	// before truncation.
	// Default: 500
	MaxFieldLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:    config.DefaultAuditAsyncBuffer,
		WriteTimeout:   config.DefaultAuditWriteTimeout,
		MaxFieldLength: config.DefaultAuditMaxFieldLength,
	}
}

// ConfigFrom converts the audit recorder settings of the configuration file.
func ConfigFrom(cfg config.AuditRecorderConfig) *Config {
	return &Config{
		AsyncBuffer:    cfg.AsyncBuffer,
		WriteTimeout:   cfg.WriteTimeout,
		MaxFieldLength: cfg.MaxFieldLength,
	}
}

// GateEntry is one pre-action decision to record.
type GateEntry struct {
	Request      gate.Request
	Verdict      gate.Verdict
	Elapsed      time.Duration
	PolicyDigest string
}

// FeedbackEntry is one post-action decision to record.
type FeedbackEntry struct {
	Result  feedback.Result
	Verdict feedback.Verdict
	Elapsed time.Duration
}

// Recorder writes audit records asynchronously so recording never delays a
// verdict. Close drains every record enqueued before it.
type Recorder struct {
	storage    audit.Storage
	config     *Config
	recordChan chan *audit.Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *logging.Logger
	metrics    *metrics.AuditMetrics
	redactor   *logging.Redactor
	now        func() time.Time
}

// Options configure a Recorder.
type Options struct {
	Config   *Config
	Logger   *logging.Logger
	Metrics  *metrics.AuditMetrics
	Redactor *logging.Redactor
	Now      func() time.Time
}

// NewRecorder creates a recorder over the storage backend and starts its
// background writer.
func NewRecorder(storage audit.Storage, opts Options) *Recorder {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.AsyncBuffer <= 0 {
		cfg.AsyncBuffer = config.DefaultAuditAsyncBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = config.DefaultAuditWriteTimeout
	}
	if cfg.MaxFieldLength <= 0 {
		cfg.MaxFieldLength = config.DefaultAuditMaxFieldLength
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	redactor := opts.Redactor
	if redactor == nil {
		redactor = logging.NewRedactor(nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	r := &Recorder{
		storage:    storage,
		config:     cfg,
		recordChan: make(chan *audit.Record, cfg.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     logger.WithComponent("audit.recorder"),
		metrics:    opts.Metrics,
		redactor:   redactor,
		now:        now,
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// RecordGate records a pre-action verdict.
func (r *Recorder) RecordGate(ctx context.Context, e GateEntry) error {
	v := e.Verdict
	record := &audit.Record{
		ID:               uuid.New().String(),
		DecisionID:       v.DecisionID,
		Phase:            audit.PhasePre,
		Timestamp:        r.now().UTC(),
		Duration:         e.Elapsed,
		SessionID:        e.Request.SessionID,
		Tool:             e.Request.Tool,
		ActionKind:       string(v.ActionKind),
		Command:          r.clean(e.Request.Command),
		FilePath:         TruncateString(e.Request.FilePath, r.config.MaxFieldLength),
		Allowed:          v.Allowed,
		Check:            v.Check,
		Severity:         string(v.Severity),
		Reason:           r.clean(v.Reason),
		RequiresApproval: v.RequiresApproval,
		SprintID:         v.SprintID,
		PolicyDigest:     e.PolicyDigest,
		Warnings:         r.cleanAll(v.Warnings),
	}
	return r.Record(ctx, record)
}

// RecordFeedback records a post-action verdict.
func (r *Recorder) RecordFeedback(ctx context.Context, e FeedbackEntry) error {
	v := e.Verdict
	record := &audit.Record{
		ID:             uuid.New().String(),
		DecisionID:     v.DecisionID,
		Phase:          audit.PhasePost,
		Timestamp:      r.now().UTC(),
		Duration:       e.Elapsed,
		SessionID:      e.Result.SessionID,
		Tool:           e.Result.Tool,
		FilePath:       TruncateString(e.Result.FilePath, r.config.MaxFieldLength),
		Allowed:        !v.BlocksWorkflow,
		Severity:       v.Severity,
		Reason:         r.clean(v.Message),
		Status:         string(v.Status),
		BlocksWorkflow: v.BlocksWorkflow,
		Warnings:       r.cleanAll(v.Warnings),
	}
	return r.Record(ctx, record)
}

// Record enqueues a record for writing. It returns without waiting for
// storage; a full buffer waits up to the write timeout before dropping.
func (r *Recorder) Record(ctx context.Context, record *audit.Record) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	select {
	case <-r.done:
		r.metrics.RecordWrite("dropped")
		return audit.NewRecorderError(record.ID, ErrClosed)
	default:
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.recordChan <- record:
		r.logger.DebugContext(ctx, "audit record enqueued",
			"record_id", record.ID,
			"decision_id", record.DecisionID,
		)
		return nil
	case <-timer.C:
		r.logger.ErrorContext(ctx, "audit channel full, dropping record",
			"record_id", record.ID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		r.metrics.RecordWrite("dropped")
		return audit.NewRecorderError(record.ID, context.DeadlineExceeded)
	case <-ctx.Done():
		r.metrics.RecordWrite("dropped")
		return audit.NewRecorderError(record.ID, ctx.Err())
	case <-r.done:
		r.metrics.RecordWrite("dropped")
		return audit.NewRecorderError(record.ID, ErrClosed)
	}
}

// Close stops accepting records and waits for the queued ones to be
// written. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
	return nil
}

// worker drains the channel until Close, then flushes what is left.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single record to storage.
func (r *Recorder) writeRecord(record *audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.metrics.RecordWrite("error")
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"decision_id", record.DecisionID,
			"error", err,
		)
		return
	}
	r.metrics.RecordWrite("ok")

	if d := time.Since(start); d > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", d.Milliseconds(),
		)
	}
}

func (r *Recorder) clean(s string) string {
	return TruncateString(r.redactor.RedactString(s), r.config.MaxFieldLength)
}

func (r *Recorder) cleanAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = r.clean(s)
	}
	return out
}
