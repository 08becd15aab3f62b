package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Status is the outcome of a check, or of a whole run.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckFunc inspects one component. A nil error is healthy; an error built
// with Warn degrades the run without failing it; any other error fails it.
type CheckFunc func(ctx context.Context) error

// ErrCheckTimeout is reported when a check outlives the checker's timeout.
var ErrCheckTimeout = errors.New("check timed out")

type warning struct{ msg string }

func (w *warning) Error() string { return w.msg }

// Warn returns an error that marks a check as degraded.
func Warn(format string, args ...any) error {
	return &warning{msg: fmt.Sprintf(format, args...)}
}

// Result is the outcome of one check.
type Result struct {
	Name     string        `json:"name" yaml:"name"`
	Status   Status        `json:"status" yaml:"status"`
	Message  string        `json:"message,omitempty" yaml:"message,omitempty"`
	Duration time.Duration `json:"duration_ns" yaml:"duration_ns"`
}

// Report aggregates a run. Checks keep registration order.
type Report struct {
	Status    Status    `json:"status" yaml:"status"`
	Checks    []Result  `json:"checks" yaml:"checks"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Failed reports whether any check failed.
func (r Report) Failed() bool {
	return r.Status == StatusFail
}

type namedCheck struct {
	name string
	fn   CheckFunc
}

// Checker runs component checks concurrently.
type Checker struct {
	mu      sync.RWMutex
	checks  []namedCheck
	timeout time.Duration
}

// New creates a checker. A zero timeout defaults to 5 seconds per check.
func New(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{timeout: timeout}
}

// Register adds a check. Registering a name twice replaces the earlier
// check in place.
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.checks {
		if c.checks[i].name == name {
			c.checks[i].fn = fn
			return
		}
	}
	c.checks = append(c.checks, namedCheck{name: name, fn: fn})
}

// Names returns the registered check names in order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.checks))
	for i, nc := range c.checks {
		names[i] = nc.name
	}
	return names
}

// Run executes every check and aggregates the outcome: fail if any check
// failed, warn if any warned, ok otherwise.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := append([]namedCheck(nil), c.checks...)
	c.mu.RUnlock()

	results := make([]Result, len(checks))
	var wg sync.WaitGroup
	for i, nc := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.runCheck(ctx, nc)
		}()
	}
	wg.Wait()

	status := StatusOK
	for _, r := range results {
		switch {
		case r.Status == StatusFail:
			status = StatusFail
		case r.Status == StatusWarn && status == StatusOK:
			status = StatusWarn
		}
	}

	return Report{Status: status, Checks: results, Timestamp: time.Now()}
}

func (c *Checker) runCheck(ctx context.Context, nc namedCheck) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		errCh <- nc.fn(ctx)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		err = ErrCheckTimeout
	}

	res := Result{Name: nc.name, Status: StatusOK, Duration: time.Since(start)}
	var w *warning
	switch {
	case err == nil:
	case errors.As(err, &w):
		res.Status = StatusWarn
		res.Message = w.msg
	default:
		res.Status = StatusFail
		res.Message = err.Error()
	}
	return res
}
