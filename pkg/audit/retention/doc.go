// Package retention prunes the audit trail by age and by record count.
// The CLI prunes on demand; the watch command runs the Scheduler, which
// prunes on a standard five-field cron expression.
package retention
