// Package manager keeps the current compiled policy for a running process
// and reloads it when the policy file changes.
//
// FileWatcher watches the parent directory of each target file with
// fsnotify, so atomic replace-by-rename is seen as a change to the target.
// Bursts of events are collapsed by a Debouncer before the callback runs.
//
// A reload that fails to parse or validate keeps the last good rules and
// records the error:
//
//	mgr := manager.New(".sprintgate/policy.yaml", logger)
//	if err := mgr.Load(); err != nil {
//	    logger.Warn("policy invalid, using built-in rules", "error", err)
//	}
//	go mgr.Watch(ctx, 100*time.Millisecond)
//	rules := mgr.Rules()
package manager
