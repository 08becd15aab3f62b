// Package health runs self-checks over the gate's moving parts: the state
// document, the policy document, the workspace root, the audit trail and
// repair declarations.
//
// Checks run concurrently, each under its own timeout, and are reported in
// registration order:
//
//	checker := health.New(2 * time.Second)
//	checker.Register("state", func(ctx context.Context) error {
//	    if snap := state.Read(ctx, store); snap.Status == state.StatusMissing {
//	        return health.Warn("no state document")
//	    }
//	    return nil
//	})
//	report := checker.Run(ctx)
//
// A check that returns an error made with Warn degrades the report. Any
// other error, including a timeout, fails it.
package health
