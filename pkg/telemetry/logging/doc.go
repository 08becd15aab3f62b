// Package logging provides structured logging with secret redaction.
//
// The package wraps log/slog. Gate invocations write their verdict to
// stdout, so log output goes to stderr or to a file, never to stdout.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//
//	ctx = logging.WithDecisionID(ctx, id)
//	logger.InfoContext(ctx, "check denied", "check", "scope")
//
// # Redaction
//
// Commands and file paths that reach a log line are scanned for API keys,
// cloud access keys, bearer tokens, private key blocks and
// password=value pairs. Fields whose key names a secret are masked whole.
package logging
