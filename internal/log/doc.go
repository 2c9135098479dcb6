// Package log builds the slog loggers used by preflightreport.
//
// Every logger returned by NewLogger wraps its output handler in a Handler
// that cleans attribute values before they are written:
//   - file paths under the user's home directory are shortened to "~/..."
//     so logs can be attached to tickets without leaking account names
//   - values of credential-like keys (token, secret, password, auth and
//     similar) and values that look like bearer or basic credentials are
//     replaced by MaskValue
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose, false)
//	logger.Info("report saved", "path", "/home/alice/jobs/flyer.pdf")
//	// path=~/jobs/flyer.pdf
//
// Verbose loggers emit Debug records; otherwise only warnings and errors
// are written.
package log
