// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard slog
// package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (passwords, tokens, secrets)
//   - Format selection (tint for interactive terminals, text, JSON)
//   - Configurable log levels with verbose mode support
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log
// output:
//   - Administrator and database passwords
//   - Connection strings carrying inline credentials
//   - Secret values detected by pattern matching (tokens, keys)
//   - Session identifiers and authentication headers
//
// The installer runs the platform's own setup scripts, which emit derived
// options into the shared run state; some of those options are credentials.
// Even in verbose mode, sensitive values are masked so a terminal scrollback
// or a piped log file never contains a usable secret.
//
// # Usage
//
//	// Create the installer logger with redaction
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//
//	// Use as a standard slog.Logger
//	logger.Info("administrator configured",
//	    "email", "admin@plexus.local",
//	    "admin_password", "s3cret",  // Will be sanitized to "***REDACTED***"
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
