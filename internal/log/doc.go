// Package log provides secure logging functionality with automatic sanitization
// of subscriber identifiers, built on top of the standard slog package.
//
// Call detail records identify real people. This package extends slog so that
// log output never leaks the identities the tool is processing:
//   - Automatic sanitization of subscriber attributes (phone numbers, IMEI, IMSI)
//   - Contact names from identity mapping files are masked
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Privacy Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - Subscriber identifier keys (correspondent_id, msisdn, imei, imsi, caller)
//   - Phone-number-shaped values detected by pattern matching
//   - Identity mapping names (contact_name, display_name)
//   - Credentials as general hygiene (passwords, tokens, keys)
//
// Even in verbose mode, subscriber identifiers are masked so that debug logs
// can be attached to issue reports without redaction work.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("records loaded",
//	    "correspondent_id", "+14155550142",  // Will be sanitized to "***REDACTED***"
//	    "rows", 1482,
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
