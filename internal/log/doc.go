// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (cookies, tokens, secrets)
//   - Redaction of credentials inside URLs, including URLs in error messages
//   - Configurable log levels with verbose mode support
//
// # Security Features
//
// Per-site cookies and headers from the configuration file are sent with
// every request, and crawled pages may link to URLs that carry tokens in
// their query string. The SecureHandler masks:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Values that look like tokens (JWT, Bearer, long API keys)
//   - Passwords in URL userinfo and sensitive query parameters
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Warn("fetch failed",
//	    "url", "https://user:pw@example.com/?token=abc", // password and token masked
//	    "cookie", "session=abc123",                      // masked entirely
//	)
//
//	slog.SetDefault(logger)
package log
