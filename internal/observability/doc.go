// Package observability provides structured logging for the API and the web tier.
//
// This package implements:
//   - zap logger construction from configuration (json or console encoding)
//   - Request logging middleware with chi request ID propagation
package observability
