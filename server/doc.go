// Package server is the operational HTTP surface: a Gin engine serving
// health, readiness, version and runtime metrics next to the bot.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: Panic recovery with structured logging
//   - RequestID: Request ID generation and propagation
//   - RequestLogger: Request logging with duration tracking
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /ready: readiness probe
//   - /version: build information
//   - /metrics: runtime memory and goroutine counts
package server
