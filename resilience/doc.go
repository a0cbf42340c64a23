// Package resilience provides the fault-tolerance primitives used around
// external calls:
//
//   - Retry: per-call retry with exponential backoff, driven by error class
//   - CircuitBreaker: fails fast after consecutive upstream failures
//   - Bulkhead: caps how many media jobs run at once
//   - RateLimiter: token bucket used to pace chat message edits
package resilience
