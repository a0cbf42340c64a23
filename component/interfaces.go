package component

import "context"

// HealthStatus is the coarse state reported by a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	// StatusDegraded still serves requests, e.g. every job slot is taken or
	// an optional backend is unreachable.
	StatusDegraded HealthStatus = "degraded"
)

// Serving reports whether the status still accepts work.
func (s HealthStatus) Serving() bool {
	return s == StatusHealthy || s == StatusDegraded
}

// Health is one component's health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a part of the service with a lifecycle: the Telegram bot,
// the ops HTTP server, the ffmpeg toolchain, the transcription backend.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. It must return once ctx is done even if work
	// is still draining.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is what a component shows in the startup summary.
type Description struct {
	// Name defaults to Component.Name when empty.
	Name string
	// Type is a short category such as "bot", "tool" or "storage".
	Type string
	// Details is a one-line configuration digest, e.g. "ffmpeg chunk=5m0s".
	Details string
	Port    int
}

// Describable components report themselves in the startup summary.
type Describable interface {
	Describe() Description
}

// Route is one registered HTTP route.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by the ops server to list its routes.
type RouteProvider interface {
	Routes() []Route
}
