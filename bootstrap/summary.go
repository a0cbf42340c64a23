package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/clipscribe/component"
)

// Summary prints what started: described components, routes and live
// health, pulled from the registry.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary printer; a nil out writes to stdout.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	if out == nil {
		out = os.Stdout
	}
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display prints the summary for the components in registry.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	fmt.Fprintf(s.out, "\n🚀 %s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())
	if registry == nil {
		fmt.Fprintln(s.out)
		return
	}

	var described []component.Description
	var routes []component.Route
	for _, c := range registry.All() {
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name == "" {
				desc.Name = c.Name()
			}
			described = append(described, desc)
		}
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}

	if len(described) > 0 {
		fmt.Fprintf(s.out, "\n📊 Components\n")
		for i, d := range described {
			details := d.Details
			if d.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, d.Port)
			}
			fmt.Fprintf(s.out, "   %s %s [%s]: %s\n", treePrefix(i, len(described)), d.Name, d.Type, details)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(s.out, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(s.out, "   %s %-7s %s → %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	if health := registry.HealthAll(ctx); len(health) > 0 {
		fmt.Fprintf(s.out, "\n🏥 Health Check\n")
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " (" + h.Message + ")"
			}
			fmt.Fprintf(s.out, "   %s %s %s: %s%s\n", treePrefix(i, len(health)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
		}
	}
	fmt.Fprintln(s.out)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
