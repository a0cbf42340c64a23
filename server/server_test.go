package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/clipscribe/component"
	"github.com/kbukum/clipscribe/logger"
	"github.com/kbukum/clipscribe/server/middleware"
)

func newTestServer(components ...component.Health) *Server {
	s := New(Config{Host: "127.0.0.1", Port: 0}, logger.Nop())
	s.ApplyDefaults("clipscribe", func(context.Context) []component.Health { return components })
	return s
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	s.GinEngine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return rr, body
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus string
	}{
		{"no components", nil, http.StatusOK, "healthy"},
		{"all healthy", []component.Health{{Name: "telegram", Status: component.StatusHealthy}}, http.StatusOK, "healthy"},
		{"degraded", []component.Health{
			{Name: "telegram", Status: component.StatusDegraded},
			{Name: "ffmpeg", Status: component.StatusHealthy},
		}, http.StatusOK, "degraded"},
		{"unhealthy wins", []component.Health{
			{Name: "telegram", Status: component.StatusDegraded},
			{Name: "ffmpeg", Status: component.StatusUnhealthy},
		}, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := get(t, newTestServer(tt.components...), "/health")
			if rr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			if body["status"] != tt.wantStatus {
				t.Errorf("expected status %q, got %v", tt.wantStatus, body["status"])
			}
			if body["service"] != "clipscribe" {
				t.Errorf("expected service clipscribe, got %v", body["service"])
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	rr, body := get(t, newTestServer(component.Health{Name: "telegram", Status: component.StatusDegraded}), "/ready")
	if rr.Code != http.StatusOK || body["status"] != "ready" {
		t.Errorf("expected degraded to be ready, got %d %v", rr.Code, body["status"])
	}

	rr, body = get(t, newTestServer(component.Health{Name: "telegram", Status: component.StatusUnhealthy}), "/ready")
	if rr.Code != http.StatusServiceUnavailable || body["status"] != "not_ready" {
		t.Errorf("expected not_ready, got %d %v", rr.Code, body["status"])
	}
}

func TestVersionAndMetrics(t *testing.T) {
	s := newTestServer()
	rr, body := get(t, s, "/version")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	build, ok := body["build"].(map[string]any)
	if !ok || build["version"] == "" {
		t.Errorf("expected build info, got %v", body["build"])
	}

	rr, body = get(t, s, "/metrics")
	if rr.Code != http.StatusOK || body["goroutines"] == nil {
		t.Errorf("expected runtime metrics, got %d %v", rr.Code, body)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/version", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "req-42")
	rr := httptest.NewRecorder()
	s.GinEngine().ServeHTTP(rr, req)
	if got := rr.Header().Get(middleware.HeaderRequestID); got != "req-42" {
		t.Errorf("expected req-42, got %q", got)
	}

	rr = httptest.NewRecorder()
	s.GinEngine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/version", http.NoBody))
	if rr.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("expected a generated request ID")
	}
}

func TestRecovery(t *testing.T) {
	s := newTestServer()
	s.GinEngine().GET("/boom", func(*gin.Context) { panic("boom") })
	rr, body := get(t, s, "/boom")
	if rr.Code != http.StatusInternalServerError || body["error"] != "Internal server error" {
		t.Errorf("expected recovered 500, got %d %v", rr.Code, body)
	}
}

func TestComponentLifecycle(t *testing.T) {
	s := newTestServer()
	c := NewComponent(s)
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}

	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get("http://" + s.Addr() + "/ready")
	if err != nil {
		t.Fatalf("expected server reachable, got %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if err := c.Stop(context.Background()); err != nil {
		t.Errorf("expected clean stop, got %v", err)
	}
	routes := c.Routes()
	if len(routes) != 4 || routes[0].Path != "/health" || routes[3].Path != "/version" {
		t.Errorf("expected 4 sorted routes, got %+v", routes)
	}
}

func TestHandlerName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"github.com/kbukum/clipscribe/server/endpoint.Health.func1", "health"},
		{"github.com/kbukum/clipscribe/server/endpoint.Metrics.func1", "metrics"},
	}
	for _, tt := range tests {
		if got := handlerName(tt.in); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.ReadTimeout != 5*time.Second {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}
}
