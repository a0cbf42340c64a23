package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{Root: filepath.Join(t.TempDir(), "ws")})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestCreateAndCleanup(t *testing.T) {
	m := newManager(t)
	d, err := m.Create("job-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if filepath.Dir(d.Path()) != m.Root() {
		t.Errorf("expected job dir under root, got %s", d.Path())
	}
	for _, name := range []string{"input.mp4", "audio.mp3"} {
		if err := os.WriteFile(d.Path(name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	files, _ := d.Files()
	if len(files) != 2 || files[0] != "audio.mp3" {
		t.Errorf("expected [audio.mp3 input.mp4], got %v", files)
	}

	if err := d.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(d.Path()); !os.IsNotExist(err) {
		t.Errorf("expected job dir removed, stat err %v", err)
	}
	if err := d.Cleanup(); err != nil {
		t.Errorf("expected second Cleanup to be a no-op, got %v", err)
	}
	if files, _ := d.Files(); len(files) != 0 {
		t.Errorf("expected no files after cleanup, got %v", files)
	}
}

func TestCreate_RandomIDAndCollision(t *testing.T) {
	m := newManager(t)
	a, err := m.Create("")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, _ := m.Create("")
	if a.Path() == b.Path() {
		t.Error("expected distinct random directories")
	}
	if _, err := m.Create("dup"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create("dup"); err == nil {
		t.Error("expected error creating an existing job directory")
	}
}

func TestPath_StaysInsideDir(t *testing.T) {
	m := newManager(t)
	d, _ := m.Create("job")
	if got := d.Path("../../etc/passwd"); filepath.Dir(got) != d.Path() {
		t.Errorf("expected path confined to job dir, got %s", got)
	}
}

func TestSweep(t *testing.T) {
	m := newManager(t)
	old, _ := m.Create("old")
	fresh, _ := m.Create("fresh")
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old.Path(), past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed, err := m.Sweep(time.Hour)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if _, err := os.Stat(old.Path()); !os.IsNotExist(err) {
		t.Error("expected stale directory removed")
	}
	if _, err := os.Stat(fresh.Path()); err != nil {
		t.Error("expected fresh directory kept")
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Root == "" || cfg.StaleAfter != DefaultStaleAfter {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	cfg.StaleAfter = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative stale_after")
	}
}

func TestConfigSweepSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		periodic bool
		wantErr  bool
	}{
		{"", true, false},
		{"@hourly", true, false},
		{"*/15 * * * *", true, false},
		{"off", false, false},
		{"every hour", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			cfg := Config{SweepSchedule: tt.schedule}
			cfg.ApplyDefaults()
			if cfg.Periodic() != tt.periodic {
				t.Errorf("expected periodic=%v, got %v", tt.periodic, cfg.Periodic())
			}
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
