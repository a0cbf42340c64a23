package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	MaxVideoSizeMB int `mapstructure:"max_video_size_mb"`
	Telegram       struct {
		BotToken string `mapstructure:"bot_token"`
	} `mapstructure:"telegram"`
	Media struct {
		ChunkDuration time.Duration `mapstructure:"chunk_duration"`
	} `mapstructure:"media"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug || cfg.Logging.Level != "debug" {
			t.Errorf("expected debug logging in development, got debug=%v level=%q", cfg.Debug, cfg.Logging.Level)
		}
	})

	t.Run("production keeps info level", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info level, got %q", cfg.Logging.Level)
		}
		if cfg.Logging.Format != "json" {
			t.Errorf("expected json logs in production, got %q", cfg.Logging.Format)
		}
	})

	t.Run("explicit format wins in production", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.Logging.Format = "console"
		cfg.ApplyDefaults()
		if cfg.Logging.Format != "console" {
			t.Errorf("expected console, got %q", cfg.Logging.Format)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "production"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_YAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: clipscribe
environment: staging
max_video_size_mb: 50
telegram:
  bot_token: from-file
media:
  chunk_duration: 2m
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")

	var cfg testConfig
	if err := LoadConfig("clipscribe", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "none"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "clipscribe" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config: %+v", cfg.ServiceConfig)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Errorf("expected env to override file, got %q", cfg.Telegram.BotToken)
	}
	if cfg.MaxVideoSizeMB != 50 {
		t.Errorf("expected 50, got %d", cfg.MaxVideoSizeMB)
	}
	if cfg.Media.ChunkDuration != 2*time.Minute {
		t.Errorf("expected 2m chunk duration, got %v", cfg.Media.ChunkDuration)
	}
}

func TestLoadConfig_TopLevelEnvKey(t *testing.T) {
	t.Setenv("MAX_VIDEO_SIZE_MB", "25")
	var cfg testConfig
	if err := LoadConfig("clipscribe", &cfg, WithConfigFile("/nonexistent/config.yml"), WithEnvFile("/nonexistent/.env")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxVideoSizeMB != 25 {
		t.Errorf("expected 25 from env, got %d", cfg.MaxVideoSizeMB)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "CLIPSCRIBE_TEST_ONLY_TOKEN=abc\n")
	t.Cleanup(func() { os.Unsetenv("CLIPSCRIBE_TEST_ONLY_TOKEN") })

	var cfg struct {
		Clipscribe struct {
			Test struct {
				OnlyToken string `mapstructure:"only_token"`
			} `mapstructure:"test"`
		} `mapstructure:"clipscribe"`
	}
	if err := LoadConfig("clipscribe", &cfg, WithConfigFile("/nonexistent.yml"), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Clipscribe.Test.OnlyToken != "abc" {
		t.Errorf("expected value from .env, got %q", cfg.Clipscribe.Test.OnlyToken)
	}
}

func TestLoadConfig_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "name: [unterminated\n")
	var cfg testConfig
	if err := LoadConfig("clipscribe", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected error for unparsable config file")
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/clipscribe/config.yml": true,
		"./config.yml":                true,
		"./.env":                      true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("clipscribe", LoaderConfig{})
	if files.ConfigFile != "./cmd/clipscribe/config.yml" {
		t.Errorf("expected cmd config first, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected ./.env, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{}}
	files := resolver.ResolveFiles("clipscribe", LoaderConfig{ConfigFile: "/etc/c.yml", EnvFile: "/etc/.env"})
	if files.ConfigFile != "/etc/c.yml" || files.EnvFile != "/etc/.env" {
		t.Errorf("expected explicit paths to win, got %+v", files)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("TELEGRAM_BOT_TOKEN")
	for _, want := range []string{"telegram_bot_token", "telegram.bot_token", "telegram.bot.token"} {
		if !slices.Contains(got, want) {
			t.Errorf("expected variant %q in %v", want, got)
		}
	}
	if got := envKeyVariants("PATH"); len(got) != 1 || got[0] != "path" {
		t.Errorf("expected single variant for PATH, got %v", got)
	}
}
