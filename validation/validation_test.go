package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/clipscribe/errors"
)

type telegramConfig struct {
	BotToken string `mapstructure:"bot_token" validate:"required"`
}

type baseConfig struct {
	Name string `mapstructure:"name" validate:"required"`
}

type appConfig struct {
	baseConfig `mapstructure:",squash"`
	Telegram   telegramConfig `mapstructure:"telegram"`
	Backend    string         `mapstructure:"backend" validate:"oneof=openai whisper"`
	MaxSizeMB  int            `mapstructure:"max_video_size_mb" validate:"gte=1"`
	WhisperURL string         `mapstructure:"whisper_url" validate:"omitempty,url"`
	Untagged   int
}

func validConfig() appConfig {
	return appConfig{
		baseConfig: baseConfig{Name: "clipscribe"},
		Telegram:   telegramConfig{BotToken: "123:abc"},
		Backend:    "openai",
		MaxSizeMB:  100,
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("expected fields detail, got %T", appErr.Details["fields"])
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Field
	}
	return names
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := Validate(&cfg); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*appConfig)
		wantField string
		wantMsg   string
	}{
		{"nested required", func(c *appConfig) { c.Telegram.BotToken = "" }, "telegram.bot_token", "is required"},
		{"squashed embed", func(c *appConfig) { c.Name = "" }, "name", "is required"},
		{"oneof", func(c *appConfig) { c.Backend = "azure" }, "backend", "must be one of: openai, whisper"},
		{"gte", func(c *appConfig) { c.MaxSizeMB = 0 }, "max_video_size_mb", "must be at least 1"},
		{"url", func(c *appConfig) { c.WhisperURL = "not a url" }, "whisper_url", "must be a valid URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			names := fieldNames(t, err)
			if len(names) != 1 || names[0] != tt.wantField {
				t.Errorf("expected field %q, got %v", tt.wantField, names)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected %q in %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestValidate_SquashInsideSection(t *testing.T) {
	type limits struct {
		MaxJobs int `mapstructure:"max_jobs" validate:"gte=1"`
	}
	type botSection struct {
		limits `mapstructure:",squash"`
	}
	type root struct {
		Bot botSection `mapstructure:"bot"`
	}

	names := fieldNames(t, Validate(&root{}))
	if len(names) != 1 || names[0] != "bot.max_jobs" {
		t.Errorf("expected field %q, got %v", "bot.max_jobs", names)
	}
}

func TestValidator_CollectsAll(t *testing.T) {
	err := New().
		Required("telegram.bot_token", "  ").
		Min("bot.max_concurrent_jobs", 0, 1).
		Positive("media.chunk_duration", 0).
		OneOf("transcription.backend", "azure", "openai", "whisper").
		Custom(false, "openai.api_key", "is required when transcription.backend is openai").
		Validate()

	names := fieldNames(t, err)
	want := []string{"telegram.bot_token", "bot.max_concurrent_jobs", "media.chunk_duration", "transcription.backend", "openai.api_key"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestValidator_Passes(t *testing.T) {
	err := New().
		Required("telegram.bot_token", "123:abc").
		Min("bot.max_concurrent_jobs", 4, 1).
		Positive("media.chunk_duration", 5*time.Minute).
		OneOf("transcription.backend", "", "openai").
		Custom(true, "openai.api_key", "unused").
		Validate()
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ServiceConfig", "service_config"},
		{"Untagged", "untagged"},
		{"maxSize", "max_size"},
	}
	for _, tt := range tests {
		if got := toSnakeCase(tt.in); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
