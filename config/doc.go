// Package config loads service configuration with Viper.
//
// Values are layered: a YAML file found next to the binary's cmd directory
// (or given explicitly), then a .env file loaded through godotenv, then the
// process environment. Environment keys are matched against nested config
// keys by splitting on underscores, so TELEGRAM_BOT_TOKEN fills
// telegram.bot_token and MAX_VIDEO_SIZE_MB fills max_video_size_mb.
//
// # Usage
//
//	var cfg app.Config
//	if err := config.LoadConfig("clipscribe", &cfg); err != nil { ... }
package config
