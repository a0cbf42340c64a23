// Package validation checks configuration before the service starts.
//
// Struct tags cover single fields:
//
//	type TelegramConfig struct {
//	    BotToken string `mapstructure:"bot_token" validate:"required"`
//	}
//	err := validation.Validate(cfg)
//
// Validator covers rules that span fields:
//
//	err := validation.New().Custom(ok, "openai.api_key", "is required").Validate()
//
// Both return a INVALID_INPUT AppError whose "fields" detail lists every
// failing key.
package validation
