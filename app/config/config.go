package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log       Log      `yaml:"log"`
	Server    Server   `yaml:"server"`
	Storage   Storage  `yaml:"storage"`
	OpenAI    Provider `yaml:"openai"`
	Anthropic Provider `yaml:"anthropic"`
	Safety    Safety   `yaml:"safety"`
}

type Provider struct {
	// Base url of an OpenAI-compatible endpoint, empty for the provider default
	BaseURL string `yaml:"base_url" example:"https://api.openai.com/v1"`
	// API token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// Model name
	Model string `yaml:"model" example:"gpt-4o-mini" validate:"required"`
}

type Safety struct {
	// Disable the model tier of crisis detection, leaving only the pattern tier
	DisableModelTier bool `yaml:"disable_model_tier" example:"false"`
}

type Server struct {
	// HTTP listen address
	Addr string `yaml:"addr" example:":8080"`
}

type Storage struct {
	// Directory for per-user memory records
	DataDir string `yaml:"data_dir" example:"data"`
	// Force every save to fail, for exercising the degraded path
	ForceSaveFailure bool `yaml:"force_save_failure" example:"false"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	applyEnv(&result)

	if result.Server.Addr == "" {
		result.Server.Addr = ":8080"
	}
	if result.Storage.DataDir == "" {
		result.Storage.DataDir = "data"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

// applyEnv lets credentials and the failure-injection flag come from the
// environment, overriding whatever the YAML file says.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_TOKEN"); v != "" {
		cfg.OpenAI.Token = v
	}
	if v := os.Getenv("ANTHROPIC_TOKEN"); v != "" {
		cfg.Anthropic.Token = v
	}
	if v := os.Getenv("WELLSPRING_FORCE_SAVE_FAILURE"); v == "1" || v == "true" {
		cfg.Storage.ForceSaveFailure = true
	}
}
