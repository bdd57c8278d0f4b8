package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	EIA      EIAConfig      `mapstructure:"eia"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// EIAConfig describes the query against the EIA v2 API.
type EIAConfig struct {
	APIKey          string   `mapstructure:"api_key"`
	BaseURL         string   `mapstructure:"base_url"`
	Frequency       string   `mapstructure:"frequency"`
	StartYear       int      `mapstructure:"start_year"`
	EndYear         int      `mapstructure:"end_year"`
	FuelTypes       []string `mapstructure:"fuel_types"` // EIA fueltypeid codes (SUN, WND, ...)
	RequestTimeout  int      `mapstructure:"request_timeout"`
	MaxRetries      int      `mapstructure:"max_retries"`
	MaxResponseSize int64    `mapstructure:"max_response_size"`
}

// ChartConfig controls the rendered image.
type ChartConfig struct {
	OutputPath string `mapstructure:"output_path"`
	Title      string `mapstructure:"title"`
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
}

// TelegramConfig is only needed by the publish command.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

var flagsOnce sync.Once

// LoadConfig layers configuration the usual way:
// 1. defaults
// 2. config.yaml
// 3. .env file
// 4. environment variables
// 5. command-line flags
func LoadConfig() (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.ReadInConfig() // no error if the file is absent

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.ReadInConfig() // no error if the file is absent

	v.AutomaticEnv()

	setupEnvAliases(v)

	setupFlags(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// FuelTypes may arrive as a comma-separated string from .env or a flag.
	if raw := v.Get("eia.fuel_types"); raw != nil {
		switch val := raw.(type) {
		case string:
			if val != "" {
				config.EIA.FuelTypes = strings.Split(val, ",")
				for i, code := range config.EIA.FuelTypes {
					config.EIA.FuelTypes[i] = strings.TrimSpace(code)
				}
			}
		case []string:
			config.EIA.FuelTypes = val
		case []interface{}:
			result := make([]string, 0, len(val))
			for _, item := range val {
				if s, ok := item.(string); ok {
					result = append(result, strings.TrimSpace(s))
				}
			}
			config.EIA.FuelTypes = result
		}
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setupEnvAliases(v *viper.Viper) {
	// EIA_API_KEY -> eia.api_key, and so on.
	v.BindEnv("eia.api_key", "EIA_API_KEY")
	v.BindEnv("eia.base_url", "EIA_BASE_URL")
	v.BindEnv("eia.frequency", "EIA_FREQUENCY")
	v.BindEnv("eia.start_year", "EIA_START_YEAR")
	v.BindEnv("eia.end_year", "EIA_END_YEAR")
	v.BindEnv("eia.fuel_types", "EIA_FUEL_TYPES")
	v.BindEnv("eia.request_timeout", "EIA_REQUEST_TIMEOUT")
	v.BindEnv("eia.max_retries", "EIA_MAX_RETRIES")
	v.BindEnv("eia.max_response_size", "EIA_MAX_RESPONSE_SIZE")

	v.BindEnv("chart.output_path", "CHART_OUTPUT_PATH")
	v.BindEnv("chart.title", "CHART_TITLE")
	v.BindEnv("chart.width", "CHART_WIDTH")
	v.BindEnv("chart.height", "CHART_HEIGHT")

	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("eia.api_key", "")
	v.SetDefault("eia.base_url", "https://api.eia.gov/v2")
	v.SetDefault("eia.frequency", "annual")
	v.SetDefault("eia.start_year", 2001)
	v.SetDefault("eia.end_year", 2024)
	v.SetDefault("eia.fuel_types", []string{"SUN", "WND", "HYC", "GEO", "BIO"})
	v.SetDefault("eia.request_timeout", 30)
	v.SetDefault("eia.max_retries", 2)
	v.SetDefault("eia.max_response_size", 10*1024*1024) // 10MB

	v.SetDefault("chart.output_path", "renewable_energy_chart.png")
	v.SetDefault("chart.title", "U.S. Annual Renewable Energy Generation")
	v.SetDefault("chart.width", 1600)
	v.SetDefault("chart.height", 1000)

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
}

func setupFlags(v *viper.Viper) {
	flagsOnce.Do(func() {
		pflag.String("eia.api_key", "", "EIA API key (env: EIA_API_KEY)")
		pflag.String("eia.base_url", "https://api.eia.gov/v2", "EIA API base URL (env: EIA_BASE_URL)")
		pflag.String("eia.frequency", "annual", "Data frequency, only annual is supported (env: EIA_FREQUENCY)")
		pflag.Int("eia.start_year", 2001, "First year of the requested range (env: EIA_START_YEAR)")
		pflag.Int("eia.end_year", 2024, "Last year of the requested range (env: EIA_END_YEAR)")
		pflag.String("eia.fuel_types", "", "Comma-separated EIA fueltypeid codes (env: EIA_FUEL_TYPES)")
		pflag.Int("eia.request_timeout", 30, "Request timeout in seconds (env: EIA_REQUEST_TIMEOUT)")
		pflag.Int("eia.max_retries", 2, "Max retries for retryable HTTP failures (env: EIA_MAX_RETRIES)")
		pflag.Int64("eia.max_response_size", 10*1024*1024, "Max response size in bytes (env: EIA_MAX_RESPONSE_SIZE)")

		pflag.String("chart.output_path", "renewable_energy_chart.png", "Output image path (env: CHART_OUTPUT_PATH)")
		pflag.String("chart.title", "U.S. Annual Renewable Energy Generation", "Chart title (env: CHART_TITLE)")
		pflag.Int("chart.width", 1600, "Chart width in pixels (env: CHART_WIDTH)")
		pflag.Int("chart.height", 1000, "Chart height in pixels (env: CHART_HEIGHT)")

		pflag.String("telegram.bot_token", "", "Telegram bot token for publish (env: TELEGRAM_BOT_TOKEN)")
		pflag.String("telegram.chat_id", "", "Telegram chat ID for publish (env: TELEGRAM_CHAT_ID)")

		pflag.Parse()
	})
	v.BindPFlags(pflag.CommandLine)
}

// ValidateConfig rejects configurations the pipeline cannot run with.
func ValidateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.EIA.APIKey) == "" {
		return fmt.Errorf("eia.api_key is required (get one at https://www.eia.gov/opendata/)")
	}
	if cfg.EIA.Frequency != "annual" {
		return fmt.Errorf("eia.frequency must be \"annual\", got %q", cfg.EIA.Frequency)
	}
	if cfg.EIA.StartYear > cfg.EIA.EndYear {
		return fmt.Errorf("eia.start_year (%d) must not be after eia.end_year (%d)", cfg.EIA.StartYear, cfg.EIA.EndYear)
	}
	if len(cfg.EIA.FuelTypes) == 0 {
		return fmt.Errorf("eia.fuel_types must list at least one fueltypeid code")
	}
	if cfg.Chart.OutputPath == "" {
		return fmt.Errorf("chart.output_path is required")
	}
	if cfg.Chart.Width <= 0 || cfg.Chart.Height <= 0 {
		return fmt.Errorf("chart dimensions must be positive, got %dx%d", cfg.Chart.Width, cfg.Chart.Height)
	}
	return nil
}
