package config

import "fmt"

type Config struct {
	Server  ServerConfig
	OpenAI  OpenAIConfig
	Naver   NaverConfig
	Weather WeatherConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port    int
	MCPPort int
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type NaverConfig struct {
	ClientID     string
	ClientSecret string
}

type WeatherConfig struct {
	ServiceKey string
	GridX      int
	GridY      int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    8000,
			MCPPort: 8001,
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Weather: WeatherConfig{
			// KMA grid cell for central Seoul.
			GridX: 60,
			GridY: 127,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/checkmate/config.json with CHECKMATE_* environment
// variables overriding file values. Secrets (API keys) come from the
// environment only.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key. Set it via environment variable CHECKMATE_OPENAI_API_KEY")
	}

	return cfg, nil
}
