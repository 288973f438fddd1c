package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "CHECKMATE_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.mcp_port", typ: kInt, env: "CHECKMATE_SERVER_MCP_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.MCPPort = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.MCPPort },
	},
	{
		key: "openai.api_key", typ: kString, env: "CHECKMATE_OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.OpenAI.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.APIKey },
	},
	{
		key: "openai.base_url", typ: kString, env: "CHECKMATE_OPENAI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.BaseURL },
	},
	{
		key: "openai.model", typ: kString, env: "CHECKMATE_OPENAI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.Model },
	},
	{
		key: "naver.client_id", typ: kString, env: "CHECKMATE_NAVER_CLIENT_ID",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Naver.ClientID = v.(string) },
		extract: func(cfg Config) any { return cfg.Naver.ClientID },
	},
	{
		key: "naver.client_secret", typ: kString, env: "CHECKMATE_NAVER_CLIENT_SECRET",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Naver.ClientSecret = v.(string) },
		extract: func(cfg Config) any { return cfg.Naver.ClientSecret },
	},
	{
		key: "weather.service_key", typ: kString, env: "CHECKMATE_WEATHER_SERVICE_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Weather.ServiceKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Weather.ServiceKey },
	},
	{
		key: "weather.grid_x", typ: kInt, env: "CHECKMATE_WEATHER_GRID_X",
		apply:   func(cfg *Config, v any) { cfg.Weather.GridX = v.(int) },
		extract: func(cfg Config) any { return cfg.Weather.GridX },
	},
	{
		key: "weather.grid_y", typ: kInt, env: "CHECKMATE_WEATHER_GRID_Y",
		apply:   func(cfg *Config, v any) { cfg.Weather.GridY = v.(int) },
		extract: func(cfg Config) any { return cfg.Weather.GridY },
	},
	{
		key: "storage.data_dir", typ: kString, env: "CHECKMATE_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "CHECKMATE_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
