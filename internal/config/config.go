package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Kinetics KineticsConfig `mapstructure:"kinetics"`
	Web      WebConfig      `mapstructure:"web"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// KineticsConfig points at the external computation service that owns
// mechanism parsing, rate evaluation and plot rendering.
type KineticsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WebConfig struct {
	StaticDir string `mapstructure:"static_dir"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	// .env is optional; real environment variables still win via AutomaticEnv
	_ = godotenv.Load()

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("KINLAB")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// config file first, environment as fallback
	if cfg.Kinetics.BaseURL == "" {
		if baseURL := os.Getenv("KINLAB_KINETICS_URL"); baseURL != "" {
			cfg.Kinetics.BaseURL = baseURL
		}
	}
	if cfg.Kinetics.Timeout == 0 {
		cfg.Kinetics.Timeout = 30 * time.Second
	}
	if cfg.Web.StaticDir == "" {
		cfg.Web.StaticDir = "./web"
	}

	return cfg, nil
}

func Get() *Config {
	return cfg
}
