package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type RateLimit struct {
	CreatePerMinute int `mapstructure:"create_per_minute"`
	JoinPerMinute   int `mapstructure:"join_per_minute"`
}

type Media struct {
	MaxMessageLen int      `mapstructure:"max_message_len"`
	MaxFileSize   int64    `mapstructure:"max_file_size"`
	MaxFileName   int      `mapstructure:"max_file_name"`
	AllowedTypes  []string `mapstructure:"allowed_types"`
}

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	Secret         string        `mapstructure:"secret"`
	LogLevel       string        `mapstructure:"log_level"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	Backpressure   string        `mapstructure:"backpressure"`

	SessionTimeout time.Duration `mapstructure:"session_timeout"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	CodeAttempts   int           `mapstructure:"code_attempts"`

	RateLimit  RateLimit   `mapstructure:"rate_limit"`
	Media      Media       `mapstructure:"media"`
	ICEServers []ICEServer `mapstructure:"ice_servers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("secret", "duet-dev-secret")
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("read_limit", 10*1024*1024)
	v.SetDefault("ping_period", "25s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("backpressure", "kick")

	v.SetDefault("session_timeout", "30m")
	v.SetDefault("sweep_interval", "1m")
	v.SetDefault("code_attempts", 10)

	v.SetDefault("rate_limit.create_per_minute", 10)
	v.SetDefault("rate_limit.join_per_minute", 20)

	v.SetDefault("media.max_message_len", 5000)
	v.SetDefault("media.max_file_size", 5_000_000)
	v.SetDefault("media.max_file_name", 255)
	v.SetDefault("media.allowed_types", []string{
		"image/jpeg", "image/png", "image/gif", "image/webp",
		"audio/mpeg", "audio/wav", "audio/ogg",
	})

	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
		{"urls": []string{"stun:stun1.l.google.com:19302"}},
		{"urls": []string{"stun:stun2.l.google.com:19302"}},
	})
}

// Load reads config/config.<CONFIG_ENV>.yaml if present and applies
// environment overrides such as PORT or RATE_LIMIT_JOIN_PER_MINUTE.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.ReadLimit <= 0 {
		errs = append(errs, errors.New("read_limit must be positive"))
	}
	if c.PingPeriod <= 0 || c.PongWait <= c.PingPeriod {
		errs = append(errs, errors.New("ping_period must be positive and shorter than pong_wait"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.SessionTimeout <= 0 || c.SweepInterval <= 0 {
		errs = append(errs, errors.New("session_timeout and sweep_interval must be positive"))
	}
	if c.CodeAttempts <= 0 {
		errs = append(errs, errors.New("code_attempts must be positive"))
	}
	if c.RateLimit.CreatePerMinute < 0 || c.RateLimit.JoinPerMinute < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch strings.ToLower(c.Backpressure) {
	case "kick", "drop", "none", "":
	default:
		errs = append(errs, fmt.Errorf("unknown backpressure action %q", c.Backpressure))
	}
	return errors.Join(errs...)
}
