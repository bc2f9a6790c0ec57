package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const EnvPrefix = "VOICECLIENT"

var ErrBadOption = errors.New("conference option must be key=value")

type Config struct {
	Mode       string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Port       int           `mapstructure:"port" validate:"min=1,max=65535"`
	LogLevel   string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	ReadLimit  int64         `mapstructure:"read_limit" validate:"min=512"`
	PingPeriod time.Duration `mapstructure:"ping_period" validate:"gt=0"`
	// Secret keys the control API cookie store.
	Secret string `mapstructure:"secret" validate:"omitempty,min=16"`

	Signal     SignalConfig     `mapstructure:"signal"`
	Conference ConferenceConfig `mapstructure:"conference"`
	ICEServers []ICEServer      `mapstructure:"ice_servers" validate:"dive"`
	Media      MediaConfig      `mapstructure:"media"`
	Views      ViewsConfig      `mapstructure:"views"`
}

type SignalConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	QueueSize int           `mapstructure:"queue_size" validate:"min=1"`
}

// ConferenceConfig holds the join options and, optionally, a room to enter
// at startup.
type ConferenceConfig struct {
	// Options are "key=value" pairs forwarded on join.
	Options  []string `mapstructure:"options"`
	Room     string   `mapstructure:"room" validate:"max=64"`
	Identity string   `mapstructure:"identity" validate:"max=64"`
	Secret   string   `mapstructure:"secret"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls" validate:"min=1,dive,required"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type MediaConfig struct {
	RenegotiationDelay time.Duration `mapstructure:"renegotiation_delay" validate:"gt=0"`
	GatherTimeout      time.Duration `mapstructure:"gather_timeout" validate:"gt=0"`
	DataChannelLabel   string        `mapstructure:"data_channel_label" validate:"required"`
}

type ViewsConfig struct {
	Slots int `mapstructure:"slots" validate:"min=1"`
}

func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName over the defaults. A missing file is not an error.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix(EnvPrefix)
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
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.OptionMap(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("signal", cfg.Signal.BaseURL).
		Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "")

	v.SetDefault("signal.base_url", "http://localhost:8888")
	v.SetDefault("signal.timeout", "10s")
	v.SetDefault("signal.queue_size", 32)

	v.SetDefault("conference.options", []string{
		"channelLastN=-1",
		"disableRtx=false",
		"enableLipSync=true",
		"openSctp=true",
	})
	v.SetDefault("conference.room", "")
	v.SetDefault("conference.identity", "")
	v.SetDefault("conference.secret", "")

	v.SetDefault("ice_servers", []map[string]any{})

	v.SetDefault("media.renegotiation_delay", "10s")
	v.SetDefault("media.gather_timeout", "5s")
	v.SetDefault("media.data_channel_label", "ARDAMSd0")

	v.SetDefault("views.slots", 9)
}

// OptionMap parses the conference options into the join query map.
func (c *Config) OptionMap() (map[string]string, error) {
	out := make(map[string]string, len(c.Conference.Options))
	for _, kv := range c.Conference.Options {
		k, val, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%q: %w", kv, ErrBadOption)
		}
		out[k] = strings.TrimSpace(val)
	}
	return out, nil
}

func (c *Config) ICEServerList() []domain.ICEServer {
	out := make([]domain.ICEServer, 0, len(c.ICEServers))
	for _, s := range c.ICEServers {
		out = append(out, domain.ICEServer{
			URLs:       append([]string(nil), s.URLs...),
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	return out
}
