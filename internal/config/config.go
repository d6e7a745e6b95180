package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/daily-fortune/internal/adapters/cache/memory"
	"github.com/bnema/daily-fortune/internal/adapters/hitokoto"
	"github.com/bnema/daily-fortune/internal/adapters/tianapi"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = "fortune"
	envPrefix  = "FORTUNE"

	DefaultListen    = "127.0.0.1:5000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatConsole

	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	FormatTOML = "toml"
	FormatYAML = "yaml"

	KeyTianAPIKey        = "tianapi.key"
	KeyTianAPIBaseURL    = "tianapi.base_url"
	KeyTianAPITimeout    = "tianapi.timeout"
	KeyTransportCacheTTL = "tianapi.transport_cache_ttl"
	KeyCacheTTL          = "cache.ttl"
	KeyFallbackEnabled   = "fallback.enabled"
	KeyServerListen      = "server.listen"
	KeyServerPort        = "server.port"
	KeyHitokotoURLs      = "hitokoto.urls"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"

	redacted = "***"
)

type Config struct {
	TianAPI  TianAPIConfig
	Cache    CacheConfig
	Fallback bool
	Listen   string
	Hitokoto []string
	Log      LogConfig

	// File is the config file that was read, empty when none was found.
	File string
}

type TianAPIConfig struct {
	Key               string
	BaseURL           string
	Timeout           time.Duration
	TransportCacheTTL time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from defaults, an optional TOML file and the
// environment. An explicit configFile must exist; the default search paths
// are optional.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetDefault(KeyTianAPIBaseURL, tianapi.DefaultBaseURL)
	v.SetDefault(KeyTianAPITimeout, tianapi.DefaultRequestTimeout)
	v.SetDefault(KeyTransportCacheTTL, memory.TransportTTL)
	v.SetDefault(KeyCacheTTL, memory.ResponseTTL)
	v.SetDefault(KeyFallbackEnabled, false)
	v.SetDefault(KeyHitokotoURLs, hitokoto.DefaultMirrors)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyTianAPIKey, envPrefix+"_TIANAPI_KEY", "TIANAPI_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind %s: %w", KeyTianAPIKey, err)
	}
	if err := v.BindEnv(KeyServerPort, "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind %s: %w", KeyServerPort, err)
	}

	v.SetConfigType(configType)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		for _, dir := range SearchPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		TianAPI: TianAPIConfig{
			Key:               strings.TrimSpace(v.GetString(KeyTianAPIKey)),
			BaseURL:           v.GetString(KeyTianAPIBaseURL),
			Timeout:           v.GetDuration(KeyTianAPITimeout),
			TransportCacheTTL: v.GetDuration(KeyTransportCacheTTL),
		},
		Cache:    CacheConfig{TTL: v.GetDuration(KeyCacheTTL)},
		Fallback: v.GetBool(KeyFallbackEnabled),
		Listen:   listenAddress(v),
		Hitokoto: v.GetStringSlice(KeyHitokotoURLs),
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
		File: v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SearchPaths lists the directories probed for config.toml, most specific
// first.
func SearchPaths() []string {
	var dirs []string
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, configDir))
	}
	if home, err := os.UserHomeDir(); err == nil {
		fallback := filepath.Join(home, ".config", configDir)
		if len(dirs) == 0 || dirs[0] != fallback {
			dirs = append(dirs, fallback)
		}
	}
	return dirs
}

func listenAddress(v *viper.Viper) string {
	if listen := strings.TrimSpace(v.GetString(KeyServerListen)); listen != "" {
		return listen
	}
	if port := strings.TrimSpace(v.GetString(KeyServerPort)); port != "" {
		return ":" + port
	}
	return DefaultListen
}

func (c Config) Validate() error {
	var errs []error
	if c.TianAPI.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyTianAPITimeout))
	}
	if c.TianAPI.TransportCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyTransportCacheTTL))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyCacheTTL))
	}
	if c.Log.Format != LogFormatConsole && c.Log.Format != LogFormatJSON {
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", KeyLogFormat, LogFormatConsole, LogFormatJSON, c.Log.Format))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

type document struct {
	TianAPI  tianapiDocument  `toml:"tianapi" yaml:"tianapi"`
	Cache    cacheDocument    `toml:"cache" yaml:"cache"`
	Fallback fallbackDocument `toml:"fallback" yaml:"fallback"`
	Server   serverDocument   `toml:"server" yaml:"server"`
	Hitokoto hitokotoDocument `toml:"hitokoto" yaml:"hitokoto"`
	Log      logDocument      `toml:"log" yaml:"log"`
}

type tianapiDocument struct {
	Key               string `toml:"key" yaml:"key"`
	BaseURL           string `toml:"base_url" yaml:"base_url"`
	Timeout           string `toml:"timeout" yaml:"timeout"`
	TransportCacheTTL string `toml:"transport_cache_ttl" yaml:"transport_cache_ttl"`
}

type cacheDocument struct {
	TTL string `toml:"ttl" yaml:"ttl"`
}

type fallbackDocument struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

type serverDocument struct {
	Listen string `toml:"listen" yaml:"listen"`
}

type hitokotoDocument struct {
	URLs []string `toml:"urls" yaml:"urls"`
}

type logDocument struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Encode renders the effective configuration in the layout the config file
// uses, as toml or yaml. The API key is always redacted.
func (c Config) Encode(format string) ([]byte, error) {
	doc := c.document()
	switch format {
	case "", FormatTOML:
		return toml.Marshal(doc)
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
}

func (c Config) document() document {
	key := ""
	if c.TianAPI.Key != "" {
		key = redacted
	}

	return document{
		TianAPI: tianapiDocument{
			Key:               key,
			BaseURL:           c.TianAPI.BaseURL,
			Timeout:           c.TianAPI.Timeout.String(),
			TransportCacheTTL: c.TianAPI.TransportCacheTTL.String(),
		},
		Cache:    cacheDocument{TTL: c.Cache.TTL.String()},
		Fallback: fallbackDocument{Enabled: c.Fallback},
		Server:   serverDocument{Listen: c.Listen},
		Hitokoto: hitokotoDocument{URLs: c.Hitokoto},
		Log:      logDocument{Level: c.Log.Level, Format: c.Log.Format},
	}
}
