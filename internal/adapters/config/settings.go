package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
	"github.com/spf13/viper"
)

const (
	KeyAPIKey          = "cerebras_api_key"
	KeyDailyLimit      = "api_daily_limit"
	KeyChatModel       = "chat_model"
	KeyChatTemperature = "chat_temperature"
	KeyProviderBaseURL = "provider.base_url"
	KeyProviderTimeout = "provider.timeout"
	KeyUsagePath       = "usage.path"
	KeyLogLevel        = "log.level"

	EnvPrefix  = "CODELYNX"
	ConfigDir  = ".codelynx"
	configName = "config"
	configType = "toml"
)

// Source reads settings from ~/.codelynx/config.toml and CODELYNX_* variables.
// The file is re-read on every Load so edits apply without a restart.
type Source struct {
	mu  sync.Mutex
	cfg *viper.Viper
}

var _ ports.SettingsSource = (*Source)(nil)

func NewSource(cfg *viper.Viper, homeDir string) (*Source, error) {
	if cfg == nil {
		cfg = viper.New()
	}
	if homeDir == "" {
		var err error
		homeDir, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, ConfigDir))
	cfg.SetEnvPrefix(EnvPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(KeyDailyLimit, domain.DefaultDailyLimit)
	cfg.SetDefault(KeyChatModel, domain.DefaultChatModel)
	cfg.SetDefault(KeyChatTemperature, domain.DefaultChatTemperature)
	cfg.SetDefault(KeyProviderBaseURL, domain.DefaultProviderBaseURL)
	cfg.SetDefault(KeyProviderTimeout, "0s")
	cfg.SetDefault(KeyUsagePath, filepath.Join(homeDir, ConfigDir, "usage.toml"))
	cfg.SetDefault(KeyLogLevel, "warn")

	source := &Source{cfg: cfg}
	if err := source.read(); err != nil {
		return nil, err
	}

	return source, nil
}

// Viper exposes the shared configuration to adapters that take a *viper.Viper.
func (s *Source) Viper() *viper.Viper {
	return s.cfg
}

func (s *Source) Load(ctx context.Context) (domain.Settings, error) {
	if err := ctx.Err(); err != nil {
		return domain.Settings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.read(); err != nil {
		return domain.Settings{}, err
	}

	return domain.Settings{
		APIKey:          strings.TrimSpace(s.cfg.GetString(KeyAPIKey)),
		DailyLimit:      s.cfg.GetInt(KeyDailyLimit),
		ChatModel:       strings.TrimSpace(s.cfg.GetString(KeyChatModel)),
		ChatTemperature: s.cfg.GetFloat64(KeyChatTemperature),
		ProviderBaseURL: strings.TrimSpace(s.cfg.GetString(KeyProviderBaseURL)),
		ProviderTimeout: s.cfg.GetDuration(KeyProviderTimeout),
	}, nil
}

func (s *Source) LogLevel() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cfg.GetString(KeyLogLevel)
}

func (s *Source) read() error {
	err := s.cfg.ReadInConfig()
	if err == nil {
		return nil
	}

	var configNotFound viper.ConfigFileNotFoundError
	if errors.As(err, &configNotFound) {
		return nil
	}
	return fmt.Errorf("read config file: %w", err)
}
