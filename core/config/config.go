package config

import (
	"fmt"
	"sync"
	"time"

	"chinba-client/core/constants"
	"chinba-client/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	// Config centralises all environment and runtime configuration
	Config struct {
		API     APIConfig     `mapstructure:"api"`
		Storage StorageConfig `mapstructure:"storage"`
		Redis   RedisConfig   `mapstructure:"redis"`
		OAuth   OAuthConfig   `mapstructure:"oauth"`
		Log     LogConfig     `mapstructure:"log"`
	}

	// APIConfig configures the scheduling backend client
	APIConfig struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	}

	// StorageConfig configures local draft persistence
	StorageConfig struct {
		DraftDir  string `mapstructure:"draft_dir"`
		Namespace string `mapstructure:"namespace"`
	}

	// RedisConfig configures the optional event-detail cache
	RedisConfig struct {
		Enabled  bool   `mapstructure:"enabled"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	}

	// OAuthConfig holds per-provider social login settings
	OAuthConfig struct {
		Kakao  OAuthProviderConfig `mapstructure:"kakao"`
		Google OAuthProviderConfig `mapstructure:"google"`
		Naver  OAuthProviderConfig `mapstructure:"naver"`
	}

	OAuthProviderConfig struct {
		ClientID     string   `mapstructure:"client_id"`
		ClientSecret string   `mapstructure:"client_secret"`
		RedirectURL  string   `mapstructure:"redirect_url"`
		AuthURL      string   `mapstructure:"auth_url"`
		TokenURL     string   `mapstructure:"token_url"`
		Scopes       []string `mapstructure:"scopes"`
	}

	LogConfig struct {
		Level string `mapstructure:"level"`
	}
)

var (
	mu       sync.RWMutex
	instance *Config
)

// Load reads .env, config file and environment variables into the global config
func Load() (*Config, error) {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("CHINBA")
	viper.AutomaticEnv()

	viper.SetDefault("api.base_url", constants.DefaultAPIBaseURL)
	viper.SetDefault("api.timeout", constants.DefaultTimeout)
	viper.SetDefault("storage.draft_dir", constants.DefaultDraftDir)
	viper.SetDefault("storage.namespace", constants.DraftNamespace)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		logger.Info("No config file found, using environment variables only")
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	logger.Init(cfg.Log.Level)

	mu.Lock()
	instance = cfg
	mu.Unlock()

	logger.Info("Configuration loaded",
		"api_base_url", cfg.API.BaseURL,
		"draft_dir", cfg.Storage.DraftDir,
		"redis_enabled", cfg.Redis.Enabled,
	)

	return cfg, nil
}

// Get returns the global config, panicking if Load was never called
func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: Load must be called before Get")
	}
	return cfg
}

// GetSafe returns the global config and whether it has been initialized
func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
