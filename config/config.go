package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// Enso routing API
	EnsoAPIKey  string
	EnsoBaseURL string

	// OpenAI (chat tool calling)
	OpenAIAPIKey string
	OpenAIModel  string

	// Chain access
	ChainID     int64
	RPCURL      string
	PrivateKey  string
	SlippageBps int

	// Optional token-list cache
	RedisAddr string

	// HTTP API
	ListenAddr string

	// Local state files
	SettingsPath string
	QueuePath    string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".voca")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("enso_base_url", "https://api.enso.finance/api/v1")
	viper.SetDefault("openai_model", "gpt-4-turbo-preview")
	viper.SetDefault("chain_id", 137)
	viper.SetDefault("rpc_url", "https://polygon-rpc.com")
	viper.SetDefault("slippage_bps", 50)
	viper.SetDefault("listen_addr", ":8080")

	// Read from environment variables
	viper.SetEnvPrefix("VOCA")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		EnsoAPIKey:   viper.GetString("enso_api_key"),
		EnsoBaseURL:  viper.GetString("enso_base_url"),
		OpenAIAPIKey: viper.GetString("openai_api_key"),
		OpenAIModel:  viper.GetString("openai_model"),
		ChainID:      viper.GetInt64("chain_id"),
		RPCURL:       viper.GetString("rpc_url"),
		PrivateKey:   viper.GetString("private_key"),
		SlippageBps:  viper.GetInt("slippage_bps"),
		RedisAddr:    viper.GetString("redis_addr"),
		ListenAddr:   viper.GetString("listen_addr"),
		SettingsPath: viper.GetString("settings_path"),
		QueuePath:    viper.GetString("queue_path"),
	}

	// The Enso key gates every token/quote/route call
	if cfg.EnsoAPIKey == "" {
		return nil, fmt.Errorf("Enso API key not found. Please set VOCA_ENSO_API_KEY environment variable or create a .voca.yaml config file")
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
