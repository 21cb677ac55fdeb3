package config

import (
	logger "github.com/Bparsons0904/goLogger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`

	LedgerURL   string `mapstructure:"LEDGER_URL"`
	LedgerToken string `mapstructure:"LEDGER_TOKEN"`

	NatsURL        string `mapstructure:"NATS_URL"`
	EventNamespace string `mapstructure:"EVENT_NAMESPACE"`

	ConvergeIntervalMS  int    `mapstructure:"CONVERGE_INTERVAL_MS"`
	ConvergeMaxAttempts int    `mapstructure:"CONVERGE_MAX_ATTEMPTS"`
	ConvergeBackoff     bool   `mapstructure:"CONVERGE_BACKOFF"`
	ScrobbleRetryPolicy string `mapstructure:"SCROBBLE_RETRY_POLICY"`
	SchedulerEnabled    bool   `mapstructure:"SCHEDULER_ENABLED"`
}

const (
	RetryPolicyDrop    = "drop"
	RetryPolicyRequeue = "requeue"
)

var ConfigInstance Config

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT",
		"CORS_ALLOW_ORIGINS", "JWT_SECRET",
		"LEDGER_URL", "LEDGER_TOKEN",
		"NATS_URL", "EVENT_NAMESPACE",
		"CONVERGE_INTERVAL_MS", "CONVERGE_MAX_ATTEMPTS", "CONVERGE_BACKOFF",
		"SCROBBLE_RETRY_POLICY", "SCHEDULER_ENABLED",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	applyDefaults(&config)

	err := validateConfig(config, log)
	if err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config",
		"environment", config.Environment,
		"ledgerURL", config.LedgerURL,
		"natsURL", config.NatsURL,
		"namespace", config.EventNamespace,
		"retryPolicy", config.ScrobbleRetryPolicy,
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func applyDefaults(config *Config) {
	if config.EventNamespace == "" {
		config.EventNamespace = "soundtrace"
	}
	if config.ConvergeIntervalMS <= 0 {
		config.ConvergeIntervalMS = 1000
	}
	if config.ConvergeMaxAttempts <= 0 {
		config.ConvergeMaxAttempts = 30
	}
	if config.ScrobbleRetryPolicy == "" {
		config.ScrobbleRetryPolicy = RetryPolicyDrop
	}
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.LedgerURL == "" {
		return log.ErrMsg("Fatal error: LEDGER_URL is required")
	}

	if config.NatsURL == "" {
		return log.ErrMsg("Fatal error: NATS_URL is required")
	}

	if config.ScrobbleRetryPolicy != RetryPolicyDrop &&
		config.ScrobbleRetryPolicy != RetryPolicyRequeue {
		return log.Error(
			"Fatal error: invalid scrobble retry policy",
			"policy", config.ScrobbleRetryPolicy,
		)
	}

	ConfigInstance = config
	return nil
}
