package config

import (
	"vitalsky/internal/logger"

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
	WeatherAPIURL        string `mapstructure:"WEATHER_API_URL"`
	WeatherMaxAttempts   int    `mapstructure:"WEATHER_MAX_ATTEMPTS"`
	WeatherBatchSize     int    `mapstructure:"WEATHER_BATCH_SIZE"`
	DispatchConcurrency  int    `mapstructure:"DISPATCH_CONCURRENCY"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
	CronAuthSecret       string `mapstructure:"CRON_AUTH_SECRET"`
}

const (
	DefaultWeatherMaxAttempts  = 3
	DefaultWeatherBatchSize    = 20
	DefaultDispatchConcurrency = 10
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
		"CORS_ALLOW_ORIGINS",
		"WEATHER_API_URL", "WEATHER_MAX_ATTEMPTS", "WEATHER_BATCH_SIZE",
		"DISPATCH_CONCURRENCY", "SCHEDULER_ENABLED", "CRON_AUTH_SECRET",
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

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func applyDefaults(config *Config) {
	if config.WeatherMaxAttempts <= 0 {
		config.WeatherMaxAttempts = DefaultWeatherMaxAttempts
	}
	if config.WeatherBatchSize <= 0 {
		config.WeatherBatchSize = DefaultWeatherBatchSize
	}
	if config.DispatchConcurrency <= 0 {
		config.DispatchConcurrency = DefaultDispatchConcurrency
	}
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.DatabaseHost == "" {
		return log.ErrMsg("Fatal error: DB_HOST is required")
	}
	if config.DatabaseName == "" {
		return log.ErrMsg("Fatal error: DB_NAME is required")
	}
	if config.DatabaseUser == "" {
		return log.ErrMsg("Fatal error: DB_USER is required")
	}

	if config.WeatherAPIURL == "" {
		return log.ErrMsg("Fatal error: WEATHER_API_URL is required")
	}

	if config.CronAuthSecret == "" {
		return log.ErrMsg("Fatal error: CRON_AUTH_SECRET is required")
	}

	ConfigInstance = config
	return nil
}
