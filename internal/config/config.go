package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis  `yaml:"redis"`
	Game     Game   `yaml:"game"`
}

type Redis struct {
	Host        string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port        string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	SnapshotTTL time.Duration `yaml:"snapshot-ttl" env:"REDIS_SNAPSHOT_TTL" env-default:"30m"`
}

type Game struct {
	OpponentDelay      time.Duration `yaml:"opponent-delay" env:"GAME_OPPONENT_DELAY" env-default:"600ms"`
	DefaultMode        string        `yaml:"default-mode" env:"GAME_DEFAULT_MODE" env-default:"pvp"`
	DefaultDifficulty  string        `yaml:"default-difficulty" env:"GAME_DEFAULT_DIFFICULTY" env-default:"medium"`
	SessionIdleTimeout time.Duration `yaml:"session-idle-timeout" env:"GAME_SESSION_IDLE_TIMEOUT" env-default:"30m"`
	JanitorInterval    time.Duration `yaml:"janitor-interval" env:"GAME_JANITOR_INTERVAL" env-default:"1m"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the yaml file at path; environment variables override it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
