package config

import (
	"errors"
	"os"
	"time"

	"holdem-server/internal/util"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config provides configuration for the hold'em server
type Config struct {
	loaded         bool
	Store          Store  `yaml:"store"`
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`
	RecaptchaSecret string `yaml:"recaptchaSecret" envconfig:"recaptcha_secret"`
	NATS            NATS   `yaml:"nats"`
	Room            Room   `yaml:"room"`
	HTTP            HTTP   `yaml:"http"`
	Log             struct {
		Level             string `yaml:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
}

// Store selects the storage backend
type Store struct {
	Driver string `yaml:"driver"`
}

// NATS configures the optional hand event stream
// An empty URL disables it.
type NATS struct {
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Subject string `yaml:"subject"`
}

// Room configures the poker rooms
type Room struct {
	Names               []string `yaml:"names"`
	MaxPlayers          int      `yaml:"maxPlayers" envconfig:"max_players"`
	StartingMoney       int      `yaml:"startingMoney" envconfig:"starting_money"`
	TurnTimeout         int      `yaml:"turnTimeout" envconfig:"turn_timeout"`
	Serialize           bool     `yaml:"serialize"`
	HighRollerThreshold int      `yaml:"highRollerThreshold" envconfig:"high_roller_threshold"`
	Flag                string   `yaml:"flag"`
}

// TurnTimeoutDuration returns the turn timeout, zero when disabled
func (r Room) TurnTimeoutDuration() time.Duration {
	if r.TurnTimeout <= 0 {
		return 0
	}

	return time.Duration(r.TurnTimeout) * time.Second
}

// HTTP configures the web server
type HTTP struct {
	Addr        string   `yaml:"addr"`
	RateLimit   int      `yaml:"rateLimit" envconfig:"rate_limit"`
	CORSOrigins []string `yaml:"corsOrigins" envconfig:"cors_origins"`
}

var config Config

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() Config {
	var cfg Config
	cfg.Store.Driver = DriverMemory
	cfg.PGDSN = "postgres://postgres@localhost:5432/postgres?sslmode=disable"
	cfg.MigrationsPath = "sql"
	cfg.NATS.Subject = "holdem.events"
	cfg.Room = Room{
		Names:               []string{"Room 1", "Room 2", "Room 3", "Room 4", "Room 5", "Room 6"},
		MaxPlayers:          6,
		StartingMoney:       100,
		TurnTimeout:         60,
		Serialize:           true,
		HighRollerThreshold: 1000000,
	}
	cfg.HTTP = HTTP{
		Addr:      ":5000",
		RateLimit: 10,
	}
	cfg.Log.Level = "info"

	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A .env file and the YAML file are both optional; the environment wins over both.
func Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	config = DefaultConfig()

	configFile := util.Getenv("HOLDEM_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	default:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	}

	if err := envconfig.Process("holdem", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
