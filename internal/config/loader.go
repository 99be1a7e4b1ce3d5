package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/itgovern/carga/internal/db"
)

// Config carries everything the server needs to start.
type Config struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string
	// BackendURL is the base URL of the governance API the pipeline
	// submits records to.
	BackendURL string
	// RequestTimeout bounds each outgoing backend request.
	RequestTimeout time.Duration
	// SubmitWorkers > 1 enables the pooled submission strategy.
	SubmitWorkers int

	// DatabaseEnabled turns run-history persistence on.
	DatabaseEnabled bool
	Database        db.Config
	MigrationsPath  string
}

func defaultConfig() Config {
	return Config{
		ListenAddr:     ":8080",
		BackendURL:     "http://localhost:3000",
		RequestTimeout: 30 * time.Second,
		SubmitWorkers:  1,
		Database:       db.DefaultConfig(),
		MigrationsPath: "migrations",
	}
}

// Load reads config.yaml from configPath, with environment overrides
// (CARGA_SERVER_ADDR, CARGA_BACKEND_URL and so on). A missing file is
// fine, defaults and the environment cover everything.
func Load(configPath string) (Config, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("CARGA")

	v.BindEnv("server.addr")
	v.BindEnv("backend.url")
	v.BindEnv("backend.timeout")
	v.BindEnv("backend.workers")
	v.BindEnv("database.enabled")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("database.migrations")

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("server.addr") {
		cfg.ListenAddr = v.GetString("server.addr")
	}
	if v.IsSet("backend.url") {
		cfg.BackendURL = v.GetString("backend.url")
	}
	if v.IsSet("backend.timeout") {
		cfg.RequestTimeout = v.GetDuration("backend.timeout")
	}
	if v.IsSet("backend.workers") {
		cfg.SubmitWorkers = v.GetInt("backend.workers")
	}
	if v.IsSet("database.enabled") {
		cfg.DatabaseEnabled = v.GetBool("database.enabled")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("database.migrations") {
		cfg.MigrationsPath = v.GetString("database.migrations")
	}

	return cfg, nil
}
