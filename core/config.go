package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address            string
		DebugHost          string
		JWTExpirationDelta time.Duration
		ReadTimeout        time.Duration
		WriteTimeout       time.Duration
		ShutdownTimeout    time.Duration
		BodyLimit          string
		AllowOrigins       []string
	}

	DatabaseConfig struct {
		Engine          string
		User            string
		Password        string
		AdminUser       string
		AdminPassword   string
		Host            string
		Port            string
		Name            string
		DisableTLS      bool
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
		QueryTimeout    time.Duration
	}

	Config struct {
		AppName      string
		Build        string
		Env          string
		Debug        bool
		TestMode     bool
		SecretKey    string
		LogLevel     string
		RollbarToken string
		SentryDSN    string
		Server       ServerConfig
		Database     DatabaseConfig
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// NewConfig reads the configuration for the environment named by $ENV (DEV by default).
// Values come from `config/.env.<env>` (optional) and from env vars prefixed with the env name, e.g. DEV_SECRET_KEY.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("app_name", "Darasa")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", false)
	v.SetDefault("test_mode", env == "TEST")
	v.SetDefault("secret_key", "x4v!k1o#8b2d@n9q0r7m*e-6s=1t_z%3f@h(w&j5y")
	v.SetDefault("log_level", "info")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("sentry_dsn", "")

	v.SetDefault("server_address", ":5000")
	v.SetDefault("server_debug_host", ":5001")
	v.SetDefault("server_jwt_expiration_delta", 7*24*time.Hour)
	v.SetDefault("server_read_timeout", 10*time.Second)
	v.SetDefault("server_write_timeout", 30*time.Second)
	v.SetDefault("server_shutdown_timeout", 10*time.Second)
	v.SetDefault("server_body_limit", "10M")
	v.SetDefault("server_allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("db_engine", "mysql")
	v.SetDefault("db_user", "darasa")
	v.SetDefault("db_password", "darasa")
	v.SetDefault("db_admin_user", "")
	v.SetDefault("db_admin_password", "")
	v.SetDefault("db_host", "127.0.0.1")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_name", "darasa")
	v.SetDefault("db_disable_tls", true)
	v.SetDefault("db_max_open_conns", 10)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", 30*time.Minute)
	v.SetDefault("db_query_timeout", 5*time.Second)

	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("app_name"),
		Build:        v.GetString("build"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("test_mode"),
		SecretKey:    v.GetString("secret_key"),
		LogLevel:     v.GetString("log_level"),
		RollbarToken: v.GetString("rollbar_token"),
		SentryDSN:    v.GetString("sentry_dsn"),
		Server: ServerConfig{
			Address:            v.GetString("server_address"),
			DebugHost:          v.GetString("server_debug_host"),
			JWTExpirationDelta: v.GetDuration("server_jwt_expiration_delta"),
			ReadTimeout:        v.GetDuration("server_read_timeout"),
			WriteTimeout:       v.GetDuration("server_write_timeout"),
			ShutdownTimeout:    v.GetDuration("server_shutdown_timeout"),
			BodyLimit:          v.GetString("server_body_limit"),
			AllowOrigins:       v.GetStringSlice("server_allow_origins"),
		},
		Database: DatabaseConfig{
			Engine:          v.GetString("db_engine"),
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			AdminUser:       v.GetString("db_admin_user"),
			AdminPassword:   v.GetString("db_admin_password"),
			Host:            v.GetString("db_host"),
			Port:            v.GetString("db_port"),
			Name:            v.GetString("db_name"),
			DisableTLS:      v.GetBool("db_disable_tls"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
			QueryTimeout:    v.GetDuration("db_query_timeout"),
		},
	}
}

// NewTestConfig returns the configuration used by tests; it never reads the environment.
func NewTestConfig() *Config {
	return &Config{
		AppName:   "Darasa",
		Build:     "test",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "secret",
		LogLevel:  "error",
		Server: ServerConfig{
			JWTExpirationDelta: 7 * 24 * time.Hour,
			ShutdownTimeout:    time.Second,
			BodyLimit:          "10M",
		},
		Database: DatabaseConfig{
			Engine:       "mysql",
			Name:         "darasa_test",
			MaxOpenConns: 10,
			QueryTimeout: 5 * time.Second,
		},
	}
}
