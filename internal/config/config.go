package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Drivers soportados por el gateway.
const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		Driver string `yaml:"driver"`
		// URL + ServiceKey: driver supabase (PostgREST)
		URL        string `yaml:"url"`
		ServiceKey string `yaml:"service_key"`
		// DSN: driver postgres
		DSN string `yaml:"dsn"`
		// Path: driver sqlite (dev/local)
		Path string `yaml:"path"`

		ModelsTable  string `yaml:"models_table"`
		StagingTable string `yaml:"staging_table"`

		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Auth struct {
		APISecret string `yaml:"api_secret"`
	} `yaml:"auth"`

	Staging struct {
		ProcessLimit int `yaml:"process_limit"`
	} `yaml:"staging"`

	Rate struct {
		Enabled bool   `yaml:"enabled"`
		Backend string `yaml:"backend"` // memory | redis
		Limit   int    `yaml:"limit"`
		Window  string `yaml:"window"`
	} `yaml:"rate"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// Load lee config.yaml, aplica defaults, overrides por env y valida.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return finalize(&c)
}

// FromEnv arma la config sin YAML (deploys tipo Render: todo por env).
func FromEnv() (*Config, error) {
	var c Config
	return finalize(&c)
}

func finalize(c *Config) (*Config, error) {
	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSupabase
	}
	if c.Storage.ModelsTable == "" {
		c.Storage.ModelsTable = "ai_models_discovery"
	}
	if c.Storage.StagingTable == "" {
		c.Storage.StagingTable = "ai_models_staging"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "./data/modelgate.db"
	}
	if c.Staging.ProcessLimit <= 0 {
		c.Staging.ProcessLimit = 10
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.Limit == 0 {
		c.Rate.Limit = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	// validate string durations
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, err
		}
	}
	if c.Rate.Window != "" {
		if _, err := time.ParseDuration(c.Rate.Window); err != nil {
			return nil, err
		}
	}

	// Overrides por env + validación dura de secretos
	c.applyEnvOverrides()
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
// Los alias legacy (supabase_ai_models_discovery_*) vienen del deploy original
// en Render y se mantienen para no romper esos entornos.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	} else if v, ok := getEnvStr("PORT"); ok {
		// Render/Heroku style: solo el puerto
		c.Server.Addr = ":" + strings.TrimSpace(v)
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORE_URL"); ok {
		c.Storage.URL = v
	} else if v, ok := getEnvStr("supabase_ai_models_discovery_url"); ok {
		c.Storage.URL = v
	}
	if v, ok := getEnvStr("STORE_SERVICE_KEY"); ok {
		c.Storage.ServiceKey = v
	} else if v, ok := getEnvStr("supabase_ai_models_discovery_service_key"); ok {
		c.Storage.ServiceKey = v
	}
	if v, ok := getEnvStr("STORE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("STORE_SQLITE_PATH"); ok {
		c.Storage.Path = v
	}
	if v, ok := getEnvStr("STORE_MODELS_TABLE"); ok {
		c.Storage.ModelsTable = v
	}
	if v, ok := getEnvStr("STORE_STAGING_TABLE"); ok {
		c.Storage.StagingTable = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_CONNS"); ok {
		c.Storage.Postgres.MaxConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MIN_CONNS"); ok {
		c.Storage.Postgres.MinConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// AUTH
	if v, ok := getEnvStr("API_SECRET_KEY"); ok {
		c.Auth.APISecret = v
	} else if v, ok := getEnvStr("ai_models_discovery_api_secret_key"); ok {
		c.Auth.APISecret = v
	}

	// STAGING
	if v, ok := getEnvInt("STAGING_PROCESS_LIMIT"); ok {
		c.Staging.ProcessLimit = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_BACKEND"); ok {
		c.Rate.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvInt("RATE_LIMIT"); ok {
		c.Rate.Limit = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	// REDIS
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}

// Validate corta el arranque si falta algún secreto requerido por el driver.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.APISecret) == "" {
		return fmt.Errorf("config: auth.api_secret is required (API_SECRET_KEY)")
	}
	switch c.Storage.Driver {
	case DriverSupabase, "rest":
		if strings.TrimSpace(c.Storage.URL) == "" {
			return fmt.Errorf("config: storage.url is required for driver %s (STORE_URL)", c.Storage.Driver)
		}
		if strings.TrimSpace(c.Storage.ServiceKey) == "" {
			return fmt.Errorf("config: storage.service_key is required for driver %s (STORE_SERVICE_KEY)", c.Storage.Driver)
		}
	case DriverPostgres, "pg", "postgresql":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.dsn is required for driver %s (STORE_DSN)", c.Storage.Driver)
		}
	case DriverSQLite, "sqlite3":
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("config: storage.path is required for driver %s (STORE_SQLITE_PATH)", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// HasStoreURL reporta si el locator del datastore está presente.
// Para postgres el DSN cumple ese rol; para sqlite, el path.
func (c *Config) HasStoreURL() bool {
	switch c.Storage.Driver {
	case DriverPostgres, "pg", "postgresql":
		return strings.TrimSpace(c.Storage.DSN) != ""
	case DriverSQLite, "sqlite3":
		return strings.TrimSpace(c.Storage.Path) != ""
	default:
		return strings.TrimSpace(c.Storage.URL) != ""
	}
}

// HasServiceKey reporta si la credencial del datastore está presente.
// En postgres/sqlite la credencial viaja dentro del DSN/path.
func (c *Config) HasServiceKey() bool {
	switch c.Storage.Driver {
	case DriverPostgres, "pg", "postgresql":
		return strings.TrimSpace(c.Storage.DSN) != ""
	case DriverSQLite, "sqlite3":
		return true
	default:
		return strings.TrimSpace(c.Storage.ServiceKey) != ""
	}
}

// HasAPISecret reporta si el secreto del gateway está presente.
func (c *Config) HasAPISecret() bool {
	return strings.TrimSpace(c.Auth.APISecret) != ""
}

// Port devuelve el puerto efectivo de escucha ("8080" para ":8080").
func (c *Config) Port() string {
	addr := strings.TrimSpace(c.Server.Addr)
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i+1:]
	}
	return addr
}

// RateWindow parsea rate.window (ya validado en Load).
func (c *Config) RateWindow() time.Duration {
	d, err := time.ParseDuration(c.Rate.Window)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}
