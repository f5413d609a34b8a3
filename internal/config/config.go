package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "config/local.yml"

// Config holds all the configuration for the application.
type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer   `yaml:"http_server"`
	Database     `yaml:"database"`
	URLShortener `yaml:"url_shortener"`
	Sweeper      `yaml:"sweeper"`
	Redis        `yaml:"redis"`
	Geo          `yaml:"geo"`
	UserAgent    `yaml:"user_agent"`
	Logging      `yaml:"logging"`
	CORS         `yaml:"cors"`
}

// HTTPServer holds HTTP listener settings.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_SERVER_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_SERVER_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// Database selects and configures the durable store.
// Driver is one of "postgres", "mongo" or "none"; with "none" the service
// runs on the in-memory store only.
type Database struct {
	Driver          string        `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	DBName          string        `yaml:"dbname" env:"DB_NAME" env-default:"shortlinks"`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string        `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"100"`
	ConnMaxLifetime string        `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" env-default:"5s"`
	PingTimeout     time.Duration `yaml:"ping_timeout" env:"DB_PING_TIMEOUT" env-default:"2s"`
	MongoURI        string        `yaml:"mongo_uri" env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	MongoDatabase   string        `yaml:"mongo_database" env:"MONGODB_NAME" env-default:"url_shortener"`
}

// URLShortener holds service-specific configuration.
type URLShortener struct {
	// BaseURL prefixes returned shortlinks. Empty means "derive from request".
	BaseURL               string `yaml:"base_url" env:"BASE_URL"`
	DefaultValidity       int    `yaml:"default_validity" env:"DEFAULT_VALIDITY_MINUTES" env-default:"30"`
	MaxValidity           int    `yaml:"max_validity" env:"MAX_VALIDITY_MINUTES" env-default:"525600"`
	InitialCodeLength     int    `yaml:"initial_code_length" env:"INITIAL_CODE_LENGTH" env-default:"6"`
	MaxGenerationAttempts int    `yaml:"max_generation_attempts" env:"MAX_GENERATION_ATTEMPTS" env-default:"10"`
}

// Sweeper controls the periodic removal of expired short URLs.
type Sweeper struct {
	Enabled  bool          `yaml:"enabled" env:"SWEEPER_ENABLED"`
	Interval time.Duration `yaml:"interval" env:"SWEEPER_INTERVAL" env-default:"1m"`
	LockKey  string        `yaml:"lock_key" env:"SWEEPER_LOCK_KEY" env-default:"shortlink:sweep-lock"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"SWEEPER_LOCK_TTL" env-default:"50s"`
}

// Redis is used only for coordinating sweeps between replicas.
type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	URL     string `yaml:"url" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
}

// Geo points at a MaxMind City database. Empty path disables lookups.
type Geo struct {
	DBPath string `yaml:"db_path" env:"GEOIP_DB_PATH"`
}

// UserAgent points at a uap-core regexes.yaml. Empty path uses the bundled definitions.
type UserAgent struct {
	RegexesPath string `yaml:"regexes_path" env:"UA_REGEXES_PATH"`
}

// Logging configures the local and remote log outputs.
type Logging struct {
	Level  string  `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	File   LogFile `yaml:"file"`
	Remote Remote  `yaml:"remote"`
}

// LogFile is the rotating local log file.
type LogFile struct {
	Path       string `yaml:"path" env:"LOG_FILE_PATH"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_FILE_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_FILE_MAX_BACKUPS" env-default:"7"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_FILE_MAX_AGE_DAYS" env-default:"30"`
}

// Remote is the HTTP log collector that receives a copy of every entry.
type Remote struct {
	Enabled    bool          `yaml:"enabled" env:"REMOTE_LOG_ENABLED"`
	URL        string        `yaml:"url" env:"REMOTE_LOG_URL"`
	Stack      string        `yaml:"stack" env:"REMOTE_LOG_STACK" env-default:"backend"`
	Level      string        `yaml:"level" env:"REMOTE_LOG_LEVEL" env-default:"info"`
	Timeout    time.Duration `yaml:"timeout" env:"REMOTE_LOG_TIMEOUT" env-default:"5s"`
	Workers    int           `yaml:"workers" env:"REMOTE_LOG_WORKERS" env-default:"2"`
	BufferSize int           `yaml:"buffer_size" env:"REMOTE_LOG_BUFFER_SIZE" env-default:"256"`
}

// CORS lists the origins allowed to call the API.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// Load reads the configuration from the YAML file at path, then applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadEnv builds the configuration from environment variables and defaults only.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		cfg, err := Load(configPath)
		if err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
		return cfg
	}

	// If config file doesn't exist, use environment variables only
	log.Println("Config file not found, using environment variables only")
	cfg, err := LoadEnv()
	if err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return cfg
}
