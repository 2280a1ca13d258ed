package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"

	LockerMemory   = "memory"
	LockerRedis    = "redis"
	LockerPostgres = "postgres"
)

type Config struct {
	Port                  int      `yaml:"port"`
	SecretKey             string   `yaml:"secret_key"`
	StoreDriver           string   `yaml:"store_driver"`
	DatabaseURL           string   `yaml:"database_url"`
	SQLitePath            string   `yaml:"sqlite_path"`
	Locker                string   `yaml:"locker"`
	RedisAddr             string   `yaml:"redis_addr"`
	KafkaBrokers          []string `yaml:"kafka_brokers,omitempty"`
	KafkaTopic            string   `yaml:"kafka_topic"`
	MongoURI              string   `yaml:"mongo_uri"`
	MongoDatabase         string   `yaml:"mongo_database"`
	S3Bucket              string   `yaml:"s3_bucket"`
	S3Region              string   `yaml:"s3_region"`
	S3Endpoint            string   `yaml:"s3_endpoint"`
	S3PathStyle           bool     `yaml:"s3_path_style"`
	S3AccessKeyID         string   `yaml:"s3_access_key_id"`
	S3SecretAccessKey     string   `yaml:"s3_secret_access_key"`
	LokiURL               string   `yaml:"loki_url"`
	LogLevel              string   `yaml:"log_level"`
	OtelEndpoint          string   `yaml:"otel_endpoint"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
	BcryptCost            int      `yaml:"bcrypt_cost"`
}

func Default() Config {
	return Config{
		Port:                  3001,
		SecretKey:             "secret-dev-key",
		StoreDriver:           StoreMemory,
		SQLitePath:            "closet.db",
		Locker:                LockerMemory,
		KafkaTopic:            "reservation-events",
		MongoDatabase:         "instrument_closet",
		S3Region:              "us-east-1",
		LogLevel:              "info",
		RequestTimeoutSeconds: 30,
		BcryptCost:            12,
	}
}

// Load reads the optional YAML file at path and then applies environment
// overrides looked up through getenv.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func FromEnv(path string) (Config, error) {
	return Load(path, os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"SECRET_KEY":                  &c.SecretKey,
		"STORE_DRIVER":                &c.StoreDriver,
		"DATABASE_URL":                &c.DatabaseURL,
		"SQLITE_PATH":                 &c.SQLitePath,
		"LOCKER":                      &c.Locker,
		"REDIS_ADDR":                  &c.RedisAddr,
		"KAFKA_TOPIC":                 &c.KafkaTopic,
		"MONGO_URI":                   &c.MongoURI,
		"MONGO_DATABASE":              &c.MongoDatabase,
		"S3_BUCKET":                   &c.S3Bucket,
		"S3_REGION":                   &c.S3Region,
		"S3_ENDPOINT":                 &c.S3Endpoint,
		"S3_ACCESS_KEY_ID":            &c.S3AccessKeyID,
		"S3_SECRET_ACCESS_KEY":        &c.S3SecretAccessKey,
		"LOKI_URL":                    &c.LokiURL,
		"LOG_LEVEL":                   &c.LogLevel,
		"OTEL_EXPORTER_OTLP_ENDPOINT": &c.OtelEndpoint,
	}
	for name, dst := range strs {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PORT":                    &c.Port,
		"REQUEST_TIMEOUT_SECONDS": &c.RequestTimeoutSeconds,
		"BCRYPT_COST":             &c.BcryptCost,
	}
	for name, dst := range ints {
		v := getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", name, v)
		}
		*dst = n
	}

	if v := getenv("S3_PATH_STYLE"); v != "" {
		c.S3PathStyle = strings.EqualFold(v, "true") || v == "1"
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = splitList(v)
	}
	if c.DatabaseURL == "" && getenv("DB_USER") != "" {
		c.DatabaseURL = databaseURL(getenv("DB_USER"), getenv("DB_PASSWORD"), getenv("DB_PORT"))
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	switch c.Locker {
	case LockerMemory:
	case LockerRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis locker"))
		}
	case LockerPostgres:
		if c.StoreDriver != StorePostgres {
			errs = append(errs, errors.New("the postgres locker needs STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LOCKER %q", c.Locker))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.RequestTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT_SECONDS must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d out of range 4..31", c.BcryptCost))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY must not be empty"))
	}
	return errors.Join(errs...)
}

// DSN returns the data source name for the configured SQL store.
func (c Config) DSN() string {
	if c.StoreDriver == StoreSQLite {
		return c.SQLitePath
	}
	return c.DatabaseURL
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func databaseURL(user, password, port string) string {
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(user, password),
		Host:   "localhost:" + port,
		Path:   "/instrument_closet",
	}
	return u.String()
}
