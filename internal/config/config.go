package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// NowLayout is the format of API_NOW.
const NowLayout = "2006-01-02 15:04:05"

// Report data sources.
const (
	SourceCSV   = "csv"
	SourceMySQL = "mysql"
)

// DBConfig holds MySQL connection settings.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// DSN returns a go-sql-driver/mysql DSN. With withDB false the DSN connects
// to the server without selecting a database.
func (d DBConfig) DSN(withDB bool) string {
	name := ""
	if withDB {
		name = d.Name
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true",
		d.User, d.Password, d.Host, d.Port, name)
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DB DBConfig

	SecretKey     string
	TokenLifetime time.Duration
	AdminPassword string

	// Now pins the API's notion of "now" for fixed demo datasets. Nil means
	// the wall clock.
	Now *time.Time

	ReadingsCSV  string
	WeatherCSV   string
	CSVDir       string
	ReportSource string
	ReportOutDir string

	// Ollama narrative generation.
	OllamaURL         string
	OllamaModel       string
	OllamaTimeout     time.Duration
	NarrativeAttempts int

	// Report publishing. Empty brokers or URL disable the sink.
	KafkaBrokers     []string
	KafkaReportTopic string

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honoured; variables
// already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(sharedcfg.EnvOrDefault("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	dbPort, err := strconv.Atoi(sharedcfg.EnvOrDefault("DB_PORT", "3306"))
	if err != nil || dbPort <= 0 {
		return nil, errors.New("invalid DB_PORT")
	}

	tokenLifetime, err := parsePositiveDuration("TOKEN_LIFETIME", "1h")
	if err != nil {
		return nil, err
	}
	ollamaTimeout, err := parsePositiveDuration("OLLAMA_TIMEOUT", "120s")
	if err != nil {
		return nil, err
	}

	attempts, err := strconv.Atoi(sharedcfg.EnvOrDefault("NARRATIVE_ATTEMPTS", "3"))
	if err != nil || attempts < 1 || attempts > 10 {
		return nil, errors.New("invalid NARRATIVE_ATTEMPTS: must be between 1 and 10")
	}

	now, err := parseNow()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":5001"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DB: DBConfig{
			Host:     sharedcfg.EnvOrDefault("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     sharedcfg.EnvOrDefault("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     sharedcfg.EnvOrDefault("DB_NAME", "bems_db"),
		},

		SecretKey:     sharedcfg.EnvOrDefault("SECRET_KEY", "your_secret_key"),
		TokenLifetime: tokenLifetime,
		AdminPassword: sharedcfg.EnvOrDefault("ADMIN_PASSWORD", "admin123"),
		Now:           now,

		ReadingsCSV:  sharedcfg.EnvOrDefault("READINGS_CSV", "../data/house_3538.csv"),
		WeatherCSV:   sharedcfg.EnvOrDefault("WEATHER_CSV", "../data/weather_data.csv"),
		CSVDir:       sharedcfg.EnvOrDefault("CSV_FILE_PATH", "../data/"),
		ReportSource: sharedcfg.EnvOrDefault("REPORT_SOURCE", SourceCSV),
		ReportOutDir: sharedcfg.EnvOrDefault("REPORT_OUT_DIR", "."),

		OllamaURL:         ollamaURL(),
		OllamaModel:       sharedcfg.EnvOrDefault("OLLAMA_MODEL", "energy_reporter2"),
		OllamaTimeout:     ollamaTimeout,
		NarrativeAttempts: attempts,

		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "daily-energy-reports"),

		InfluxURL:    os.Getenv("INFLUXDB_URL"),
		InfluxToken:  os.Getenv("INFLUXDB_TOKEN"),
		InfluxOrg:    sharedcfg.EnvOrDefault("INFLUXDB_ORG", "home"),
		InfluxBucket: sharedcfg.EnvOrDefault("INFLUXDB_BUCKET", "house-energy"),
	}
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(raw)
	}

	if cfg.ReportSource != SourceCSV && cfg.ReportSource != SourceMySQL {
		return nil, fmt.Errorf("invalid REPORT_SOURCE %q: must be %q or %q", cfg.ReportSource, SourceCSV, SourceMySQL)
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("SECRET_KEY is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaReportTopic == "" {
		return nil, errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.InfluxURL != "" && cfg.InfluxToken == "" {
		return nil, errors.New("INFLUXDB_URL is set but INFLUXDB_TOKEN is not")
	}

	return cfg, nil
}

// KafkaEnabled reports whether reports are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// InfluxEnabled reports whether summaries are written to InfluxDB.
func (c *Config) InfluxEnabled() bool { return c.InfluxURL != "" }

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNow() (*time.Time, error) {
	raw := os.Getenv("API_NOW")
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(NowLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid API_NOW: expected %q", NowLayout)
	}
	return &t, nil
}

// ollamaURL prefers OLLAMA_URL, then builds one from MY_IP on the default
// Ollama port.
func ollamaURL() string {
	if u := os.Getenv("OLLAMA_URL"); u != "" {
		return u
	}
	host := sharedcfg.EnvOrDefault("MY_IP", "localhost")
	return "http://" + host + ":11434"
}
