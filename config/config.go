package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration parameters read from environment variables.
type Config struct {
	// DBHost left empty runs the engine on the in-memory store.
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	MinHoursBetweenPosts int    `envconfig:"MIN_HOURS_BETWEEN_POSTS" default:"4"`
	DueSweepSchedule     string `envconfig:"DUE_SWEEP_SCHEDULE" default:"* * * * *"`
	AnalyticsSchedule    string `envconfig:"ANALYTICS_SCHEDULE" default:"0 6 * * *"`

	// UseMockData routes publishing and metrics fetching through the mock
	// implementations instead of real platform APIs.
	UseMockData bool `envconfig:"USE_MOCK_DATA" default:"true"`

	StratoS3Key    string `envconfig:"STRATO_S3_KEY"`
	StratoS3Secret string `envconfig:"STRATO_S3_SECRET"`
	StratoS3URL    string `envconfig:"STRATO_S3_URL"`
	StratoS3Region string `envconfig:"STRATO_S3_REGION"`
	StratoS3Bucket string `envconfig:"STRATO_S3_BUCKET"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// S3Configured reports whether the media bucket credentials are present.
func (c *Config) S3Configured() bool {
	return c.StratoS3Key != "" && c.StratoS3Secret != "" && c.StratoS3URL != "" && c.StratoS3Bucket != ""
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
