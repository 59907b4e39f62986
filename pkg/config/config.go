package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string
	Database string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Load reads an optional .env file and returns a viper instance bound to
// environment variables carrying the given prefix.
func Load(prefix string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")

	return v, nil
}

// GetServicePort returns the listen address for key, defaulting to :8080.
func GetServicePort(v *viper.Viper, key string) string {
	port := v.GetString(key)
	if port == "" {
		return ":8080"
	}
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

// GetAppEnv returns the application environment name.
func GetAppEnv(v *viper.Viper) string {
	return v.GetString("APP_ENV")
}

// LoadDatabaseConfig reads PostgreSQL settings. dbNameKey lets each service
// choose its own database name variable.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey string) DatabaseConfig {
	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString(dbNameKey),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
}

// LoadMongoConfig reads MongoDB settings.
func LoadMongoConfig(v *viper.Viper, dbNameKey string) MongoConfig {
	return MongoConfig{
		URI:      v.GetString("MONGO_URI"),
		Database: v.GetString(dbNameKey),
	}
}

// LoadJWTConfig reads token settings.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		AccessTTL:  v.GetDuration("JWT_ACCESS_TTL"),
		RefreshTTL: v.GetDuration("JWT_REFRESH_TTL"),
	}
}

// LoadKafkaConfig reads broker settings. KAFKA_BROKERS is comma separated.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{
		Brokers:     brokers,
		GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
	}
}
