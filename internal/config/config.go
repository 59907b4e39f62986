package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SwiftWash/service-booking/internal/application"
	"github.com/SwiftWash/service-booking/internal/notification"
	"github.com/SwiftWash/service-booking/pkg/config"
	"github.com/SwiftWash/service-booking/pkg/discovery"
	"github.com/SwiftWash/service-booking/pkg/phone"
	"github.com/SwiftWash/service-booking/pkg/telemetry"
)

// Storage backends selectable with STORE_DRIVER.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

// ServiceName identifies this service in logs, traces and the registry.
const ServiceName = "service-booking"

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port             string
	AppEnv           string
	StoreDriver      string
	DBConfig         config.DatabaseConfig
	MongoConfig      config.MongoConfig
	JWTConfig        config.JWTConfig
	KafkaConfig      config.KafkaConfig
	SMSConfig        notification.Config
	AdminConfig      application.AdminCredentials
	PhoneCountryCode string
	TelemetryConfig  telemetry.Config
	ConsulConfig     discovery.Config
}

// Load reads configuration from SWIFTWASH_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("SWIFTWASH")
	if err != nil {
		return nil, err
	}
	v.SetDefault("STORE_DRIVER", StorePostgres)
	v.SetDefault("DB_NAME", "swiftwash_booking")
	v.SetDefault("MONGO_DATABASE", "swiftwash_booking")
	v.SetDefault("SMS_PROVIDER", notification.ProviderLog)
	v.SetDefault("SMS_SENDER_ID", "SWIFTWASH")
	v.SetDefault("PHONE_COUNTRY_CODE", phone.DefaultCountryCode)
	// Kafka is opt-in; without brokers nothing is published or consumed.
	v.SetDefault("KAFKA_BROKERS", "")

	port := config.GetServicePort(v, "SERVICE_PORT")
	driver := strings.ToLower(v.GetString("STORE_DRIVER"))
	switch driver {
	case StorePostgres, StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", driver)
	}

	return &ServiceConfig{
		Port:        port,
		AppEnv:      config.GetAppEnv(v),
		StoreDriver: driver,
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		MongoConfig: config.LoadMongoConfig(v, "MONGO_DATABASE"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		SMSConfig: notification.Config{
			Provider:     v.GetString("SMS_PROVIDER"),
			WebhookURL:   v.GetString("SMS_WEBHOOK_URL"),
			WebhookToken: v.GetString("SMS_WEBHOOK_TOKEN"),
			SenderID:     v.GetString("SMS_SENDER_ID"),
		},
		AdminConfig: application.AdminCredentials{
			Email:        strings.ToLower(v.GetString("ADMIN_EMAIL")),
			PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		},
		PhoneCountryCode: v.GetString("PHONE_COUNTRY_CODE"),
		TelemetryConfig: telemetry.Config{
			Endpoint: v.GetString("OTEL_ENDPOINT"),
			Insecure: v.GetBool("OTEL_INSECURE"),
		},
		ConsulConfig: discovery.Config{
			Address:        v.GetString("CONSUL_ADDRESS"),
			ServiceName:    ServiceName,
			ServiceAddress: v.GetString("SERVICE_ADDRESS"),
			Port:           portNumber(port),
		},
	}, nil
}

// portNumber extracts the numeric port from a listen address such as ":8080".
func portNumber(addr string) int {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		addr = addr[i+1:]
	}
	n, _ := strconv.Atoi(addr)
	return n
}
