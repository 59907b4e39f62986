package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "swiftwash_booking", cfg.DBConfig.DBName)
	assert.Equal(t, "swiftwash_booking", cfg.MongoConfig.Database)
	assert.Empty(t, cfg.KafkaConfig.Brokers)
	assert.Equal(t, "log", cfg.SMSConfig.Provider)
	assert.Equal(t, "254", cfg.PhoneCountryCode)
	assert.Equal(t, ServiceName, cfg.ConsulConfig.ServiceName)
	assert.Equal(t, 8080, cfg.ConsulConfig.Port)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SWIFTWASH_SERVICE_PORT", "9090")
	t.Setenv("SWIFTWASH_STORE_DRIVER", "Mongo")
	t.Setenv("SWIFTWASH_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SWIFTWASH_SMS_PROVIDER", "webhook")
	t.Setenv("SWIFTWASH_SMS_WEBHOOK_URL", "http://sms.local/send")
	t.Setenv("SWIFTWASH_ADMIN_EMAIL", "Ops@SwiftWash.co.ke")
	t.Setenv("SWIFTWASH_PHONE_COUNTRY_CODE", "255")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, 9090, cfg.ConsulConfig.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, "webhook", cfg.SMSConfig.Provider)
	assert.Equal(t, "http://sms.local/send", cfg.SMSConfig.WebhookURL)
	assert.Equal(t, "ops@swiftwash.co.ke", cfg.AdminConfig.Email)
	assert.Equal(t, "255", cfg.PhoneCountryCode)
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	t.Setenv("SWIFTWASH_STORE_DRIVER", "dynamodb")

	_, err := Load()
	assert.Error(t, err)
}
