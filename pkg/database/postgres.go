package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgresConfig holds the parameters for a PostgreSQL connection.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the key/value connection string used by the GORM driver.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// DatabaseURL returns the URL form used by golang-migrate.
func (c PostgresConfig) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

// Connect opens a GORM connection, retrying while the database comes up.
func Connect(cfg PostgresConfig, log *zap.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					sqlDB.SetMaxOpenConns(25)
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetConnMaxLifetime(30 * time.Minute)
					log.Info("connected to PostgreSQL",
						zap.String("host", cfg.Host),
						zap.String("database", cfg.DBName),
					)
					return db, nil
				}
			} else {
				err = dbErr
			}
		}

		log.Warn("PostgreSQL not ready",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", connectAttempts),
			zap.Error(err),
		)
		if attempt < connectAttempts {
			time.Sleep(connectDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", connectAttempts, err)
}
