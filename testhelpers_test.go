//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/SwiftWash/service-booking/internal/application"
	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	bookingEvents "github.com/SwiftWash/service-booking/internal/events"
	"github.com/SwiftWash/service-booking/internal/notification"
	"github.com/SwiftWash/service-booking/internal/repository"
	"github.com/SwiftWash/service-booking/pkg/kafka"
)

var adminActor = bookingDomain.Actor{Kind: bookingDomain.ActorAdmin, ID: "integration"}

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// serviceStack holds wired-up service components.
type serviceStack struct {
	Bookings        *application.BookingService
	Workers         *application.WorkerService
	Consumer        *bookingEvents.PaymentEventConsumer
	CleanupProducer func()
}

// setupPostgres starts a PostgreSQL container and returns a migrated GORM DB.
func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_swiftwash",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_swiftwash sslmode=disable TimeZone=UTC", pgHost, pgPort.Port())

	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.BookingModel{},
		&repository.WorkerModel{},
		&repository.WorkerDailyEarningModel{},
	))

	return db, func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
}

// setupContainers starts PostgreSQL and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	db, cleanupPG := setupPostgres(t)

	// confluent-local runs KRaft without a separate controller.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, bookingEvents.TopicBookingEvents, bookingEvents.TopicPaymentEvents)

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup: func() {
			if err := kafkaContainer.Terminate(ctx); err != nil {
				t.Logf("failed to terminate Kafka container: %v", err)
			}
			cleanupPG()
		},
	}
}

// setupMongo starts a standalone MongoDB container and returns a fresh database.
func setupMongo(t *testing.T) (*mongo.Database, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start MongoDB container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return client.Ping(ctx, nil) == nil
	}, 30*time.Second, time.Second, "MongoDB not ready for connections")

	return client.Database("test_swiftwash"), func() {
		_ = client.Disconnect(ctx)
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate MongoDB container: %v", err)
		}
	}
}

// setupServiceStack wires the services over the given repositories.
// brokers may be empty, in which case nothing is published or consumed.
func setupServiceStack(
	t *testing.T,
	bookings bookingDomain.BookingRepository,
	workers workerDomain.WorkerRepository,
	brokers []string,
) *serviceStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	notifier := notification.NewDispatcher(notification.Config{Provider: notification.ProviderNoop}, logger)
	pricing := bookingDomain.NewStandardPricingStrategy()

	stack := &serviceStack{CleanupProducer: func() {}}
	var publisher application.EventPublisher
	if len(brokers) > 0 {
		producer := kafka.NewProducer(brokers, logger)
		publisher = producer
		stack.CleanupProducer = func() { _ = producer.Close() }
	}

	stack.Bookings = application.NewBookingService(bookings, workers, pricing, notifier, publisher, nil, "254", logger)
	stack.Workers = application.NewWorkerService(workers, bookings, "254", logger)

	if len(brokers) > 0 {
		groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
		stack.Consumer = bookingEvents.NewPaymentEventConsumer(brokers, groupID, stack.Bookings, logger)
	}

	t.Cleanup(stack.Bookings.WaitForBackground)
	return stack
}

// createConfirmedAssignment creates a worker and a confirmed saloon body wash
// assigned to them.
func createConfirmedAssignment(t *testing.T, stack *serviceStack) (bookingID, workerID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	w, err := stack.Workers.CreateWorker(ctx, application.CreateWorkerRequest{
		Name:     "Brian Kamau",
		Email:    fmt.Sprintf("brian-%s@swiftwash.test", uuid.New().String()[:8]),
		Phone:    "0700000001",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	bk, err := stack.Bookings.CreateBooking(ctx, application.CreateBookingRequest{
		CustomerName:  "Amina Otieno",
		Phone:         "0712345678",
		Location:      "Kilimani, Nairobi",
		VehicleClass:  string(bookingDomain.VehicleSaloon),
		ServiceType:   string(bookingDomain.ServiceBodyWash),
		ScheduledDate: time.Now().UTC().AddDate(0, 0, 1).Format(bookingDomain.DateLayout),
		TimeSlot:      "10:00",
	})
	require.NoError(t, err)

	_, err = stack.Bookings.TransitionStatus(ctx, bk.ID, bookingDomain.StatusConfirmed, "", adminActor)
	require.NoError(t, err)
	_, err = stack.Bookings.AssignWorker(ctx, bk.ID, w.ID, adminActor)
	require.NoError(t, err)

	return bk.ID, w.ID
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType, subject string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce.WithSubject(subject))
	require.NoError(t, err, "failed to publish event")
}

// waitForPaymentStatus polls the bookings table until the payment status matches.
func waitForPaymentStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expected string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if model.PaymentStatus == expected {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking payment status did not become %s", expected)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	time.Sleep(1 * time.Second)
}
