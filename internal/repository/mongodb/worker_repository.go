package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

const creditAttempts = 3

// WorkerRepository is the MongoDB implementation of worker.WorkerRepository.
type WorkerRepository struct {
	collection *mongo.Collection
}

// NewWorkerRepository creates a WorkerRepository on db's "workers" collection.
func NewWorkerRepository(db *mongo.Database) *WorkerRepository {
	return &WorkerRepository{collection: db.Collection("workers")}
}

// EnsureIndexes creates the unique email index.
func (r *WorkerRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create worker indexes: %w", err)
	}
	return nil
}

func (r *WorkerRepository) findOne(ctx context.Context, filter bson.M, key string) (*workerDomain.Worker, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoFindWorker")
	defer span.End()

	var doc workerDoc
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFoundError("Worker", key)
		}
		return nil, fail(span, err, "failed to find worker")
	}
	return doc.toDomain()
}

// FindByID retrieves a worker by ID.
func (r *WorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*workerDomain.Worker, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()}, id.String())
}

// FindByEmail retrieves a worker by login email.
func (r *WorkerRepository) FindByEmail(ctx context.Context, email string) (*workerDomain.Worker, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findOne(ctx, bson.M{"email": email}, email)
}

// List retrieves workers with pagination, newest first.
func (r *WorkerRepository) List(ctx context.Context, includeInactive bool, page, limit int) ([]*workerDomain.Worker, int64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoListWorkers")
	defer span.End()

	query := bson.M{}
	if !includeInactive {
		query["is_active"] = true
	}
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fail(span, err, "failed to count workers")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fail(span, err, "failed to list workers")
	}
	defer cursor.Close(ctx)

	workers := make([]*workerDomain.Worker, 0)
	for cursor.Next(ctx) {
		var doc workerDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fail(span, err, "failed to decode worker")
		}
		w, err := doc.toDomain()
		if err != nil {
			return nil, 0, err
		}
		workers = append(workers, w)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fail(span, err, "failed to read workers")
	}
	return workers, total, nil
}

// Save persists a new worker.
func (r *WorkerRepository) Save(ctx context.Context, w *workerDomain.Worker) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoSaveWorker")
	defer span.End()

	if _, err := r.collection.InsertOne(ctx, toWorkerDoc(w)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewConflictError(fmt.Sprintf("worker with email %s already exists", w.Email()))
		}
		return fail(span, err, "failed to save worker")
	}
	span.SetAttributes(attribute.String("worker.id", w.ID().String()))
	return nil
}

// Update persists profile changes with optimistic locking.
func (r *WorkerRepository) Update(ctx context.Context, w *workerDomain.Worker) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoUpdateWorker")
	defer span.End()

	doc := toWorkerDoc(w)
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "version": w.Version() - 1},
		bson.M{"$set": bson.M{
			"name":         doc.Name,
			"phone":        doc.Phone,
			"role":         doc.Role,
			"is_active":    doc.IsActive,
			"availability": doc.Availability,
			"job_requests": doc.JobRequests,
			"version":      doc.Version,
			"updated_at":   doc.UpdatedAt,
		}},
	)
	if err != nil {
		return fail(span, err, "failed to update worker")
	}
	if res.MatchedCount == 0 {
		return domain.NewConflictError("worker was modified by another transaction")
	}
	return nil
}

// CreditEarnings increments the total and the day's ledger entry. The entry is
// incremented in place when present and pushed otherwise; a lost race on the
// push is retried as an increment.
func (r *WorkerRepository) CreditEarnings(ctx context.Context, workerID uuid.UUID, amount int64, date string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoCreditEarnings")
	defer span.End()
	span.SetAttributes(
		attribute.String("worker.id", workerID.String()),
		attribute.Int64("earnings.amount", amount),
	)

	id := workerID.String()
	now := time.Now().UTC()
	for attempt := 0; attempt < creditAttempts; attempt++ {
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": id, "daily_earnings.date": date},
			bson.M{
				"$inc": bson.M{
					"total_earnings":                   amount,
					"daily_earnings.$.amount":          amount,
					"daily_earnings.$.tasks_completed": 1,
				},
				"$set": bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return fail(span, err, "failed to credit earnings")
		}
		if res.MatchedCount == 1 {
			return nil
		}

		res, err = r.collection.UpdateOne(ctx,
			bson.M{"_id": id, "daily_earnings.date": bson.M{"$ne": date}},
			bson.M{
				"$inc":  bson.M{"total_earnings": amount},
				"$push": bson.M{"daily_earnings": dailyEarningDoc{Date: date, Amount: amount, TasksCompleted: 1}},
				"$set":  bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return fail(span, err, "failed to credit earnings")
		}
		if res.MatchedCount == 1 {
			return nil
		}

		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fail(span, err, "failed to credit earnings")
		}
		if exists == 0 {
			return domain.NewNotFoundError("Worker", id)
		}
	}
	return fmt.Errorf("failed to credit earnings for worker %s after %d attempts", id, creditAttempts)
}

// SetCurrentBooking points the worker at bookingID.
func (r *WorkerRepository) SetCurrentBooking(ctx context.Context, workerID, bookingID uuid.UUID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": workerID.String()},
		bson.M{"$set": bson.M{"current_booking_id": bookingID.String()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set current booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewNotFoundError("Worker", workerID.String())
	}
	return nil
}

// ClearCurrentBooking unsets the current booking if it still equals bookingID.
func (r *WorkerRepository) ClearCurrentBooking(ctx context.Context, workerID, bookingID uuid.UUID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": workerID.String(), "current_booking_id": bookingID.String()},
		bson.M{"$unset": bson.M{"current_booking_id": ""}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear current booking: %w", err)
	}
	return nil
}
