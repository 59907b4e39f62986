package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

const tracerName = "service-booking/mongodb"

func fail(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return fmt.Errorf("%s: %w", msg, err)
}

// BookingRepository is the MongoDB implementation of booking.BookingRepository.
type BookingRepository struct {
	collection *mongo.Collection
}

// NewBookingRepository creates a BookingRepository on db's "bookings" collection.
func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{collection: db.Collection("bookings")}
}

// EnsureIndexes creates the lookup indexes used by the repository.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_worker_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *BookingRepository) findOne(ctx context.Context, filter bson.M, key string) (*bookingDomain.Booking, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoFindBooking")
	defer span.End()
	span.SetAttributes(attribute.String("booking.key", key))

	var doc bookingDoc
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFoundError("Booking", key)
		}
		return nil, fail(span, err, "failed to find booking")
	}
	return doc.toDomain()
}

// FindByID retrieves a booking by its unique identifier.
func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()}, id.String())
}

// FindByNumber retrieves a booking by its booking number.
func (r *BookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	return r.findOne(ctx, bson.M{"booking_number": number}, number)
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*bookingDomain.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookings := make([]*bookingDomain.Booking, 0)
	for cursor.Next(ctx) {
		var doc bookingDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		bk, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, bk)
	}
	return bookings, cursor.Err()
}

// FindByPhone retrieves every booking stored under any of the phone variants.
func (r *BookingRepository) FindByPhone(ctx context.Context, phoneVariants []string) ([]*bookingDomain.Booking, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoFindBookingsByPhone")
	defer span.End()

	if len(phoneVariants) == 0 {
		return []*bookingDomain.Booking{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	bookings, err := r.find(ctx, bson.M{"phone": bson.M{"$in": phoneVariants}}, opts)
	if err != nil {
		return nil, fail(span, err, "failed to find bookings by phone")
	}
	span.SetAttributes(attribute.Int("booking.count", len(bookings)))
	return bookings, nil
}

// FindByWorkerID retrieves bookings assigned to a worker with pagination.
func (r *BookingRepository) FindByWorkerID(ctx context.Context, workerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.List(ctx, bookingDomain.ListFilter{WorkerID: &workerID}, page, limit)
}

// CountActiveByWorker counts the worker's confirmed and in-progress bookings.
func (r *BookingRepository) CountActiveByWorker(ctx context.Context, workerID uuid.UUID) (int64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoCountActiveByWorker")
	defer span.End()

	statuses := make([]string, 0, 2)
	for _, s := range bookingDomain.ActiveStatuses() {
		statuses = append(statuses, string(s))
	}
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"assigned_worker_id": workerID.String(),
		"status":             bson.M{"$in": statuses},
	})
	if err != nil {
		return 0, fail(span, err, "failed to count active worker bookings")
	}
	return count, nil
}

// List retrieves bookings matching filter with pagination.
func (r *BookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoListBookings")
	defer span.End()

	query := bson.M{}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.Date != nil {
		query["scheduled_date"] = filter.Date.Format(bookingDomain.DateLayout)
	}
	if filter.WorkerID != nil {
		query["assigned_worker_id"] = filter.WorkerID.String()
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fail(span, err, "failed to count bookings")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	bookings, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, fail(span, err, "failed to list bookings")
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *BookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoCountByStatus")
	defer span.End()

	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, fail(span, err, "failed to count by status")
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fail(span, err, "failed to decode status count")
		}
		counts[row.Status] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fail(span, err, "failed to read status counts")
	}
	return counts, nil
}

// Save persists a new booking.
func (r *BookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoSaveBooking")
	defer span.End()

	if _, err := r.collection.InsertOne(ctx, toBookingDoc(bk)); err != nil {
		return fail(span, err, "failed to save booking")
	}
	span.SetAttributes(
		attribute.String("booking.id", bk.ID().String()),
		attribute.String("booking.number", bk.BookingNumber()),
	)
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *BookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoUpdateBooking")
	defer span.End()

	doc := toBookingDoc(bk)
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": bk.Version() - 1}, doc)
	if err != nil {
		return fail(span, err, "failed to update booking")
	}
	if res.MatchedCount == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// UpdateStatus applies change only if the document is still in change.From.
func (r *BookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking, change bookingDomain.StatusChange) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MongoUpdateBookingStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("booking.id", bk.ID().String()),
		attribute.String("status.from", string(change.From)),
		attribute.String("status.to", string(change.To)),
	)

	doc := toBookingDoc(bk)
	set := bson.M{
		"status":     string(change.To),
		"updated_at": change.At,
	}
	switch change.To {
	case bookingDomain.StatusDone:
		set["completed_at"] = doc.CompletedAt
	case bookingDomain.StatusDelivered:
		set["delivered_at"] = doc.DeliveredAt
	case bookingDomain.StatusRejected:
		set["rejection_reason"] = doc.RejectionReason
		set["rejected_by"] = doc.RejectedBy
		set["rejected_at"] = doc.RejectedAt
	case bookingDomain.StatusCancelled:
		set["cancellation_reason"] = doc.CancellationReason
		set["cancelled_by"] = doc.CancelledBy
		set["cancelled_at"] = doc.CancelledAt
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "status": string(change.From)},
		bson.M{
			"$set":  set,
			"$push": bson.M{"modifications": toModificationDoc(change.Modification)},
			"$inc":  bson.M{"version": 1},
		},
	)
	if err != nil {
		return fail(span, err, "failed to update booking status")
	}
	if res.MatchedCount == 0 {
		return domain.NewStaleStateError("Booking", doc.ID, string(change.From))
	}
	return nil
}
