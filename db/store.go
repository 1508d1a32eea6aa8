package db

import (
	"context"
	"time"

	adb "github.com/mongodb/anser/db"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	idKey = "_id"

	packageName = "github.com/evergreen-ci/fmtasks/db"

	collectionAttribute = "fmtasks.db.collection"
	operationAttribute  = "fmtasks.db.operation"
	outcomeAttribute    = "fmtasks.db.outcome"

	operationsInstrument = "fmtasks.db.operations"
	durationInstrument   = "fmtasks.db.operation.duration"
)

var (
	tracer = otel.GetTracerProvider().Tracer(packageName)
	meter  = otel.GetMeterProvider().Meter(packageName)

	operationCounter, _ = meter.Int64Counter(operationsInstrument,
		metric.WithDescription("Number of store operations"))
	operationDuration, _ = meter.Float64Histogram(durationInstrument,
		metric.WithUnit("s"),
		metric.WithDescription("Duration of store operations"))
)

// Storage is a collection of documents addressed by their _id. Each
// operation acts on exactly one document.
type Storage interface {
	// FindOneId decodes the document with the given id into out. If
	// no document matches, the error satisfies adb.ResultsNotFound.
	FindOneId(ctx context.Context, id any, out any) error
	// Insert stores doc and returns its id. The store assigns the id
	// if doc does not carry one.
	Insert(ctx context.Context, doc any) (any, error)
	// UpdateId applies update to the document with the given id.
	UpdateId(ctx context.Context, id any, update any) error
	// RemoveId deletes the document with the given id.
	RemoveId(ctx context.Context, id any) error
}

// Store is the Storage implementation backed by a single MongoDB
// collection. It holds no state beyond the collection handle: there is
// no caching and no operation is retried.
type Store struct {
	coll *mongo.Collection
}

// NewStore returns a Store bound to the given collection.
func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Name returns the collection's name.
func (s *Store) Name() string { return s.coll.Name() }

// track starts a span for op. The returned function ends it and
// records the operation's outcome.
func (s *Store) track(ctx context.Context, op string) (context.Context, func(error)) {
	attrs := []attribute.KeyValue{
		attribute.String(collectionAttribute, s.coll.Name()),
		attribute.String(operationAttribute, op),
	}
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(attrs...))
	start := time.Now()

	return ctx, func(err error) {
		defer span.End()

		outcome := operationOutcome(err)
		if outcome == outcomeFailed {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		opts := metric.WithAttributes(append(attrs, attribute.String(outcomeAttribute, outcome))...)
		operationCounter.Add(ctx, 1, opts)
		operationDuration.Record(ctx, time.Since(start).Seconds(), opts)
	}
}

const (
	outcomeOK          = "ok"
	outcomeNotFound    = "not_found"
	outcomeDuplicate   = "duplicate_key"
	outcomeUnavailable = "unavailable"
	outcomeFailed      = "failed"
)

func operationOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case adb.ResultsNotFound(err):
		return outcomeNotFound
	case IsDuplicateKey(err):
		return outcomeDuplicate
	case IsUnavailable(err):
		return outcomeUnavailable
	default:
		return outcomeFailed
	}
}

func (s *Store) FindOneId(ctx context.Context, id any, out any) (err error) {
	ctx, done := s.track(ctx, "FindOneId")
	defer func() { done(err) }()

	res := s.coll.FindOne(ctx, bson.M{idKey: id})
	if err = res.Err(); err != nil {
		return errors.Wrap(err, "finding document by id")
	}

	return errors.Wrap(res.Decode(out), "decoding document")
}

func (s *Store) Insert(ctx context.Context, doc any) (_ any, err error) {
	ctx, done := s.track(ctx, "Insert")
	defer func() { done(err) }()

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, "inserting document")
	}

	return res.InsertedID, nil
}

func (s *Store) UpdateId(ctx context.Context, id any, update any) (err error) {
	ctx, done := s.track(ctx, "UpdateId")
	defer func() { done(err) }()

	res, err := s.coll.UpdateOne(ctx, bson.M{idKey: id}, update)
	if err != nil {
		return errors.Wrap(err, "updating document")
	}
	if res.MatchedCount == 0 {
		return adb.ErrNotFound
	}

	return nil
}

func (s *Store) RemoveId(ctx context.Context, id any) (err error) {
	ctx, done := s.track(ctx, "RemoveId")
	defer func() { done(err) }()

	res, err := s.coll.DeleteOne(ctx, bson.M{idKey: id})
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	if res.DeletedCount == 0 {
		return adb.ErrNotFound
	}

	return nil
}
