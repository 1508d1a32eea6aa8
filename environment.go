package fmtasks

import (
	"context"
	"sync"

	"github.com/evergreen-ci/fmtasks/db"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Environment provides application-level services (the database
// handle and the configuration) to the rest of the service. It is
// constructed once per process and passed explicitly to the
// components that need it.
type Environment interface {
	// Settings returns the settings object. The settings object is not
	// safe for concurrent modification.
	Settings() *Settings

	Client() *mongo.Client
	DB() *mongo.Database

	// TaskStorage is the handle on the collection that holds tasks.
	TaskStorage() db.Storage

	// RegisterCloser adds a function object to an internal
	// tracker to be called by the Close method before process
	// termination. The ID is used in reporting, but must be
	// unique or a new closer could overwrite an existing closer
	// in some implementations.
	RegisterCloser(string, func(context.Context) error)
	// Close calls all registered closers in the environment.
	Close(context.Context) error
}

// NewEnvironment constructs an Environment instance from validated
// settings. The client connects lazily: the first operation that
// needs the store waits at most the configured server selection
// timeout for it to become reachable.
func NewEnvironment(ctx context.Context, settings *Settings) (Environment, error) {
	if settings == nil {
		return nil, errors.New("settings must not be nil")
	}

	e := &envState{
		settings: settings,
	}

	if err := e.initDB(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing database")
	}

	if err := e.initOtel(ctx); err != nil {
		catcher := grip.NewBasicCatcher()
		catcher.Add(err)
		catcher.Wrap(e.Close(ctx), "closing partially initialized environment")
		return nil, errors.Wrap(catcher.Resolve(), "initializing otel")
	}

	return e, nil
}

type closerOp struct {
	name   string
	closer func(context.Context) error
}

type envState struct {
	settings *Settings
	client   *mongo.Client
	store    *db.Store

	mu      sync.RWMutex
	closers []closerOp
}

func (e *envState) initDB(ctx context.Context) error {
	var err error
	e.client, err = mongo.Connect(ctx, e.settings.Database.ClientOptions())
	if err != nil {
		return errors.Wrap(err, "connecting to the database")
	}

	e.store = db.NewStore(e.client.Database(e.settings.Database.DB).Collection(e.settings.Database.Collection))

	e.RegisterCloser("database-client", func(ctx context.Context) error {
		return errors.Wrap(e.client.Disconnect(ctx), "disconnecting from the database")
	})

	grip.Info(message.Fields{
		"message":                  "configured database client",
		"db":                       e.settings.Database.DB,
		"collection":               e.settings.Database.Collection,
		"connect_timeout":          e.settings.Database.ConnectTimeout.String(),
		"server_selection_timeout": e.settings.Database.ServerSelectionTimeout().String(),
	})

	return nil
}

// initOtel sets up trace and metric export over a single gRPC
// connection to the collector. It does nothing if tracing is disabled.
func (e *envState) initOtel(ctx context.Context) error {
	conf := e.settings.Tracer
	if !conf.Enabled {
		return nil
	}

	creds := credentials.NewTLS(nil)
	if conf.Insecure {
		creds = insecure.NewCredentials()
	}
	conn, err := grpc.NewClient(conf.CollectorEndpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return errors.Wrapf(err, "opening gRPC connection to '%s'", conf.CollectorEndpoint)
	}
	e.RegisterCloser("otel-grpc-connection", func(context.Context) error {
		return errors.Wrap(conn.Close(), "closing gRPC connection")
	})

	r := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName("fmtasks"),
		semconv.ServiceVersion(BuildRevision),
	)

	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(otlptracegrpc.WithGRPCConn(conn)))
	if err != nil {
		return errors.Wrap(err, "initializing otel trace exporter")
	}

	spanLimits := sdktrace.NewSpanLimits()
	spanLimits.AttributeValueLengthLimit = OtelAttributeMaxLength

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(r),
		sdktrace.WithRawSpanLimits(spanLimits),
	)
	tp.RegisterSpanProcessor(utility.NewAttributeSpanProcessor())
	otel.SetTracerProvider(tp)

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return errors.Wrap(err, "initializing otel metric exporter")
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(r),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(otelExportInterval),
			sdkmetric.WithTimeout(2*otelExportInterval),
		)),
	)
	otel.SetMeterProvider(mp)

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		grip.Error(errors.Wrap(err, "otel error"))
	}))

	e.RegisterCloser("otel-providers", func(ctx context.Context) error {
		catcher := grip.NewBasicCatcher()
		catcher.Wrap(tp.Shutdown(ctx), "shutting down tracer provider")
		catcher.Wrap(traceExporter.Shutdown(ctx), "shutting down trace exporter")
		catcher.Wrap(mp.Shutdown(ctx), "shutting down meter provider")
		return catcher.Resolve()
	})

	grip.Info(message.Fields{
		"message":   "configured otel export",
		"collector": conf.CollectorEndpoint,
		"insecure":  conf.Insecure,
	})

	return nil
}

func (e *envState) Settings() *Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.settings
}

func (e *envState) Client() *mongo.Client {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.client
}

func (e *envState) DB() *mongo.Database {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.client == nil {
		return nil
	}

	return e.client.Database(e.settings.Database.DB)
}

func (e *envState) TaskStorage() db.Storage {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.store
}

func (e *envState) RegisterCloser(name string, closer func(context.Context) error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for idx, op := range e.closers {
		if op.name == name {
			e.closers[idx].closer = closer
			return
		}
	}
	e.closers = append(e.closers, closerOp{name: name, closer: closer})
}

// Close runs the registered closers in the reverse order of their
// registration and reports every failure.
func (e *envState) Close(ctx context.Context) error {
	e.mu.Lock()
	closers := e.closers
	e.closers = nil
	e.mu.Unlock()

	catcher := grip.NewBasicCatcher()
	for idx := len(closers) - 1; idx >= 0; idx-- {
		op := closers[idx]
		if op.closer == nil {
			continue
		}

		grip.Debug(message.Fields{
			"message": "calling closer",
			"closer":  op.name,
		})
		catcher.Wrapf(op.closer(ctx), "running closer '%s'", op.name)
	}

	return catcher.Resolve()
}
