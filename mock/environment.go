package mock

import (
	"context"
	"sync"

	"github.com/evergreen-ci/fmtasks"
	"github.com/evergreen-ci/fmtasks/db"
	"github.com/mongodb/grip"
	"go.mongodb.org/mongo-driver/mongo"
)

// this is just a hack to ensure that compile breaks clearly if the
// mock implementation diverges from the interface
var _ fmtasks.Environment = &Environment{}

// Environment is an fmtasks.Environment whose task storage lives in
// memory. It has no database client.
type Environment struct {
	FmtasksSettings *fmtasks.Settings
	Store           *Store

	mu      sync.Mutex
	closers map[string]func(context.Context) error
}

// NewEnvironment returns an Environment with default settings and an
// empty Store.
func NewEnvironment() *Environment {
	return &Environment{
		FmtasksSettings: fmtasks.DefaultSettings(),
		Store:           NewStore(),
		closers:         map[string]func(context.Context) error{},
	}
}

func (e *Environment) Settings() *fmtasks.Settings { return e.FmtasksSettings }
func (e *Environment) Client() *mongo.Client        { return nil }
func (e *Environment) DB() *mongo.Database          { return nil }
func (e *Environment) TaskStorage() db.Storage      { return e.Store }

func (e *Environment) RegisterCloser(name string, closer func(context.Context) error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closers == nil {
		e.closers = map[string]func(context.Context) error{}
	}
	e.closers[name] = closer
}

func (e *Environment) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	catcher := grip.NewBasicCatcher()
	for name, closer := range e.closers {
		catcher.Wrapf(closer(ctx), "running closer '%s'", name)
	}
	e.closers = map[string]func(context.Context) error{}

	return catcher.Resolve()
}
