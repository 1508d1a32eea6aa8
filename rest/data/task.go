package data

import (
	"context"

	"github.com/evergreen-ci/fmtasks/db"
	"github.com/evergreen-ci/fmtasks/model/task"
	"github.com/evergreen-ci/fmtasks/rest"
	adb "github.com/mongodb/anser/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskConnector resolves and mutates tasks on behalf of the REST
// routes. It holds no task state of its own.
type TaskConnector struct {
	Storage db.Storage
}

// NewTaskConnector returns a connector backed by the given storage.
func NewTaskConnector(s db.Storage) *TaskConnector {
	return &TaskConnector{Storage: s}
}

// FindTaskById resolves the textual id into a stored task. An id that
// cannot be parsed is treated the same as an id that does not exist.
func (tc *TaskConnector) FindTaskById(ctx context.Context, id string) (*task.Task, error) {
	oid, ok := task.ParseId(id)
	if !ok {
		return nil, rest.NotFoundError(rest.TaskNotFoundMessage)
	}

	t, err := task.FindOneId(ctx, tc.Storage, oid)
	if err != nil {
		return nil, errors.Wrapf(err, "finding task '%s'", id)
	}
	if t == nil {
		return nil, rest.NotFoundError(rest.TaskNotFoundMessage)
	}

	return t, nil
}

// checkTaskIdAvailable parses a client supplied id and makes sure no
// task already uses it.
func (tc *TaskConnector) checkTaskIdAvailable(ctx context.Context, id string) (primitive.ObjectID, error) {
	oid, ok := task.ParseId(id)
	if !ok {
		return primitive.NilObjectID, rest.ClientError(rest.IdInvalidMessage)
	}

	existing, err := task.FindOneId(ctx, tc.Storage, oid)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(err, "checking for existing task '%s'", id)
	}
	if existing != nil {
		return primitive.NilObjectID, rest.ClientError(rest.IdExistsMessage)
	}

	return oid, nil
}

// CreateTask stores a new task with the given content. If id is empty
// the store assigns one; otherwise id must be well formed and unused.
func (tc *TaskConnector) CreateTask(ctx context.Context, id string, content any) (*task.Task, error) {
	t := &task.Task{Content: content}
	if id != "" {
		oid, err := tc.checkTaskIdAvailable(ctx, id)
		if err != nil {
			return nil, err
		}
		t.Id = oid
	}

	if err := t.Insert(ctx, tc.Storage); err != nil {
		// Another request created the same id after the check above.
		if db.IsDuplicateKey(err) {
			return nil, rest.ClientError(rest.IdExistsMessage)
		}
		return nil, errors.Wrap(err, "creating task")
	}

	grip.Debug(message.Fields{
		"message":   "created task",
		"task_id":   t.Id.Hex(),
		"client_id": id != "",
	})

	return t, nil
}

// UpdateTaskContent replaces the content of a resolved task.
func (tc *TaskConnector) UpdateTaskContent(ctx context.Context, t *task.Task, content any) error {
	err := task.SetContent(ctx, tc.Storage, t.Id, content)
	if adb.ResultsNotFound(err) {
		return rest.NotFoundError(rest.TaskNotFoundMessage)
	}

	return errors.Wrapf(err, "updating task '%s'", t.Id.Hex())
}

// DeleteTask removes a resolved task.
func (tc *TaskConnector) DeleteTask(ctx context.Context, t *task.Task) error {
	err := task.Remove(ctx, tc.Storage, t.Id)
	if adb.ResultsNotFound(err) {
		return rest.NotFoundError(rest.TaskNotFoundMessage)
	}

	return errors.Wrapf(err, "deleting task '%s'", t.Id.Hex())
}
