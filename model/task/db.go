package task

import (
	"context"

	"github.com/evergreen-ci/fmtasks/db"
	adb "github.com/mongodb/anser/db"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FindOneId returns the task with the given id, or nil if there is no
// such task.
func FindOneId(ctx context.Context, s db.Storage, id primitive.ObjectID) (*Task, error) {
	t := &Task{}
	err := s.FindOneId(ctx, id, t)
	if adb.ResultsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "finding task '%s'", id.Hex())
	}

	return t, nil
}

// Insert writes the task to the store. If the task has no id the store
// assigns one, and the task is updated to carry it.
func (t *Task) Insert(ctx context.Context, s db.Storage) error {
	id, err := s.Insert(ctx, t)
	if err != nil {
		return errors.Wrap(err, "inserting task")
	}

	oid, ok := id.(primitive.ObjectID)
	if !ok {
		return errors.Errorf("store assigned id of unexpected type %T", id)
	}
	t.Id = oid

	return nil
}

// SetContent replaces the content of the task with the given id. The
// error satisfies adb.ResultsNotFound if the task does not exist.
func SetContent(ctx context.Context, s db.Storage, id primitive.ObjectID, content any) error {
	return errors.Wrapf(s.UpdateId(ctx, id, bson.M{
		"$set": bson.M{ContentKey: content},
	}), "setting content for task '%s'", id.Hex())
}

// Remove deletes the task with the given id. The error satisfies
// adb.ResultsNotFound if the task does not exist.
func Remove(ctx context.Context, s db.Storage, id primitive.ObjectID) error {
	return errors.Wrapf(s.RemoveId(ctx, id), "removing task '%s'", id.Hex())
}
