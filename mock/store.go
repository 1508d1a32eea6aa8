package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/evergreen-ci/fmtasks/db"
	adb "github.com/mongodb/anser/db"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	idKey = "_id"

	duplicateKeyCode = 11000
)

var _ db.Storage = &Store{}

// Store is an in-memory db.Storage. Documents are kept as BSON so that
// reads observe the same encoding a real collection would produce.
type Store struct {
	mu   sync.RWMutex
	err  error
	docs map[any]bson.Raw
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{docs: map[any]bson.Raw{}}
}

// SetErr makes every following operation fail with err, without
// touching the stored documents. A nil err restores normal behavior.
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}

func (s *Store) failure() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs)
}

func (s *Store) FindOneId(_ context.Context, id any, out any) error {
	if err := s.failure(); err != nil {
		return err
	}

	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return errors.Wrap(mongo.ErrNoDocuments, "finding document by id")
	}

	return errors.Wrap(decode(doc, out), "decoding document")
}

func (s *Store) Insert(_ context.Context, doc any) (any, error) {
	if err := s.failure(); err != nil {
		return nil, err
	}

	var fields bson.D
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling document")
	}
	if err = bson.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(err, "unmarshalling document")
	}

	var id any
	for _, elem := range fields {
		if elem.Key == idKey {
			id = elem.Value
			break
		}
	}
	switch id.(type) {
	case nil:
		id = primitive.NewObjectID()
		fields = append(bson.D{{Key: idKey, Value: id}}, fields...)
		if raw, err = bson.Marshal(fields); err != nil {
			return nil, errors.Wrap(err, "marshalling document")
		}
	case primitive.ObjectID, string, int32, int64:
	default:
		return nil, errors.Errorf("unsupported id type %T", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; ok {
		return nil, errors.Wrap(duplicateKeyError(id), "inserting document")
	}
	s.docs[id] = raw

	return id, nil
}

// UpdateId supports updates of the form {"$set": {field: value}} on
// top-level fields.
func (s *Store) UpdateId(_ context.Context, id any, update any) error {
	if err := s.failure(); err != nil {
		return err
	}

	var ops map[string]bson.M
	raw, err := bson.Marshal(update)
	if err != nil {
		return errors.Wrap(err, "marshalling update")
	}
	if err = bson.Unmarshal(raw, &ops); err != nil {
		return errors.Wrap(err, "unmarshalling update")
	}
	for op := range ops {
		if op != "$set" {
			return errors.Errorf("unsupported update operator '%s'", op)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return adb.ErrNotFound
	}

	var fields bson.D
	if err = bson.Unmarshal(doc, &fields); err != nil {
		return errors.Wrap(err, "unmarshalling document")
	}
	for key, value := range ops["$set"] {
		if key == idKey {
			return errors.New("cannot modify the immutable field '_id'")
		}
		fields = setField(fields, key, value)
	}

	if s.docs[id], err = bson.Marshal(fields); err != nil {
		return errors.Wrap(err, "marshalling document")
	}

	return nil
}

func (s *Store) RemoveId(_ context.Context, id any) error {
	if err := s.failure(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return adb.ErrNotFound
	}
	delete(s.docs, id)

	return nil
}

func setField(fields bson.D, key string, value any) bson.D {
	for idx := range fields {
		if fields[idx].Key == key {
			fields[idx].Value = value
			return fields
		}
	}

	return append(fields, bson.E{Key: key, Value: value})
}

// decode mirrors the client's DefaultDocumentM option so embedded
// documents come back as maps.
func decode(doc bson.Raw, out any) error {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(doc))
	if err != nil {
		return err
	}
	dec.DefaultDocumentM()

	return dec.Decode(out)
}

func duplicateKeyError(id any) error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Index:   0,
			Code:    duplicateKeyCode,
			Message: fmt.Sprintf("E11000 duplicate key error index: _id_ dup key: { _id: %v }", id),
		}},
	}
}
