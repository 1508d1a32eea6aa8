package task

import (
	"github.com/mongodb/anser/bsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// BSON fields for the task struct
	IdKey      = bsonutil.MustHaveTag(Task{}, "Id")
	ContentKey = bsonutil.MustHaveTag(Task{}, "Content")
)

// Task is the only resource managed by the service. Its id is
// immutable once stored; its content is an arbitrary JSON value that
// is stored and returned verbatim.
type Task struct {
	Id      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content any                `bson:"content" json:"content"`
}

// ParseId converts the textual form of a task id into the store's
// native representation. The boolean is false if the text is not a
// well formed id.
func ParseId(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}

	return oid, true
}
