package db

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// IsDuplicateKey reports whether err is a primary or unique key
// violation reported by the store.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	if mongo.IsDuplicateKeyError(errors.Cause(err)) {
		return true
	}

	if strings.Contains(errors.Cause(err).Error(), "duplicate key") {
		return true
	}

	return false
}

// IsUnavailable reports whether err means the store could not be
// reached, either because no server was selected in time or because
// the connection failed.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	cause := errors.Cause(err)
	if errors.Is(cause, context.DeadlineExceeded) {
		return true
	}

	var selectionErr topology.ServerSelectionError
	if errors.As(cause, &selectionErr) {
		return true
	}

	return mongo.IsTimeout(cause) || mongo.IsNetworkError(cause)
}
