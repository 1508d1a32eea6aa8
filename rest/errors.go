package rest

import (
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/pkg/errors"
)

// Messages returned to clients.
const (
	ContentRequiredMessage = "content is required"
	IdRequiredMessage      = "id is required"
	IdExistsMessage        = "id already exists"
	IdInvalidMessage       = "id is invalid"
	TaskNotFoundMessage    = "task doesn't exists"
)

// ClientError reports malformed or missing input.
func ClientError(msg string) error {
	return gimlet.ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Message:    msg,
	}
}

// NotFoundError reports a well formed reference to a resource that does
// not exist.
func NotFoundError(msg string) error {
	return gimlet.ErrorResponse{
		StatusCode: http.StatusNotFound,
		Message:    msg,
	}
}

// AsClientFacing returns the client facing error carried by err, if
// any. Only 4xx errors are client facing.
func AsClientFacing(err error) (gimlet.ErrorResponse, bool) {
	var resp gimlet.ErrorResponse
	if !errors.As(err, &resp) {
		return gimlet.ErrorResponse{}, false
	}
	if resp.StatusCode < http.StatusBadRequest || resp.StatusCode >= http.StatusInternalServerError {
		return gimlet.ErrorResponse{}, false
	}

	return resp, true
}
