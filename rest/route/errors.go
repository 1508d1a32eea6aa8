package route

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/fmtasks/db"
	"github.com/evergreen-ci/fmtasks/rest"
	"github.com/evergreen-ci/fmtasks/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
)

const storeUnavailableMessage = "task store is unavailable"

// makeErrorResponder converts an error into a response. Client facing
// errors become an errormsg body with their own status. Anything else
// is logged and reported as a server error.
func makeErrorResponder(ctx context.Context, err error) gimlet.Responder {
	if resp, ok := rest.AsClientFacing(err); ok {
		return newClientErrorResponse(resp.StatusCode, resp.Message)
	}

	unavailable := db.IsUnavailable(err)
	grip.Error(message.WrapError(err, message.Fields{
		"message":     "task request failed",
		"unavailable": unavailable,
		"request":     gimlet.GetRequestID(ctx),
	}))

	if unavailable {
		return gimlet.MakeJSONErrorResponder(gimlet.ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Message:    storeUnavailableMessage,
		})
	}

	return gimlet.MakeJSONInternalErrorResponder(err)
}

func newClientErrorResponse(status int, msg string) gimlet.Responder {
	resp := gimlet.NewJSONResponse(model.APIError{Message: msg})
	if err := resp.SetStatus(status); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}

	return resp
}
