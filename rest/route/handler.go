package route

import (
	"net/http"

	"github.com/evergreen-ci/fmtasks"
	"github.com/evergreen-ci/gimlet"
)

// createdResponder is a Responder for a newly created resource. The
// location is sent in the Location header.
type createdResponder struct {
	gimlet.Responder
	location string
}

func newCreatedResponse(data any, location string) gimlet.Responder {
	resp := gimlet.NewJSONResponse(data)
	if err := resp.SetStatus(http.StatusCreated); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}

	return &createdResponder{Responder: resp, location: location}
}

// makeHandler adapts a RouteHandler to an http.HandlerFunc. Every error
// returned while parsing the request is sent through the same
// translator the handlers use, so all failures share one body shape.
func makeHandler(rh gimlet.RouteHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		handler := rh.Factory()

		var resp gimlet.Responder
		if err := handler.Parse(ctx, r); err != nil {
			resp = makeErrorResponder(ctx, err)
		} else {
			resp = handler.Run(ctx)
		}

		writeResponse(w, resp)
	}
}

func writeResponse(w http.ResponseWriter, resp gimlet.Responder) {
	if created, ok := resp.(*createdResponder); ok {
		w.Header().Set(fmtasks.LocationHeader, created.location)
	}

	gimlet.WriteJSONResponse(w, resp.Status(), resp.Data())
}
