package route

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/gimlet"
)

////////////////////////////////////////////////////////////////////////
//
// GET /

type rootHandler struct{}

func makeRoot() gimlet.RouteHandler { return &rootHandler{} }

// Factory creates an instance of the handler.
//
//	@Summary		API root
//	@Description	Always returns an empty object. It does not touch the task store.
//	@Router			/ [get]
//	@Success		200
func (h *rootHandler) Factory() gimlet.RouteHandler                     { return &rootHandler{} }
func (h *rootHandler) Parse(ctx context.Context, r *http.Request) error { return nil }
func (h *rootHandler) Run(ctx context.Context) gimlet.Responder {
	return gimlet.NewJSONResponse(struct{}{})
}
