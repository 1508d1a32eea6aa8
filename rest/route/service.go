package route

import (
	"net/http"
	"strings"

	"github.com/evergreen-ci/fmtasks"
	"github.com/evergreen-ci/fmtasks/rest/data"
	"github.com/evergreen-ci/gimlet"
	"github.com/pkg/errors"
)

// AttachHandler registers the task API's routes on the given app. Create
// and update read at most maxBodySize bytes of the request body.
//
// The id-less forms of the task routes are registered for every method
// so that reads, updates, and deletes without an id get a client error
// rather than falling through to the router's not found response.
func AttachHandler(app *gimlet.APIApp, sc *data.TaskConnector, maxBodySize int64) {
	app.AddRoute("/").Get().Handler(makeHandler(makeRoot()))

	base := strings.TrimSuffix(fmtasks.TaskRoutePrefix, "/")
	for _, path := range []string{base, fmtasks.TaskRoutePrefix, fmtasks.TaskRoutePrefix + "{" + taskIdVar + "}"} {
		app.AddRoute(path).Post().Handler(makeHandler(makeCreateTask(sc, maxBodySize)))
		app.AddRoute(path).Get().Handler(makeHandler(makeGetTask(sc)))
		app.AddRoute(path).Put().Handler(makeHandler(makeUpdateTask(sc, maxBodySize)))
		app.AddRoute(path).Delete().Handler(makeHandler(makeDeleteTask(sc)))
	}
}

// GetHandler builds the task API for the given environment and returns
// it as an http.Handler, with request logging and panic recovery.
func GetHandler(env fmtasks.Environment) (http.Handler, error) {
	app := gimlet.NewApp()
	app.NoVersions = true
	// "/task" and "/task/" are distinct routes.
	app.StrictSlash = false
	app.ResetMiddleware()
	app.AddMiddleware(gimlet.MakeRecoveryLogger())
	app.AddMiddleware(gimlet.NewAppLogger())

	AttachHandler(app, data.NewTaskConnector(env.TaskStorage()), env.Settings().Api.MaxRequestSize)

	h, err := app.Handler()
	if err != nil {
		return nil, errors.Wrap(err, "resolving task API routes")
	}

	return h, nil
}
