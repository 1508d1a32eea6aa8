package route

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/fmtasks"
	"github.com/evergreen-ci/fmtasks/model/task"
	"github.com/evergreen-ci/fmtasks/rest"
	"github.com/evergreen-ci/fmtasks/rest/data"
	"github.com/evergreen-ci/fmtasks/rest/model"
	"github.com/evergreen-ci/fmtasks/util"
	"github.com/evergreen-ci/gimlet"
)

const taskIdVar = "task_id"

// readTaskId returns the task id from the path, failing with a client
// error when the path has no id segment.
func readTaskId(r *http.Request) (string, error) {
	id := gimlet.GetVars(r)[taskIdVar]
	if id == "" {
		return "", rest.ClientError(rest.IdRequiredMessage)
	}

	return id, nil
}

func readContent(r *http.Request, maxBodySize int64) (any, error) {
	body := util.NewRequestReaderWithSize(r, maxBodySize)
	defer body.Close()

	return model.ExtractContent(body)
}

////////////////////////////////////////////////////////////////////////
//
// POST /task/{task_id}

type taskCreateHandler struct {
	taskId  string
	content any

	sc          *data.TaskConnector
	maxBodySize int64
}

func makeCreateTask(sc *data.TaskConnector, maxBodySize int64) gimlet.RouteHandler {
	return &taskCreateHandler{sc: sc, maxBodySize: maxBodySize}
}

// Factory creates an instance of the handler.
//
//	@Summary		Create a task
//	@Description	Stores a new task. The id path segment is optional; when it is omitted an id is assigned.
//	@Tags			tasks
//	@Router			/task/{task_id} [post]
//	@Param			task_id	path		string	false	"task ID"
//	@Success		201		{object}	model.APITaskCreated
func (h *taskCreateHandler) Factory() gimlet.RouteHandler {
	return &taskCreateHandler{sc: h.sc, maxBodySize: h.maxBodySize}
}

func (h *taskCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	h.taskId = gimlet.GetVars(r)[taskIdVar]

	content, err := readContent(r, h.maxBodySize)
	if err != nil {
		return err
	}
	h.content = content

	return nil
}

func (h *taskCreateHandler) Run(ctx context.Context) gimlet.Responder {
	t, err := h.sc.CreateTask(ctx, h.taskId, h.content)
	if err != nil {
		return makeErrorResponder(ctx, err)
	}

	created := &model.APITaskCreated{}
	created.BuildFromService(*t)

	return newCreatedResponse(created, taskLocation(t))
}

func taskLocation(t *task.Task) string {
	return fmtasks.TaskRoutePrefix + t.Id.Hex()
}

////////////////////////////////////////////////////////////////////////
//
// GET /task/{task_id}

type taskGetHandler struct {
	taskId string

	sc *data.TaskConnector
}

func makeGetTask(sc *data.TaskConnector) gimlet.RouteHandler {
	return &taskGetHandler{sc: sc}
}

// Factory creates an instance of the handler.
//
//	@Summary		Fetch a task
//	@Description	Returns the content of the task with the given id.
//	@Tags			tasks
//	@Router			/task/{task_id} [get]
//	@Param			task_id	path		string	true	"task ID"
//	@Success		200		{object}	model.APITask
func (h *taskGetHandler) Factory() gimlet.RouteHandler {
	return &taskGetHandler{sc: h.sc}
}

func (h *taskGetHandler) Parse(ctx context.Context, r *http.Request) error {
	var err error
	h.taskId, err = readTaskId(r)
	return err
}

func (h *taskGetHandler) Run(ctx context.Context) gimlet.Responder {
	t, err := h.sc.FindTaskById(ctx, h.taskId)
	if err != nil {
		return makeErrorResponder(ctx, err)
	}

	apiTask := &model.APITask{}
	apiTask.BuildFromService(*t)

	return gimlet.NewJSONResponse(apiTask)
}

////////////////////////////////////////////////////////////////////////
//
// PUT /task/{task_id}

type taskUpdateHandler struct {
	taskId     string
	content    any
	contentErr error

	sc          *data.TaskConnector
	maxBodySize int64
}

func makeUpdateTask(sc *data.TaskConnector, maxBodySize int64) gimlet.RouteHandler {
	return &taskUpdateHandler{sc: sc, maxBodySize: maxBodySize}
}

// Factory creates an instance of the handler.
//
//	@Summary		Update a task
//	@Description	Replaces the content of the task with the given id.
//	@Tags			tasks
//	@Router			/task/{task_id} [put]
//	@Param			task_id	path	string	true	"task ID"
//	@Success		200
func (h *taskUpdateHandler) Factory() gimlet.RouteHandler {
	return &taskUpdateHandler{sc: h.sc, maxBodySize: h.maxBodySize}
}

// Parse reads the id and the body. A bad body is only reported once the
// task is known to exist, so it is kept for Run.
func (h *taskUpdateHandler) Parse(ctx context.Context, r *http.Request) error {
	var err error
	if h.taskId, err = readTaskId(r); err != nil {
		return err
	}

	h.content, h.contentErr = readContent(r, h.maxBodySize)

	return nil
}

func (h *taskUpdateHandler) Run(ctx context.Context) gimlet.Responder {
	t, err := h.sc.FindTaskById(ctx, h.taskId)
	if err != nil {
		return makeErrorResponder(ctx, err)
	}
	if h.contentErr != nil {
		return makeErrorResponder(ctx, h.contentErr)
	}

	if err = h.sc.UpdateTaskContent(ctx, t, h.content); err != nil {
		return makeErrorResponder(ctx, err)
	}

	return gimlet.NewJSONResponse(struct{}{})
}

////////////////////////////////////////////////////////////////////////
//
// DELETE /task/{task_id}

type taskDeleteHandler struct {
	taskId string

	sc *data.TaskConnector
}

func makeDeleteTask(sc *data.TaskConnector) gimlet.RouteHandler {
	return &taskDeleteHandler{sc: sc}
}

// Factory creates an instance of the handler.
//
//	@Summary		Delete a task
//	@Description	Removes the task with the given id.
//	@Tags			tasks
//	@Router			/task/{task_id} [delete]
//	@Param			task_id	path	string	true	"task ID"
//	@Success		200
func (h *taskDeleteHandler) Factory() gimlet.RouteHandler {
	return &taskDeleteHandler{sc: h.sc}
}

func (h *taskDeleteHandler) Parse(ctx context.Context, r *http.Request) error {
	var err error
	h.taskId, err = readTaskId(r)
	return err
}

func (h *taskDeleteHandler) Run(ctx context.Context) gimlet.Responder {
	t, err := h.sc.FindTaskById(ctx, h.taskId)
	if err != nil {
		return makeErrorResponder(ctx, err)
	}

	if err = h.sc.DeleteTask(ctx, t); err != nil {
		return makeErrorResponder(ctx, err)
	}

	return gimlet.NewJSONResponse(struct{}{})
}
