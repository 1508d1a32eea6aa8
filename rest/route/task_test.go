package route

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/evergreen-ci/fmtasks"
	"github.com/evergreen-ci/fmtasks/mock"
	"github.com/evergreen-ci/fmtasks/model/task"
	"github.com/evergreen-ci/fmtasks/rest"
	"github.com/evergreen-ci/fmtasks/rest/data"
	"github.com/evergreen-ci/fmtasks/rest/model"
	"github.com/evergreen-ci/fmtasks/util"
	"github.com/evergreen-ci/gimlet"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskRouteSuite struct {
	ctx   context.Context
	store *mock.Store
	sc    *data.TaskConnector

	suite.Suite
}

func TestTaskRouteSuite(t *testing.T) {
	suite.Run(t, new(TaskRouteSuite))
}

func (s *TaskRouteSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = mock.NewStore()
	s.sc = data.NewTaskConnector(s.store)
}

func (s *TaskRouteSuite) newRequest(method, id, body string) *http.Request {
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, fmtasks.TaskRoutePrefix+id, nil)
	} else {
		req, err = http.NewRequest(method, fmtasks.TaskRoutePrefix+id, bytes.NewBufferString(body))
	}
	s.Require().NoError(err)

	if id != "" {
		req = gimlet.SetURLVars(req, map[string]string{taskIdVar: id})
	}
	return req
}

func (s *TaskRouteSuite) insertTask(content any) *task.Task {
	t := &task.Task{Content: content}
	s.Require().NoError(t.Insert(s.ctx, s.store))
	return t
}

func (s *TaskRouteSuite) requireErrorMessage(resp gimlet.Responder, status int, msg string) {
	s.Equal(status, resp.Status())
	apiErr, ok := resp.Data().(model.APIError)
	s.Require().True(ok, "unexpected response data %v", resp.Data())
	s.Equal(msg, apiErr.Message)
}

func (s *TaskRouteSuite) TestCreateWithoutId() {
	rh := makeCreateTask(s.sc, util.MaxRequestSize).Factory()
	s.Require().NoError(rh.Parse(s.ctx, s.newRequest(http.MethodPost, "", `{"content": "testvalue1"}`)))

	resp := rh.Run(s.ctx)
	s.Equal(http.StatusCreated, resp.Status())
	created, ok := resp.(*createdResponder)
	s.Require().True(ok)

	body, ok := resp.Data().(*model.APITaskCreated)
	s.Require().True(ok)
	s.Require().NotNil(body.Id)
	s.Equal(fmtasks.TaskRoutePrefix+*body.Id, created.location)

	oid, ok := task.ParseId(*body.Id)
	s.Require().True(ok)
	found, err := task.FindOneId(s.ctx, s.store, oid)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal("testvalue1", found.Content)
}

func (s *TaskRouteSuite) TestCreateWithId() {
	oid := primitive.NewObjectID()
	rh := makeCreateTask(s.sc, util.MaxRequestSize).Factory()
	s.Require().NoError(rh.Parse(s.ctx, s.newRequest(http.MethodPost, oid.Hex(), `{"content": "testvalue1"}`)))

	resp := rh.Run(s.ctx)
	s.Equal(http.StatusCreated, resp.Status())
	body, ok := resp.Data().(*model.APITaskCreated)
	s.Require().True(ok)
	s.Equal(oid.Hex(), *body.Id)
}

func (s *TaskRouteSuite) TestCreateRequiresContent() {
	rh := makeCreateTask(s.sc, util.MaxRequestSize).Factory()
	err := rh.Parse(s.ctx, s.newRequest(http.MethodPost, "", `{"contents": "testvalue1"}`))
	s.Require().Error(err)

	s.requireErrorMessage(makeErrorResponder(s.ctx, err), http.StatusBadRequest, rest.ContentRequiredMessage)
	s.Zero(s.store.Len())
}

func (s *TaskRouteSuite) TestCreateWithExistingId() {
	existing := s.insertTask("testvalue1")

	rh := makeCreateTask(s.sc, util.MaxRequestSize).Factory()
	s.Require().NoError(rh.Parse(s.ctx, s.newRequest(http.MethodPost, existing.Id.Hex(), `{"content": "testvalue2"}`)))

	s.requireErrorMessage(rh.Run(s.ctx), http.StatusBadRequest, rest.IdExistsMessage)

	found, err := task.FindOneId(s.ctx, s.store, existing.Id)
	s.Require().NoError(err)
	s.Equal("testvalue1", found.Content)
}

func (s *TaskRouteSuite) TestGet() {
	existing := s.insertTask("testvalue1")

	rh := makeGetTask(s.sc).Factory()
	s.Require().NoError(rh.Parse(s.ctx, s.newRequest(http.MethodGet, existing.Id.Hex(), "")))

	resp := rh.Run(s.ctx)
	s.Equal(http.StatusOK, resp.Status())
	body, ok := resp.Data().(*model.APITask)
	s.Require().True(ok)
	s.Equal("testvalue1", body.Content)
}

func (s *TaskRouteSuite) TestGetRequiresId() {
	rh := makeGetTask(s.sc).Factory()
	err := rh.Parse(s.ctx, s.newRequest(http.MethodGet, "", ""))
	s.Require().Error(err)
	s.requireErrorMessage(makeErrorResponder(s.ctx, err), http.StatusBadRequest, rest.IdRequiredMessage)
}

func (s *TaskRouteSuite) TestGetMissingTask() {
	rh := makeGetTask(s.sc).Factory()
	s.Require().NoError(rh.Parse(s.ctx, s.newRequest(http.MethodGet, primitive.NewObjectID().Hex(), "")))
	s.requireErrorMessage(rh.Run(s.ctx), http.StatusNotFound, rest.TaskNotFoundMessage)
}

func (s *TaskRouteSuite) TestUpdate() {
	existing := s.insertTask("testvalue1")

	rh := makeUpdateTask(s.sc, util.MaxRequestSize).Factory()
	s.Require().NoError(rh.Parse(s.ctx, s.newRequest(http.MethodPut, existing.Id.Hex(), `{"content": "testvalue3"}`)))

	resp := rh.Run(s.ctx)
	s.Equal(http.StatusOK, resp.Status())
	s.Equal(struct{}{}, resp.Data())

	found, err := task.FindOneId(s.ctx, s.store, existing.Id)
	s.Require().NoError(err)
	s.Equal("testvalue3", found.Content)
}

func (s *TaskRouteSuite) TestUpdateChecksExistenceBeforeContent() {
	rh := makeUpdateTask(s.sc, util.MaxRequestSize).Factory()
	s.Require().NoError(rh.Parse(s.ctx, s.newRequest(http.MethodPut, primitive.NewObjectID().Hex(), `{}`)))
	s.requireErrorMessage(rh.Run(s.ctx), http.StatusNotFound, rest.TaskNotFoundMessage)
}

func (s *TaskRouteSuite) TestUpdateRequiresContent() {
	existing := s.insertTask("testvalue1")

	rh := makeUpdateTask(s.sc, util.MaxRequestSize).Factory()
	s.Require().NoError(rh.Parse(s.ctx, s.newRequest(http.MethodPut, existing.Id.Hex(), `{}`)))
	s.requireErrorMessage(rh.Run(s.ctx), http.StatusBadRequest, rest.ContentRequiredMessage)

	found, err := task.FindOneId(s.ctx, s.store, existing.Id)
	s.Require().NoError(err)
	s.Equal("testvalue1", found.Content)
}

func (s *TaskRouteSuite) TestUpdateRequiresId() {
	rh := makeUpdateTask(s.sc, util.MaxRequestSize).Factory()
	err := rh.Parse(s.ctx, s.newRequest(http.MethodPut, "", `{"content": "testvalue3"}`))
	s.Require().Error(err)
	s.requireErrorMessage(makeErrorResponder(s.ctx, err), http.StatusBadRequest, rest.IdRequiredMessage)
}

func (s *TaskRouteSuite) TestDelete() {
	existing := s.insertTask("testvalue1")

	rh := makeDeleteTask(s.sc).Factory()
	s.Require().NoError(rh.Parse(s.ctx, s.newRequest(http.MethodDelete, existing.Id.Hex(), "")))

	resp := rh.Run(s.ctx)
	s.Equal(http.StatusOK, resp.Status())
	s.Zero(s.store.Len())
}

func (s *TaskRouteSuite) TestDeleteMissingTask() {
	rh := makeDeleteTask(s.sc).Factory()
	s.Require().NoError(rh.Parse(s.ctx, s.newRequest(http.MethodDelete, "not-an-id", "")))
	s.requireErrorMessage(rh.Run(s.ctx), http.StatusNotFound, rest.TaskNotFoundMessage)
}

func (s *TaskRouteSuite) TestDeleteRequiresId() {
	rh := makeDeleteTask(s.sc).Factory()
	err := rh.Parse(s.ctx, s.newRequest(http.MethodDelete, "", ""))
	s.Require().Error(err)
	s.requireErrorMessage(makeErrorResponder(s.ctx, err), http.StatusBadRequest, rest.IdRequiredMessage)
}

func (s *TaskRouteSuite) TestFactoryReturnsFreshHandlers() {
	base := makeGetTask(s.sc)
	first := base.Factory()
	s.Require().NoError(first.Parse(s.ctx, s.newRequest(http.MethodGet, "first", "")))

	second := base.Factory().(*taskGetHandler)
	s.Empty(second.taskId)
	s.Equal(s.sc, second.sc)
}
