package model

import (
	"encoding/json"
	"io"

	"github.com/evergreen-ci/fmtasks/model/task"
	"github.com/evergreen-ci/fmtasks/rest"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ContentField is the body field that carries a task's content.
const ContentField = "content"

// APITask is the body returned when reading a task.
type APITask struct {
	Content any `json:"content"`
}

// BuildFromService converts from a stored task to an APITask.
func (at *APITask) BuildFromService(t task.Task) {
	at.Content = t.Content
}

// APITaskCreated is the body returned when a task is created.
type APITaskCreated struct {
	Id *string `json:"id"`
}

// BuildFromService converts from a stored task to an APITaskCreated.
func (at *APITaskCreated) BuildFromService(t task.Task) {
	at.Id = utility.ToStringPtr(t.Id.Hex())
}

// APIError is the body of every client error response.
type APIError struct {
	Message string `json:"errormsg"`
}

// taskBodySchema describes the body of create and update requests.
var taskBodySchema = jsonschema.MustCompileString("task_body.json", `{
	"type": "object",
	"required": ["`+ContentField+`"]
}`)

// ExtractContent returns the value of the content field of a JSON
// object body. Any JSON value is accepted, including null. It fails
// with a client error if the body is not a single JSON object with a
// content field. Integers that fit in 64 bits are returned exactly as
// int64; every other number is a float64.
func ExtractContent(body io.Reader) (any, error) {
	var doc any
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, rest.ClientError(rest.ContentRequiredMessage)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, rest.ClientError(rest.ContentRequiredMessage)
	}

	if err := taskBodySchema.Validate(doc); err != nil {
		grip.Debug(message.WrapError(err, message.Fields{
			"message": "request body failed validation",
		}))
		return nil, rest.ClientError(rest.ContentRequiredMessage)
	}

	content, err := convertNumbers(doc.(map[string]any)[ContentField])
	if err != nil {
		grip.Debug(message.WrapError(err, message.Fields{
			"message": "request body has an unrepresentable number",
		}))
		return nil, rest.ClientError(rest.ContentRequiredMessage)
	}

	return content, nil
}

// convertNumbers replaces every json.Number in v with an int64 if it is
// an integer that fits, or a float64 otherwise.
func convertNumbers(v any) (any, error) {
	var err error
	switch val := v.(type) {
	case json.Number:
		if i, intErr := val.Int64(); intErr == nil {
			return i, nil
		}
		f, floatErr := val.Float64()
		return f, errors.Wrapf(floatErr, "converting number '%s'", val)
	case map[string]any:
		for key, elem := range val {
			if val[key], err = convertNumbers(elem); err != nil {
				return nil, err
			}
		}
		return val, nil
	case []any:
		for idx, elem := range val {
			if val[idx], err = convertNumbers(elem); err != nil {
				return nil, err
			}
		}
		return val, nil
	default:
		return v, nil
	}
}
