package util

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// MaxRequestSize is the default cap on request bodies.
const MaxRequestSize = 16 * 1024 * 1024 // 16 MB

type requestReader struct {
	req *http.Request
	*io.LimitedReader
}

// NewRequestReaderWithSize returns an io.ReadCloser for the body of an
// *http.Request that stops after size bytes. A request without a body
// reads as empty.
func NewRequestReaderWithSize(req *http.Request, size int64) io.ReadCloser {
	body := req.Body
	if body == nil {
		body = http.NoBody
	}

	return &requestReader{
		req: req,
		LimitedReader: &io.LimitedReader{
			R: body,
			N: size,
		},
	}
}

func (r *requestReader) Close() error {
	if r.req.Body == nil {
		return nil
	}
	return errors.WithStack(r.req.Body.Close())
}
