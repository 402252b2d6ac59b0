package gateway

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// attempt carries one logical request through the state machine.
// retried flips once; a second 401 with retried set is terminal.
type attempt struct {
	original  *http.Request
	body      []byte
	requestID string
	retried   bool
	sentToken string
}

func newAttempt(req *http.Request) (*attempt, error) {
	a := &attempt{original: req, requestID: req.Header.Get(requestIDHeader)}
	if a.requestID == "" {
		a.requestID = uuid.New().String()
	}
	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("buffer request body: %w", err)
		}
		a.body = body
	}
	return a, nil
}

// build clones the original request for one send and records the token it carries
func (a *attempt) build(token string) *http.Request {
	out := a.original.Clone(a.original.Context())
	if a.body != nil {
		out.Body = io.NopCloser(bytes.NewReader(a.body))
		out.ContentLength = int64(len(a.body))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(a.body)), nil
		}
	}
	out.Header.Set(requestIDHeader, a.requestID)
	out.Header.Del("Authorization")
	a.sentToken = token
	return out
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
