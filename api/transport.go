package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/viteviteapp/apimodel"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxErrorBody    = 64 << 10
)

// Doer sends a request. Both *http.Client and *gateway.Gateway satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// doJSON encodes in (when not nil), sends it and decodes a 2xx body into out (when not nil)
func doJSON(ctx context.Context, doer Doer, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, url, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := doer.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, url, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body apimodel.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Detail != "" {
		apiErr.Message = body.Detail
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
