// Package upstream talks to the remote Files API and Supervisor API and
// normalizes their failures into StatusError and TransportError.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// base is shared by the concrete clients. Requests have no timeout beyond
// what the caller's context imposes and are never retried.
type base struct {
	baseURL string
	http    *http.Client
}

func newBase(baseURL string, hc *http.Client) base {
	if hc == nil {
		hc = http.DefaultClient
	}
	return base{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    hc,
	}
}

func (b base) url(path string) string {
	return b.baseURL + "/" + strings.TrimLeft(path, "/")
}

// send performs req and returns the response body of a 2xx answer.
func (b base) send(req *http.Request, verb string) ([]byte, error) {
	log.Printf("upstream: %s %s", req.Method, req.URL.Redacted())
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: verb, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := statusError(resp, verb)
		log.Printf("upstream: %s %s status=%d message=%q", req.Method, req.URL.Redacted(), se.Status, se.Message)
		return nil, se
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: verb, Err: fmt.Errorf("read response: %w", err)}
	}
	return raw, nil
}

func (b base) getJSON(ctx context.Context, path, verb string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url(path), nil)
	if err != nil {
		return &TransportError{Op: verb, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	raw, err := b.send(req, verb)
	if err != nil {
		return err
	}
	return decodeBody(raw, verb, out)
}

func decodeBody(raw []byte, verb string, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: verb, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
