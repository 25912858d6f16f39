package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is a non-success response from a remote backend.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// TransportError is a failure talking to a remote backend: the request
// never produced a usable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusOf returns the upstream status carried by err, if any.
func StatusOf(err error) (int, string, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, se.Message, true
	}
	return 0, "", false
}

const maxErrorBody = 64 << 10

// statusError builds the error for a non-success response: the JSON detail
// message when the body has one, otherwise "Failed to <verb>: <status text>".
func statusError(resp *http.Response, verb string) *StatusError {
	msg := fmt.Sprintf("Failed to %s: %s", verb, statusText(resp))
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		if detail := detailMessage(raw); detail != "" {
			msg = detail
		}
	}
	return &StatusError{Status: resp.StatusCode, Message: msg}
}

func detailMessage(raw []byte) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		field, ok := body[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(field, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		// FastAPI validation errors carry a list of objects.
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(field, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				if m := strings.TrimSpace(it.Msg); m != "" {
					parts = append(parts, m)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	return ""
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
