package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// FilesClient is the Files API: the remote store that lists, versions,
// and deletes user files.
type FilesClient struct {
	base
}

func NewFilesClient(baseURL string, hc *http.Client) *FilesClient {
	return &FilesClient{base: newBase(baseURL, hc)}
}

// List returns the upstream listing as-is.
func (c *FilesClient) List(ctx context.Context, userID string) (json.RawMessage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	var out json.RawMessage
	err := c.getJSON(ctx, "files?user_id="+url.QueryEscape(userID), "fetch files", &out)
	return out, err
}

// Delete removes one file and returns the upstream acknowledgment.
func (c *FilesClient) Delete(ctx context.Context, userID, fileID string) (json.RawMessage, error) {
	userID = strings.TrimSpace(userID)
	fileID = strings.TrimSpace(fileID)
	if userID == "" || fileID == "" {
		return nil, fmt.Errorf("user_id and file_id are required")
	}
	const verb = "delete file"
	target := c.url("files/" + url.PathEscape(userID) + "/" + url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return nil, &TransportError{Op: verb, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	raw, err := c.send(req, verb)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := decodeBody(raw, verb, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Version fetches one stored version of a file.
func (c *FilesClient) Version(ctx context.Context, userID, fileID string, version int) (json.RawMessage, error) {
	userID = strings.TrimSpace(userID)
	fileID = strings.TrimSpace(fileID)
	if userID == "" || fileID == "" {
		return nil, fmt.Errorf("user_id and file_id are required")
	}
	if version < 1 {
		return nil, fmt.Errorf("version must be >= 1")
	}
	path := "files/" + url.PathEscape(userID) + "/" + url.PathEscape(fileID) + "/version/" + strconv.Itoa(version)
	var out json.RawMessage
	err := c.getJSON(ctx, path, "fetch file version", &out)
	return out, err
}
