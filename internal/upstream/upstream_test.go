package upstream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesListPassesThroughJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/files", r.URL.Path)
		assert.Equal(t, "system user", r.URL.Query().Get("user_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"user_id":"system user","files":[{"file_id":"f1","file_name":"a.csv","row_count":3}]}`)
	}))
	defer srv.Close()

	c := NewFilesClient(srv.URL+"/api/", srv.Client())
	raw, err := c.List(context.Background(), "system user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"system user","files":[{"file_id":"f1","file_name":"a.csv","row_count":3}]}`, string(raw))
}

func TestFilesDeleteUsesPathSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/files/u1/f%2F1", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"message":"deleted"}`)
	}))
	defer srv.Close()

	raw, err := NewFilesClient(srv.URL+"/api", nil).Delete(context.Background(), "u1", "f/1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"deleted"}`, string(raw))
}

func TestFilesVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/u1/f1/version/2", r.URL.Path)
		_, _ = io.WriteString(w, `{"version":2}`)
	}))
	defer srv.Close()

	c := NewFilesClient(srv.URL, nil)
	raw, err := c.Version(context.Background(), "u1", "f1", 2)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2}`, string(raw))

	_, err = c.Version(context.Background(), "u1", "f1", 0)
	assert.Error(t, err)
}

func TestStatusErrorUsesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"File not found"}`)
	}))
	defer srv.Close()

	_, err := NewFilesClient(srv.URL, nil).Delete(context.Background(), "u", "f")
	status, msg, ok := StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "File not found", msg)
	assert.False(t, IsTransport(err))
}

func TestStatusErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	_, err := NewFilesClient(srv.URL, nil).List(context.Background(), "u")
	status, msg, ok := StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Failed to fetch files: Bad Gateway", msg)
}

func TestStatusErrorJoinsValidationDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":[{"msg":"field required"},{"msg":"bad value"}]}`)
	}))
	defer srv.Close()

	_, err := NewSupervisorClient(srv.URL, nil).CurrentProvider(context.Background())
	_, msg, ok := StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, "field required; bad value", msg)
}

func TestTransportErrorOnUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewFilesClient(url, nil).List(context.Background(), "u")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	_, _, ok := StatusOf(err)
	assert.False(t, ok)
}

func TestTransportErrorOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	}))
	defer srv.Close()

	_, err := NewSupervisorClient(srv.URL, nil).CurrentProvider(context.Background())
	assert.True(t, IsTransport(err))
}

func TestAnalyzeSendsUploadAsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/supervisor/analytics/query", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "describe", r.FormValue("query"))
		assert.Empty(t, r.FormValue("file_id"))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "sales.csv", hdr.Filename)
		assert.Equal(t, "a,b\n1,2", string(body))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":          "ok",
			"file_id":          "f-1",
			"file_updated":     true,
			"data_base64":      base64.StdEncoding.EncodeToString([]byte("a,b\n1,3")),
			"plot_base64":      base64.StdEncoding.EncodeToString([]byte("png")),
			"plot_path":        "plots/p.png",
			"version_info":     map[string]any{"current_version": 2, "previous_version": 1, "changes_detected": true},
			"plot_base64_list": nil,
		})
	}))
	defer srv.Close()

	sup, ok := LookupSupervisor("Analytics")
	require.True(t, ok)
	resp, err := NewSupervisorClient(srv.URL+"/api/v1", nil).Analyze(context.Background(), AnalyzeRequest{
		Query:      " describe ",
		Supervisor: sup,
		FileName:   "sales.csv",
		FileData:   []byte("a,b\n1,2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message)
	assert.Equal(t, []byte("a,b\n1,3"), resp.FileContent())
	require.Len(t, resp.Plots(), 1)
	assert.Equal(t, []byte("png"), resp.Plots()[0].Base64)

	out := resp.Outcome()
	assert.Equal(t, "f-1", out.FileID)
	require.NotNil(t, out.Version)
	assert.Equal(t, 2, out.Version.CurrentVersion)
	require.NotNil(t, out.Version.PreviousVersion)
	assert.Equal(t, 1, *out.Version.PreviousVersion)
}

func TestAnalyzeSendsFileIDInsteadOfBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/supervisor/query", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "f-9", r.FormValue("file_id"))
		_, _, err := r.FormFile("file")
		assert.ErrorIs(t, err, http.ErrMissingFile)
		_, _ = io.WriteString(w, `{"message":"done"}`)
	}))
	defer srv.Close()

	resp, err := NewSupervisorClient(srv.URL, nil).Analyze(context.Background(), AnalyzeRequest{
		Query:    "q",
		FileID:   "f-9",
		FileData: []byte("ignored"),
	})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Message)
	assert.Nil(t, resp.FileContent())
}

func TestSetProviderDropsModelForNonOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/llm/set-provider", r.URL.Path)
		var in ProviderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "groq", in.Provider)
		assert.Empty(t, in.OllamaModel)
		_, _ = io.WriteString(w, `{"success":true,"message":"switched","current_provider":"groq"}`)
	}))
	defer srv.Close()

	resp, err := NewSupervisorClient(srv.URL, nil).SetProvider(context.Background(), ProviderRequest{Provider: "groq", OllamaModel: "qwen"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "groq", resp.CurrentProvider)
}

func TestLookupSupervisor(t *testing.T) {
	def, ok := LookupSupervisor("")
	require.True(t, ok)
	assert.Equal(t, DefaultSupervisor, def.ID)
	assert.False(t, def.NeedsData)

	_, ok = LookupSupervisor("astrology")
	assert.False(t, ok)
	assert.Len(t, Supervisors(), 4)
}
