package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"agentui/internal/filesession"
)

// SupervisorType is a backend analysis persona and its endpoint.
type SupervisorType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	NeedsData   bool   `json:"needs_data"`
}

const DefaultSupervisor = "default"

var supervisors = []SupervisorType{
	{
		ID:          DefaultSupervisor,
		Name:        "General Supervisor",
		Description: "Routes each query to the most suitable specialist agent",
		Endpoint:    "supervisor/query",
	},
	{
		ID:          "analytics",
		Name:        "Analytics Supervisor",
		Description: "Exploratory analysis, statistics, and plots",
		Endpoint:    "supervisor/analytics/query",
		NeedsData:   true,
	},
	{
		ID:          "ml",
		Name:        "ML Supervisor",
		Description: "Model training, evaluation, and feature work",
		Endpoint:    "supervisor/ml/query",
		NeedsData:   true,
	},
	{
		ID:          "preprocessing",
		Name:        "Preprocessing Supervisor",
		Description: "Cleaning, imputation, and reshaping of datasets",
		Endpoint:    "supervisor/preprocessing/query",
		NeedsData:   true,
	},
}

// Supervisors lists the known supervisor types.
func Supervisors() []SupervisorType {
	return append([]SupervisorType(nil), supervisors...)
}

// LookupSupervisor resolves an id; an empty id means the default supervisor.
func LookupSupervisor(id string) (SupervisorType, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		id = DefaultSupervisor
	}
	for _, s := range supervisors {
		if s.ID == id {
			return s, true
		}
	}
	return SupervisorType{}, false
}

type AnalyzeRequest struct {
	Query      string
	Supervisor SupervisorType
	FileID     string
	FileName   string
	FileData   []byte
}

// PlotData is one generated plot.
type PlotData struct {
	Path        string `json:"path,omitempty"`
	Base64      []byte `json:"base64,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

// AnalyzeResponse mirrors the Supervisor API answer. Base64 fields decode
// straight into bytes.
type AnalyzeResponse struct {
	Message           string                   `json:"message"`
	Status            string                   `json:"status,omitempty"`
	Error             string                   `json:"error,omitempty"`
	PlotPath          string                   `json:"plot_path,omitempty"`
	PlotPaths         []string                 `json:"plot_paths,omitempty"`
	HasPlot           bool                     `json:"has_plot,omitempty"`
	HasMultiplePlots  bool                     `json:"has_multiple_plots,omitempty"`
	PlotBase64        []byte                   `json:"plot_base64,omitempty"`
	PlotBase64List    []PlotData               `json:"plot_base64_list,omitempty"`
	PlotContentType   string                   `json:"plot_content_type,omitempty"`
	HasData           bool                     `json:"has_data,omitempty"`
	DataBase64        []byte                   `json:"data_base64,omitempty"`
	DataContentType   string                   `json:"data_content_type,omitempty"`
	FileID            string                   `json:"file_id,omitempty"`
	FileUpdated       bool                     `json:"file_updated,omitempty"`
	FileContentBase64 []byte                   `json:"file_content_base64,omitempty"`
	FileName          string                   `json:"file_name,omitempty"`
	FileType          string                   `json:"file_type,omitempty"`
	VersionInfo       *filesession.VersionInfo `json:"version_info,omitempty"`
}

// Plots returns every plot, falling back to the single legacy plot field.
func (r *AnalyzeResponse) Plots() []PlotData {
	if len(r.PlotBase64List) > 0 {
		return r.PlotBase64List
	}
	if len(r.PlotBase64) > 0 {
		return []PlotData{{
			Path:        r.PlotPath,
			Base64:      r.PlotBase64,
			ContentType: r.PlotContentType,
		}}
	}
	return nil
}

// FileContent is the newest file content in the response: generated data
// wins over the explicit file content field.
func (r *AnalyzeResponse) FileContent() []byte {
	if len(r.DataBase64) > 0 {
		return r.DataBase64
	}
	if len(r.FileContentBase64) > 0 {
		return r.FileContentBase64
	}
	return nil
}

// Outcome extracts the file-related part of the response.
func (r *AnalyzeResponse) Outcome() filesession.Outcome {
	return filesession.Outcome{
		FileID:      r.FileID,
		FileUpdated: r.FileUpdated,
		Version:     r.VersionInfo,
		Content:     r.FileContent(),
		FileName:    r.FileName,
		FileType:    r.FileType,
	}
}

type ProviderRequest struct {
	Provider    string `json:"provider"`
	OllamaModel string `json:"ollama_model,omitempty"`
}

type ProviderResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	CurrentProvider string `json:"current_provider"`
	OllamaModel     string `json:"ollama_model,omitempty"`
}

// SupervisorClient is the Supervisor API: analysis queries plus the LLM
// provider settings.
type SupervisorClient struct {
	base
}

func NewSupervisorClient(baseURL string, hc *http.Client) *SupervisorClient {
	return &SupervisorClient{base: newBase(baseURL, hc)}
}

// Analyze submits a query with either an uploaded file or a stored file id.
func (c *SupervisorClient) Analyze(ctx context.Context, in AnalyzeRequest) (*AnalyzeResponse, error) {
	const verb = "analyze"
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	sup := in.Supervisor
	if sup.Endpoint == "" {
		sup, _ = LookupSupervisor(DefaultSupervisor)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("query", query); err != nil {
		return nil, &TransportError{Op: verb, Err: err}
	}
	switch {
	case strings.TrimSpace(in.FileID) != "":
		if err := mw.WriteField("file_id", strings.TrimSpace(in.FileID)); err != nil {
			return nil, &TransportError{Op: verb, Err: err}
		}
	case in.FileData != nil:
		name := strings.TrimSpace(in.FileName)
		if name == "" {
			name = "upload"
		}
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			return nil, &TransportError{Op: verb, Err: err}
		}
		if _, err := part.Write(in.FileData); err != nil {
			return nil, &TransportError{Op: verb, Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &TransportError{Op: verb, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(sup.Endpoint), &body)
	if err != nil {
		return nil, &TransportError{Op: verb, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	raw, err := c.send(req, verb)
	if err != nil {
		return nil, err
	}
	var out AnalyzeResponse
	if err := decodeBody(raw, verb, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SupervisorClient) CurrentProvider(ctx context.Context) (*ProviderResponse, error) {
	var out ProviderResponse
	if err := c.getJSON(ctx, "llm/current-provider", "get provider", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SupervisorClient) SetProvider(ctx context.Context, in ProviderRequest) (*ProviderResponse, error) {
	const verb = "set provider"
	in.Provider = strings.TrimSpace(in.Provider)
	if in.Provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if in.Provider != "ollama" {
		in.OllamaModel = ""
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, &TransportError{Op: verb, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("llm/set-provider"), bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: verb, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	raw, err := c.send(req, verb)
	if err != nil {
		return nil, err
	}
	var out ProviderResponse
	if err := decodeBody(raw, verb, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
