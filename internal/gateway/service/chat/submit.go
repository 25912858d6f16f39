package chat

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strconv"
	"strings"

	"agentui/internal/conversation"
	"agentui/internal/filesession"
	"agentui/internal/upstream"
)

const noResponse = "No response generated"

type SubmitResult struct {
	Conversation *conversation.Conversation `json:"conversation"`
	// Warning is set when a data-focused supervisor was asked without a
	// file. The query still runs.
	Warning string `json:"warning,omitempty"`
	// OpenViewer hints that the answer produced a new file version worth
	// showing right away.
	OpenViewer bool `json:"open_viewer,omitempty"`
}

// Submit sends a query to the supervisor. The user turn is stored before the
// request goes out and stays even when the request fails; on failure no
// agent turn is added and the session is left as it was.
func (s *Service) Submit(ctx context.Context, id, query, supervisor string) (*SubmitResult, error) {
	id = strings.TrimSpace(id)
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("query is required")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	token, ok := s.acquire(id)
	if !ok {
		return nil, ErrBusy
	}
	defer s.release(id, token)

	var (
		sup      upstream.SupervisorType
		before   filesession.Session
		payload  filesession.Payload
		userTurn = conversation.NewTurn(conversation.RoleUser, query)
	)
	_, err := s.update(ctx, id, func(c *conversation.Conversation) error {
		wanted := supervisor
		if strings.TrimSpace(wanted) == "" {
			wanted = c.Supervisor
		}
		found, ok := upstream.LookupSupervisor(wanted)
		if !ok {
			return invalid("unknown supervisor: %s", strings.TrimSpace(wanted))
		}
		sup = found
		c.Supervisor = sup.ID
		before = c.Session
		payload = c.Session.Outgoing()
		c.Append(userTurn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishTurns(id, userTurn)

	res := &SubmitResult{}
	if sup.NeedsData && !before.HasFile() {
		res.Warning = fmt.Sprintf("The %s typically requires a data file for optimal results.", sup.Name)
	}

	log.Printf("chat: submit conversation=%s supervisor=%s file_id=%q upload=%t", id, sup.ID, payload.FileID, payload.Data != nil)
	resp, err := s.analyzer.Analyze(ctx, upstream.AnalyzeRequest{
		Query:      query,
		Supervisor: sup,
		FileID:     payload.FileID,
		FileName:   payload.FileName,
		FileData:   payload.Data,
	})
	if err != nil {
		log.Printf("chat: analyze failed conversation=%s: %v", id, err)
		return nil, err
	}

	content := resp.Message
	if content == "" {
		content = noResponse
	}
	agentTurn := conversation.NewTurn(conversation.RoleAgent, content)
	if m, err := s.offload(ctx, id, agentTurn.ID, resp); err != nil {
		log.Printf("chat: media offload failed conversation=%s: %v", id, err)
	} else {
		agentTurn.Media = m
	}
	agentTurn.File = fileMetadata(resp)

	var (
		appended []conversation.Turn
		applied  bool
	)
	c, err := s.update(ctx, id, func(c *conversation.Conversation) error {
		if sameFile(c.Session, before) {
			c.Session = c.Session.Apply(resp.Outcome())
			applied = true
		} else {
			log.Printf("chat: file changed during analysis, dropping file outcome conversation=%s", id)
		}
		if resp.FileUpdated && resp.VersionInfo != nil {
			notice := conversation.NewTurn(conversation.RoleSystem, versionNotice(resp.VersionInfo))
			c.Append(notice)
			appended = append(appended, notice)
		}
		c.Append(agentTurn)
		appended = append(appended, agentTurn)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Conversation = c
	res.OpenViewer = applied && resp.FileUpdated && resp.VersionInfo != nil && resp.VersionInfo.ChangesDetected
	if applied {
		s.refreshViewer(id, c.Session)
	}
	s.publishTurns(id, appended...)
	if applied {
		s.publishSession(id, c.Session, res.OpenViewer)
	}
	return res, nil
}

func versionNotice(v *filesession.VersionInfo) string {
	msg := "File updated to version " + strconv.Itoa(v.CurrentVersion)
	if v.ChangeSummary != "" {
		msg += ": " + v.ChangeSummary
	}
	return msg
}

// sameFile reports whether the session still refers to the file a request
// was sent with.
func sameFile(now, then filesession.Session) bool {
	return now.Kind == then.Kind &&
		now.FileID == then.FileID &&
		now.DisplayName == then.DisplayName &&
		bytes.Equal(now.Upload, then.Upload)
}

func fileMetadata(resp *upstream.AnalyzeResponse) *conversation.FileMetadata {
	if resp.FileID == "" && !resp.FileUpdated && resp.VersionInfo == nil {
		return nil
	}
	return &conversation.FileMetadata{
		FileID:   resp.FileID,
		FileName: resp.FileName,
		FileType: resp.FileType,
		Updated:  resp.FileUpdated,
		Version:  resp.VersionInfo,
	}
}

// offload moves plot and data bytes into the media store and returns
// references to them.
func (s *Service) offload(ctx context.Context, conversationID, turnID string, resp *upstream.AnalyzeResponse) (*conversation.Media, error) {
	m := &conversation.Media{}
	for i, p := range resp.Plots() {
		if len(p.Base64) == 0 {
			continue
		}
		ct := firstNonEmpty(p.ContentType, resp.PlotContentType, "image/png")
		name := safeName(firstNonEmpty(p.Filename, p.Path), "plot-"+strconv.Itoa(i+1)+extensionFor(ct))
		ref := path.Join("turns", turnID, strconv.Itoa(i+1)+"-"+name)
		if err := s.media.Put(ctx, conversationID, ref, p.Base64, ct); err != nil {
			return nil, fmt.Errorf("store plot: %w", err)
		}
		m.Plots = append(m.Plots, conversation.Attachment{Name: name, ContentType: ct, Ref: ref, Size: len(p.Base64)})
	}
	if len(resp.DataBase64) > 0 {
		ct := firstNonEmpty(resp.DataContentType, "text/csv")
		name := safeName(resp.FileName, "data"+extensionFor(ct))
		ref := path.Join("turns", turnID, "data-"+name)
		if err := s.media.Put(ctx, conversationID, ref, resp.DataBase64, ct); err != nil {
			return nil, fmt.Errorf("store data: %w", err)
		}
		m.Data = &conversation.Attachment{Name: name, ContentType: ct, Ref: ref, Size: len(resp.DataBase64)}
	}
	if m.Empty() {
		return nil, nil
	}
	return m, nil
}

func safeName(raw, fallback string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return fallback
	}
	return name
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	case "text/csv":
		return ".csv"
	case "application/json":
		return ".json"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
