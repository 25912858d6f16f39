package chat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"agentui/internal/filesession"
	"agentui/internal/tabular"
)

// Preview is one page of the conversation's current file. When the file
// could not be decoded Error is set and the page is empty.
type Preview struct {
	File  SessionView  `json:"file"`
	Page  tabular.Page `json:"page"`
	Error string       `json:"error,omitempty"`
}

// Preview decodes the newest file content and returns the requested page.
// The page index is clamped to the available pages.
func (s *Service) Preview(ctx context.Context, id string, pageIndex, pageSize int) (*Preview, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, name, typ := c.Session.ViewContent()
	if data == nil {
		return nil, ErrNoFile
	}
	v := s.viewer(c.ID)
	if _, ok, loading := v.Current(); !ok && !loading {
		v.Load(data, typ, name)
	}
	t, err := v.Wait(ctx)
	if err != nil {
		return nil, err
	}

	out := &Preview{File: ViewOf(c.Session)}
	if !t.OK() {
		out.Error = t.Error
		out.Page = tabular.Page{Headers: []string{}, Rows: [][]string{}}
		return out, nil
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	pageIndex = tabular.ClampPage(pageIndex, tabular.TotalPages(t.TotalRows, pageSize))
	out.Page = tabular.Paginate(t, pageIndex, pageSize)
	return out, nil
}

func (s *Service) viewer(id string) *tabular.Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.viewers[id]
	if !ok {
		v = tabular.NewViewer(s.cachedDecode)
		s.viewers[id] = v
	}
	return v
}

// refreshViewer starts decoding the session's content in the background so
// a later Preview finds it ready.
func (s *Service) refreshViewer(id string, sess filesession.Session) {
	v := s.viewer(id)
	data, name, typ := sess.ViewContent()
	if data == nil {
		v.Reset()
		return
	}
	v.Load(data, typ, name)
}

func (s *Service) cachedDecode(data []byte, declaredType, fileName string) tabular.Table {
	key := decodeKey(data, declaredType, fileName)
	t, _ := s.decodeCache.GetOrLoad(key, func() (tabular.Table, int, error) {
		return tabular.Decode(data, declaredType, fileName), len(data), nil
	})
	return t
}

func decodeKey(data []byte, declaredType, fileName string) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(tabular.NormalizeFormat(declaredType)))
	h.Write([]byte{0})
	h.Write([]byte(tabular.FormatFromName(strings.TrimSpace(fileName))))
	return hex.EncodeToString(h.Sum(nil))
}
