// Package filesession tracks which data file a conversation is working with
// and decides whether the next analysis request carries file bytes or a
// backend file identifier.
package filesession

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind tags the state of a Session.
type Kind int

const (
	// None means no file is attached.
	None Kind = iota
	// NewUpload holds local bytes the backend has not seen yet.
	NewUpload
	// ExistingReference points at a stored backend file; no local bytes.
	ExistingReference
	// ReferencedUpload is a NewUpload the backend has taken ownership of.
	ReferencedUpload
)

var kindNames = map[Kind]string{
	None:              "none",
	NewUpload:         "new_upload",
	ExistingReference: "existing_reference",
	ReferencedUpload:  "referenced_upload",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	for kind, name := range kindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown file session kind %q", s)
}

// VersionInfo describes how a stored file changed during an analysis turn.
type VersionInfo struct {
	CurrentVersion  int    `json:"current_version"`
	PreviousVersion *int   `json:"previous_version,omitempty"`
	ChangesDetected bool   `json:"changes_detected"`
	ChangeSummary   string `json:"change_summary,omitempty"`
}

// Session is an immutable value; every transition returns a new Session.
type Session struct {
	Kind         Kind         `json:"kind"`
	FileID       string       `json:"file_id,omitempty"`
	DisplayName  string       `json:"display_name,omitempty"`
	DeclaredType string       `json:"declared_type,omitempty"`
	Upload       []byte       `json:"upload,omitempty"`
	Version      *VersionInfo `json:"version_info,omitempty"`
	Snapshot     []byte       `json:"content_snapshot,omitempty"`
}

// Outcome is the part of an analysis response that concerns the file.
type Outcome struct {
	FileID      string
	FileUpdated bool
	Version     *VersionInfo
	Content     []byte
	FileName    string
	FileType    string
}

// Payload is what the next analysis request must send. At most one of
// FileID and Data is set.
type Payload struct {
	FileID   string
	FileName string
	Data     []byte
}

// Empty reports whether the request carries no file at all.
func (p Payload) Empty() bool {
	return p.FileID == "" && p.Data == nil
}

// SelectUpload attaches a new local file. Whatever was held before,
// including a backend identifier, a snapshot, and version info, is dropped.
func (s Session) SelectUpload(name, declaredType string, content []byte) Session {
	if content == nil {
		content = []byte{}
	}
	return Session{
		Kind:         NewUpload,
		DisplayName:  strings.TrimSpace(name),
		DeclaredType: strings.TrimSpace(declaredType),
		Upload:       append([]byte(nil), content...),
	}
}

// SelectStored points the session at a file the backend already stores.
// Snapshot and version info stay empty until a response supplies them.
func (s Session) SelectStored(fileID, name, declaredType string) Session {
	return Session{
		Kind:         ExistingReference,
		FileID:       strings.TrimSpace(fileID),
		DisplayName:  strings.TrimSpace(name),
		DeclaredType: strings.TrimSpace(declaredType),
	}
}

// Clear discards the file.
func (s Session) Clear() Session {
	return Session{Kind: None}
}

// Apply folds an analysis response into the session. A NewUpload without
// an identifier adopts the returned one and becomes a ReferencedUpload.
// Version info and content replace what was held (last write wins).
//
// A None session only changes when the response names a file: it then
// becomes an ExistingReference to that file. Anything else leaves it empty.
func (s Session) Apply(o Outcome) Session {
	id := strings.TrimSpace(o.FileID)
	if s.Kind == None {
		if id == "" {
			return Session{Kind: None}
		}
		name := strings.TrimSpace(o.FileName)
		if name == "" {
			name = id
		}
		s = Session{}.SelectStored(id, name, o.FileType)
	}
	next := s
	if id != "" && next.FileID == "" {
		next.FileID = id
		if next.Kind == NewUpload {
			next.Kind = ReferencedUpload
		}
	}
	if o.Version != nil {
		v := *o.Version
		next.Version = &v
	}
	if o.Content != nil {
		next.Snapshot = append([]byte(nil), o.Content...)
	}
	if name := strings.TrimSpace(o.FileName); name != "" {
		next.DisplayName = name
	}
	if typ := strings.TrimSpace(o.FileType); typ != "" {
		next.DeclaredType = typ
	}
	return next
}

// Outgoing returns the file part of the next analysis request. Once the
// backend has assigned an identifier the bytes are never re-sent.
func (s Session) Outgoing() Payload {
	switch s.Kind {
	case ExistingReference, ReferencedUpload:
		return Payload{FileID: s.FileID}
	case NewUpload:
		if s.FileID != "" {
			return Payload{FileID: s.FileID}
		}
		return Payload{FileName: s.DisplayName, Data: s.Upload}
	}
	return Payload{}
}

// HasFile reports whether any file is attached.
func (s Session) HasFile() bool {
	return s.Kind != None
}

// ViewContent returns the bytes the file viewer should decode: the latest
// snapshot from the backend, or the original upload when no snapshot exists.
func (s Session) ViewContent() (data []byte, name, declaredType string) {
	if s.Snapshot != nil {
		return s.Snapshot, s.DisplayName, s.DeclaredType
	}
	return s.Upload, s.DisplayName, s.DeclaredType
}
