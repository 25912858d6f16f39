package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"agentui/internal/conversation"
	"agentui/internal/filesession"
)

const fileClearedNotice = "File cleared. You can now upload a new file or continue without a file."

// AttachUpload makes a freshly uploaded file the conversation's data file.
func (s *Service) AttachUpload(ctx context.Context, id, name, declaredType string, data []byte) (*conversation.Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("file name is required")
	}
	notice := fmt.Sprintf("Now using data file: %s (%.1f KB)", name, float64(len(data))/1024)
	return s.changeFile(ctx, id, notice, func(sess filesession.Session) filesession.Session {
		return sess.SelectUpload(name, declaredType, data)
	})
}

// SelectStored points the conversation at a file already held by the Files API.
func (s *Service) SelectStored(ctx context.Context, id, fileID, name, fileType string) (*conversation.Conversation, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil, invalid("file_id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fileID
	}
	notice := fmt.Sprintf("Now using existing file: %s (ID: %s)", name, fileID)
	return s.changeFile(ctx, id, notice, func(sess filesession.Session) filesession.Session {
		return sess.SelectStored(fileID, name, fileType)
	})
}

func (s *Service) ClearFile(ctx context.Context, id string) (*conversation.Conversation, error) {
	return s.changeFile(ctx, id, fileClearedNotice, func(sess filesession.Session) filesession.Session {
		return sess.Clear()
	})
}

func (s *Service) changeFile(ctx context.Context, id, notice string, next func(filesession.Session) filesession.Session) (*conversation.Conversation, error) {
	turn := conversation.NewTurn(conversation.RoleSystem, notice)
	c, err := s.update(ctx, id, func(c *conversation.Conversation) error {
		c.Session = next(c.Session)
		c.UpdatedAt = time.Now().UTC()
		c.Append(turn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("chat: file session conversation=%s kind=%s file=%q", c.ID, c.Session.Kind, c.Session.DisplayName)
	s.refreshViewer(c.ID, c.Session)
	s.publishTurns(c.ID, turn)
	s.publishSession(c.ID, c.Session, false)
	return c, nil
}
