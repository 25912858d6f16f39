package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	eventsWSWriteWait = 10 * time.Second
	eventsWSPongWait  = 60 * time.Second
	eventsWSPingEvery = (eventsWSPongWait * 9) / 10
)

var eventsWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type eventsWSInbound struct {
	Type string `json:"type"`
}

type eventsWSControl struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Code           string `json:"code,omitempty"`
	Message        string `json:"message,omitempty"`
}

// HandleEvents streams conversation events over a websocket. Clients may
// send {"type":"ping"} and {"type":"cancel"}.
func (h *ConversationHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		writeServiceError(w, "conversation events", err)
		return
	}

	conn, err := eventsWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// The request context is detached from the hijacked connection.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(eventsWSPongWait)); err != nil {
		log.Printf("events ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsWSPongWait))
	})

	writeCh := make(chan any, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(eventsWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(eventsWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(eventsWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	sub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		pushEventsWS(writeCh, eventsWSControl{Type: "error", Code: "not_found", Message: err.Error()})
		cancel()
		<-writerDone
		return
	}
	pushEventsWS(writeCh, eventsWSControl{Type: "subscribed", ConversationID: id})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-sub:
				if !ok {
					return
				}
				pushEventsWS(writeCh, evt)
			}
		}
	}()

	for {
		var in eventsWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushEventsWS(writeCh, eventsWSControl{Type: "pong"})
		case "cancel":
			if err := h.svc.Cancel(ctx, id); err != nil {
				pushEventsWS(writeCh, eventsWSControl{Type: "error", Code: "internal", Message: err.Error()})
			}
		case "":
			pushEventsWS(writeCh, eventsWSControl{Type: "error", Code: "invalid_argument", Message: "type is required"})
		default:
			pushEventsWS(writeCh, eventsWSControl{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + in.Type})
		}
	}
}

func pushEventsWS(writeCh chan any, out any) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
