package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Viewers are read-only and the session id is the only credential,
	// same as the SSE endpoint.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebsocket serves the same live stream as handleStream over a
// websocket, for clients that prefer it to SSE.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	publicID, ok := s.viewerSession(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch, err := s.registry.Subscribe(publicID)
	if err != nil {
		return
	}
	defer s.registry.Unsubscribe(publicID, ch)

	// Viewers never send data; the read loop only notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case frame, open := <-ch.Frames():
			if !open {
				return
			}
			deadline := time.Now().Add(wsWriteTimeout)
			var writeErr error
			if frame.Ping {
				writeErr = conn.WriteControl(websocket.PingMessage, nil, deadline)
			} else {
				_ = conn.SetWriteDeadline(deadline)
				writeErr = conn.WriteMessage(websocket.TextMessage, frame.Data)
			}
			if writeErr != nil {
				return
			}
		}
	}
}
