package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var chatbotUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// ChatbotFrame is one message from the frontend over the chatbot WebSocket.
type ChatbotFrame struct {
	Message string `json:"message"`
}

// ChatbotWebSocket streams chatbot exchanges over a single connection. The
// connection is bound to one session: either the session_id query parameter
// or a fresh one created on the first message.
func ChatbotWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	conn, err := chatbotUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(64 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var frame ChatbotFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			_ = conn.WriteJSON(map[string]string{"error": "Invalid message"})
			continue
		}
		if frame.Message == "" {
			_ = conn.WriteJSON(map[string]string{"error": "No message provided"})
			continue
		}

		reply, sid, status := chatbotExchange(r.Context(), sessionID, frame.Message)
		if status != http.StatusOK {
			_ = conn.WriteJSON(map[string]string{"error": reply})
			continue
		}
		sessionID = sid

		if err := conn.WriteJSON(ChatbotResponse{SessionID: sessionID, Response: reply}); err != nil {
			return
		}
	}
}
