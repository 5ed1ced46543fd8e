package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/mindwellhq/mindwell-backend/internal/config"
	"github.com/mindwellhq/mindwell-backend/internal/services"
)

// textGenTimeout bounds the external text-generation call so a slow model
// can't pin request handlers.
const textGenTimeout = 15 * time.Second

var textGenerator services.ReplyGenerator

// InitChatbot creates the text-generation client. Without an API key the
// chatbot endpoints answer 503.
func InitChatbot(cfg *config.Config) error {
	svc, err := services.NewTextGenService(cfg.GeminiAPIKey)
	if err != nil {
		return err
	}
	textGenerator = svc
	return nil
}

type ChatbotRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatbotResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// Chatbot handles one chatbot exchange. Sessions live in process memory only;
// every call sweeps idle sessions before touching the caller's.
func Chatbot(w http.ResponseWriter, r *http.Request) {
	var req ChatbotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No message provided"})
		return
	}

	reply, sessionID, status := chatbotExchange(r.Context(), req.SessionID, req.Message)
	if status != http.StatusOK {
		writeJSON(w, status, map[string]string{"error": reply})
		return
	}

	writeJSON(w, http.StatusOK, ChatbotResponse{SessionID: sessionID, Response: reply})
}

// chatbotExchange runs the shared session + generation flow for both the HTTP
// and WebSocket chatbot endpoints. Returns the reply (or an error message),
// the session id, and an HTTP-style status.
func chatbotExchange(ctx context.Context, sessionID, message string) (string, string, int) {
	if textGenerator == nil {
		return "Chatbot is not available", sessionID, http.StatusServiceUnavailable
	}

	services.ChatSessions.Sweep()
	sessionID = services.ChatSessions.Touch(sessionID)

	services.ChatSessions.Append(sessionID, "user", message)
	services.ArchiveTranscriptAsync(sessionID, "user", message)

	genCtx, cancel := context.WithTimeout(ctx, textGenTimeout)
	defer cancel()

	reply, err := textGenerator.GenerateReply(genCtx, message)
	if err != nil {
		log.Printf("ERROR: text generation failed: %v", err)
		return "Failed to generate a response", sessionID, http.StatusBadGateway
	}

	services.ChatSessions.Append(sessionID, "bot", reply)
	services.ArchiveTranscriptAsync(sessionID, "bot", reply)

	return reply, sessionID, http.StatusOK
}
