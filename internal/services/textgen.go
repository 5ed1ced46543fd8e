package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ReplyGenerator produces a single reply for a single user utterance. The
// underlying model is treated as a black box: message in, reply out.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, message string) (string, error)
}

// TextGenService wraps the Gemini API behind ReplyGenerator.
type TextGenService struct {
	client *genai.Client
	model  string
}

func NewTextGenService(apiKey string) (*TextGenService, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &TextGenService{client: client, model: "gemini-1.5-flash"}, nil
}

const chatbotPrompt = `You are a supportive assistant on a therapy-services website.
Reply to the user's message in a warm, concise way. Do not give medical
diagnoses; suggest talking to a professional for clinical questions.

User message:
%s`

// GenerateReply forwards one utterance to the model and returns its reply.
// Callers are expected to bound ctx with a timeout.
func (s *TextGenService) GenerateReply(ctx context.Context, message string) (string, error) {
	model := s.client.GenerativeModel(s.model)

	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(chatbotPrompt, message)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", resp.Candidates[0].Content.Parts[0])
	}
	return strings.TrimSpace(string(text)), nil
}

// Close releases the underlying client.
func (s *TextGenService) Close() error {
	return s.client.Close()
}
