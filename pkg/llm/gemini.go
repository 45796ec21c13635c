package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiService is the Completer used when LLM_PROVIDER=gemini.
type GeminiService struct {
	client    *genai.Client
	modelName string
}

// NewGeminiService creates a new Gemini AI service instance.
func NewGeminiService(apiKey, modelName string) (*GeminiService, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiService{client: client, modelName: modelName}, nil
}

func (s *GeminiService) Complete(ctx context.Context, system, user string) (string, error) {
	log.Debugf("Requesting %s completion for message of %d bytes", s.modelName, len(user))

	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		log.Errorf("Error generating Gemini content: %v", err)
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn("Gemini returned no candidates or content.")
		return "", fmt.Errorf("gemini API returned no content")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text, ok := part.(genai.Text)
		if !ok {
			log.Errorf("Gemini response part is not text: %v", part)
			return "", fmt.Errorf("gemini API returned non-text content")
		}
		b.WriteString(string(text))
	}
	return b.String(), nil
}

func (s *GeminiService) Close() error {
	log.Info("Closing Gemini AI service client.")
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
