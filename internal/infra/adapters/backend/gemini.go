package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"ai-chat-client/internal/domain/ports/adapter"
	"ai-chat-client/internal/infra/metrics"
)

var _ adapter.ReplyGenerator = (*Gemini)(nil)

// Gemini generates real assistant replies using the official SDK.
type Gemini struct {
	client *genai.Client
	model  string
	maxOut int32
	log    *zerolog.Logger
}

func NewGemini(ctx context.Context, apiKey, baseURL, model string, log *zerolog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: model, maxOut: 1024, log: log}, nil
}

func (g *Gemini) GenerateReply(ctx context.Context, message string) (string, error) {
	chat, err := g.client.Chats.Create(
		ctx,
		g.model,
		&genai.GenerateContentConfig{MaxOutputTokens: g.maxOut},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("gemini send: %w", err)
	}

	if resp != nil && resp.UsageMetadata != nil {
		metrics.AddPromptTokens("gemini", int(resp.UsageMetadata.PromptTokenCount))
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", errors.New("gemini: no text in response")
	}
	return text, nil
}
