package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"ai-chat-client/internal/domain/ports/adapter"
	"ai-chat-client/internal/infra/metrics"
)

var _ adapter.ReplyGenerator = (*OpenAI)(nil)

const assistantSystemPrompt = "You are a helpful assistant inside a mobile chat app. Keep answers concise."

// OpenAI generates real assistant replies via the Chat Completions API.
// Drop-in replacement for the simulated generator; the stores never know
// the difference.
type OpenAI struct {
	client openai.Client
	model  string
	enc    *tiktoken.Tiktoken // prompt size estimate, best effort
	log    *zerolog.Logger
}

func NewOpenAI(apiKey, model string, log *zerolog.Logger) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, _ = tiktoken.GetEncoding("cl100k_base")
	}
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		enc:    enc,
		log:    log,
	}, nil
}

func (o *OpenAI) GenerateReply(ctx context.Context, message string) (string, error) {
	if o.enc != nil {
		n := len(o.enc.Encode(message, nil, nil))
		metrics.AddPromptTokens("openai", n)
		o.log.Debug().Int("prompt_tokens", n).Str("model", o.model).Msg("openai prompt sized")
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(assistantSystemPrompt),
			openai.UserMessage(message),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
