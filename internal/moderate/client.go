// Package moderate asks a hosted language model which transcript words
// need censoring.
package moderate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fmueller/autocensor/internal/transcript"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const DefaultModel = "gpt-4o-mini"

// completer is the slice of the OpenAI client the moderator uses;
// narrowed to an interface so tests can stub the API.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api    completer
	model  string
	logger *zap.Logger
}

func NewClient(apiKey, model string, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OpenAI API key missing; set OPENAI_API_KEY or add it to .env")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{api: openai.NewClient(apiKey), model: model, logger: logger}, nil
}

// FlagWords sends the transcript to the model and returns the words it
// wants censored. The response is requested as a JSON object and parsed
// leniently since models occasionally wrap or truncate the contract.
func (c *Client) FlagWords(ctx context.Context, words []transcript.Word, fewShotExamples string) ([]transcript.Word, error) {
	if len(words) == 0 {
		return nil, nil
	}

	prompt := BuildPrompt(words, fewShotExamples)
	c.logger.Debug("requesting moderation", zap.String("model", c.model), zap.Int("words", len(words)))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("moderation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("moderation response contained no choices")
	}

	flagged, err := ParseFlagged(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse moderation response: %w", err)
	}

	return flagged, nil
}

type flaggedPayload struct {
	Words []transcript.Word `json:"words"`
}

// ParseFlagged decodes the model's answer. Accepts the contract form
// {"words": [...]}, a bare array, and either wrapped in a markdown code
// fence.
func ParseFlagged(raw string) ([]transcript.Word, error) {
	text := strings.TrimSpace(raw)
	text = stripCodeFence(text)
	if text == "" {
		return nil, nil
	}

	var payload flaggedPayload
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		return payload.Words, nil
	}

	var words []transcript.Word
	if err := json.Unmarshal([]byte(text), &words); err == nil {
		return words, nil
	}

	return nil, fmt.Errorf("response is neither a words object nor an array: %.80s", text)
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
