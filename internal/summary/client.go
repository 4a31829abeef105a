package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"nosybot/internal/model"
)

// ErrNoContent is returned when the model answered with an empty completion.
var ErrNoContent = errors.New("summarization returned no content")

const recapPrompt = `You are an encouraging personal assistant. The user gives you a bulleted list of tasks they completed. Write a warm, upbeat recap of their accomplishments in 2-3 short paragraphs. Do not invent tasks that are not on the list.`

// Summarizer turns a list of completed tasks into prose.
type Summarizer interface {
	Summarize(ctx context.Context, tasks []model.Task) (string, error)
}

// Completer answers a raw prompt. Used by the REST facade's chat endpoint.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	llm llms.Model
}

var _ Summarizer = (*Client)(nil)
var _ Completer = (*Client)(nil)

func NewClient(apiKey, baseURL, modelName string) (*Client, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return &Client{llm: llm}, nil
}

// Summarize produces an encouraging recap of the given completed tasks.
func (c *Client) Summarize(ctx context.Context, tasks []model.Task) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(recapPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(BulletList(tasks))},
		},
	}
	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return firstChoice(resp)
}

// Complete passes a raw prompt straight through to the model.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}
	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return firstChoice(resp)
}

func firstChoice(resp *llms.ContentResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoContent
	}
	content := strings.TrimSpace(resp.Choices[0].Content)
	if content == "" {
		return "", ErrNoContent
	}
	return content, nil
}

// BulletList renders tasks as the bulleted list the recap prompt expects.
func BulletList(tasks []model.Task) string {
	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString("- ")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
	}
	return sb.String()
}
