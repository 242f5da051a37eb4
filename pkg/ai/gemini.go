package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TextGenerator is the contract usecases depend on. The Gemini client is one
// implementation; tests supply fakes. Output is untrusted free text and must
// never gate request correctness.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Health(ctx context.Context) error
}

// Client wraps the Gemini generative model
type Client struct {
	client      *genai.Client
	modelName   string
	temperature float32
	maxTokens   int32
}

// NewClient connects to Gemini with the given API key and model name
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &Client{
		client:      cl,
		modelName:   modelName,
		temperature: 0.4,
		maxTokens:   512,
	}, nil
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Generate runs one prompt through the model and concatenates the text parts
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m := c.client.GenerativeModel(c.modelName)
	m.SetTemperature(c.temperature)
	m.SetMaxOutputTokens(c.maxTokens)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// Health probes the model with a trivial prompt
func (c *Client) Health(ctx context.Context) error {
	_, err := c.Generate(ctx, "", "ping")
	return err
}

var _ TextGenerator = (*Client)(nil)
