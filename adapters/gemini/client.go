// Package gemini adapts the Gemini API to the content generator port.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/lumenapp/server/core"
)

const defaultModel = "gemini-2.0-flash-lite"

type Client struct {
	client *genai.Client
	model  string
}

var _ core.Generator = (*Client)(nil)

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return resp.Text(), nil
}
