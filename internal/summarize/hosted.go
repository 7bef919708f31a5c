package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/thedittmer/intel-hub/internal/config"
	"github.com/thedittmer/intel-hub/internal/failure"
)

const (
	claudeURL = "https://api.anthropic.com/v1/messages"
	openaiURL = "https://api.openai.com/v1/chat/completions"

	maxTokens = 1024
)

// NewProvider creates the provider named in cfg.
func NewProvider(ctx context.Context, cfg config.AIConfig, apiKey string, client *http.Client) (Provider, error) {
	if client == nil {
		client = http.DefaultClient
	}

	switch cfg.Provider {
	case config.ProviderOllama:
		return NewOllama(cfg.Host, cfg.Model, cfg.Stream, client)
	case config.ProviderClaude:
		if apiKey == "" {
			return nil, fmt.Errorf("%w: claude API key", config.ErrMissingSecret)
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		endpoint := cfg.Host
		if endpoint == "" {
			endpoint = claudeURL
		}
		return &claudeProvider{apiKey: apiKey, model: model, endpoint: endpoint, client: client}, nil
	case config.ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("%w: openai API key", config.ErrMissingSecret)
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		endpoint := cfg.Host
		if endpoint == "" {
			endpoint = openaiURL
		}
		return &openaiProvider{apiKey: apiKey, model: model, endpoint: endpoint, client: client}, nil
	case config.ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("%w: gemini API key", config.ErrMissingSecret)
		}
		return NewGemini(ctx, apiKey, cfg.Model, cfg.Host, cfg.Stream, client)
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: ollama, claude, openai, gemini)", cfg.Provider)
	}
}

// --- Claude provider ---

type claudeProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *claudeProvider) Generate(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding claude request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	var cr claudeResponse
	if err := doJSON(c.client, req, &cr); err != nil {
		return "", fmt.Errorf("claude API: %w", err)
	}
	if len(cr.Content) == 0 {
		return "", failure.New(failure.Malformed, "claude API", fmt.Errorf("empty response"))
	}

	text := cr.Content[0].Text
	if onChunk != nil {
		onChunk(text)
	}
	return text, nil
}

// --- OpenAI provider ---

type openaiProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

type openaiRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *openaiProvider) Generate(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	body, err := json.Marshal(openaiRequest{
		Model:    o.model,
		Messages: []openaiMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding openai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	var or openaiResponse
	if err := doJSON(o.client, req, &or); err != nil {
		return "", fmt.Errorf("openai API: %w", err)
	}
	if len(or.Choices) == 0 {
		return "", failure.New(failure.Malformed, "openai API", fmt.Errorf("empty response"))
	}

	text := or.Choices[0].Message.Content
	if onChunk != nil {
		onChunk(text)
	}
	return text, nil
}

func doJSON(client *http.Client, req *http.Request, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &failure.StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
