package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/thedittmer/intel-hub/internal/failure"
)

const defaultGeminiModel = "gemini-flash-latest"

// Gemini generates through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	stream bool
}

// NewGemini creates a Gemini provider. baseURL overrides the API endpoint
// when set.
func NewGemini(ctx context.Context, apiKey, model, baseURL string, stream bool, httpClient *http.Client) (*Gemini, error) {
	if model == "" {
		model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{client: client, model: model, stream: stream}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	if !g.stream {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			return "", geminiError(err)
		}
		text := resp.Text()
		if onChunk != nil {
			onChunk(text)
		}
		return text, nil
	}

	var response strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(prompt), nil) {
		if err != nil {
			return "", geminiError(err)
		}
		fragment := resp.Text()
		if fragment == "" {
			continue
		}
		response.WriteString(fragment)
		if onChunk != nil {
			onChunk(fragment)
		}
	}
	return response.String(), nil
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini API: %w", &failure.StatusError{StatusCode: apiErr.Code, Body: apiErr.Message})
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return fmt.Errorf("gemini API: %w", &failure.StatusError{StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message})
	}
	return fmt.Errorf("gemini API: %w", err)
}
