package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/thedittmer/intel-hub/internal/failure"
)

const defaultOllamaModel = "llama3.2"

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Ollama generates through a local Ollama server.
type Ollama struct {
	client *ollama.Client
	model  string
	stream bool
}

// NewOllama connects to host, or to OLLAMA_HOST when host is empty.
func NewOllama(host, model string, stream bool, httpClient *http.Client) (*Ollama, error) {
	if model == "" {
		model = defaultOllamaModel
	}

	var client *ollama.Client
	if host == "" {
		c, err := ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("creating ollama client: %w", err)
		}
		client = c
	} else {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		client = ollama.NewClient(u, httpClient)
	}

	return &Ollama{client: client, model: model, stream: stream}, nil
}

func (o *Ollama) Generate(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	stream := o.stream
	var response strings.Builder
	err := o.client.Generate(ctx, &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": 0.2,
		},
	}, func(res ollama.GenerateResponse) error {
		if res.Response == "" {
			return nil
		}
		response.WriteString(res.Response)
		if onChunk != nil {
			onChunk(res.Response)
		}
		return nil
	})
	if err != nil {
		var se ollama.StatusError
		if errors.As(err, &se) {
			return "", fmt.Errorf("ollama: %w", &failure.StatusError{StatusCode: se.StatusCode, Body: se.ErrorMessage})
		}
		return "", fmt.Errorf("ollama: %w", err)
	}

	return strings.TrimSpace(thinkBlock.ReplaceAllString(response.String(), "")), nil
}
