package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/agent-api/core/pkg/agent"
	"github.com/agent-api/core/types"
	"github.com/agent-api/ollama"
	"github.com/go-resty/resty/v2"
)

const defaultOllamaPort = 11434

// OllamaClassifier runs classification against a local ollama server through
// a vision agent. No API key is needed for the local backend.
type OllamaClassifier struct {
	agent   *agent.DefaultAgent
	http    *resty.Client
	baseURL string
}

// NewOllamaClassifier builds the local backend from a base URL like
// http://localhost:11434.
func NewOllamaClassifier(ctx context.Context, logger *slog.Logger, baseURL, model string) (*OllamaClassifier, error) {
	host, port, err := splitBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	opts := &ollama.ProviderOpts{
		Logger:  logger,
		BaseURL: host,
		Port:    port,
	}
	provider := ollama.NewProvider(opts)
	provider.UseModel(ctx, &types.Model{ID: model})

	agentConf := &agent.NewAgentConfig{
		Provider:     provider,
		Logger:       logger,
		SystemPrompt: "You are a screenshot triage assistant. You label screenshots with short category names.",
	}

	return &OllamaClassifier{
		agent:   agent.NewAgent(agentConf),
		http:    resty.New(),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Ping checks that the ollama server answers before a batch starts, so an
// unreachable server is reported once up front instead of once per file.
func (c *OllamaClassifier) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get(c.baseURL + "/api/tags")
	if err != nil {
		return classifyErr(err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: ollama returned status %s", ErrConnection, resp.Status())
	}
	return nil
}

// Classify sends the image to the local vision model and returns the model's
// raw text response.
func (c *OllamaClassifier) Classify(ctx context.Context, imagePath string) (string, error) {
	response := c.agent.Run(
		ctx,
		agent.WithInput(classifyPrompt),
		agent.WithImagePath(imagePath),
	)
	if response.Err != nil {
		return "", classifyErr(response.Err)
	}
	if len(response.Messages) == 0 {
		return "", fmt.Errorf("no response messages received from model")
	}

	return response.Messages[len(response.Messages)-1].Content, nil
}

// splitBaseURL separates a base URL into the scheme+host form and port the
// ollama provider expects.
func splitBaseURL(baseURL string) (string, int, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", 0, fmt.Errorf("invalid ollama base URL '%s': %w", baseURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return "", 0, fmt.Errorf("invalid ollama base URL '%s': missing scheme or host", baseURL)
	}

	port := defaultOllamaPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("invalid ollama base URL '%s': bad port", baseURL)
		}
	}

	return u.Scheme + "://" + u.Hostname(), port, nil
}
