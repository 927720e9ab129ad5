package generation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/5minanswer/questionai/internal/logger"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.0-flash"
)

type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// HTTPClient overrides the transport; tests point it at httptest.
	HTTPClient *http.Client
}

// ChatClient talks to any OpenAI-compatible chat-completions endpoint.
// Without an API key it is unavailable and never touches the network.
type ChatClient struct {
	client    *openai.Client
	model     string
	timeout   time.Duration
	available bool
	log       *logger.Logger
}

func NewChatClient(cfg ClientConfig, log *logger.Logger) *ChatClient {
	if log == nil {
		log = logger.Nop()
	}
	c := &ChatClient{model: cfg.Model, timeout: cfg.Timeout, log: log}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.timeout <= 0 {
		c.timeout = 60 * time.Second
	}
	if cfg.APIKey == "" {
		return c
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	opts := []option.RequestOption{
		option.WithBaseURL(base),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(1),
		option.WithRequestTimeout(c.timeout),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	client := openai.NewClient(opts...)
	c.client = &client
	c.available = true
	return c
}

func (c *ChatClient) Available() bool { return c.available }

func (c *ChatClient) Model() string { return c.model }

func (c *ChatClient) Generate(ctx context.Context, req Request) Result {
	if !c.available {
		return Failure(ReasonUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(req)),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		c.log.Warn("generator call failed", "model", c.model, "subject", req.Subject, "error", err)
		return Failure(fmt.Sprintf("generator call failed: %v", err))
	}
	if len(resp.Choices) == 0 {
		return Failure("generator returned no choices")
	}
	qs, err := parseQuestions(resp.Choices[0].Message.Content)
	if err != nil {
		c.log.Warn("generator output unparsable", "model", c.model, "subject", req.Subject, "error", err)
		return Failure(fmt.Sprintf("unparsable generator output: %v", err))
	}
	if len(qs) == 0 {
		return Failure("generator output had no usable questions")
	}
	c.log.Debug("generator call done", "model", c.model, "questions", len(qs), "duration", time.Since(start))
	return Success(qs)
}
