package reasoning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/cenkalti/backoff/v5"

	"github.com/ShayCichocki/codi/internal/logging"
)

// Completer sends one prompt and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Client wraps the Anthropic SDK client with retries and token tracking.
type Client struct {
	inner      anthropic.Client
	model      anthropic.Model
	maxTokens  int64
	maxRetries uint
	tracker    *TokenTracker
	logger     *slog.Logger
}

// ClientConfig contains configuration for creating a new Client.
type ClientConfig struct {
	// Model is the Claude model to use (e.g., anthropic.ModelClaudeSonnet4_20250514).
	Model anthropic.Model
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY env var.
	APIKey string
	// UseAWSBedrock indicates whether to use AWS Bedrock instead of direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
	// MaxTokens bounds each response. Defaults to 2048.
	MaxTokens int64
	// MaxRetries is the number of attempts per call. Defaults to 3.
	MaxRetries uint
	// Logger receives retry diagnostics.
	Logger *slog.Logger
}

// NewClient creates a new Anthropic API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	// Retries are handled by Complete.
	opts := []option.RequestOption{option.WithMaxRetries(0)}

	if cfg.UseAWSBedrock {
		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}
		opts = append(opts, bedrock.WithLoadDefaultConfig(context.Background(), loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ErrReasoningUnavailable)
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	model := cfg.Model
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	if cfg.UseAWSBedrock {
		model = translateModelForBedrock(model)
	}

	c := &Client{
		inner:      anthropic.NewClient(opts...),
		model:      model,
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
		tracker:    NewTokenTracker(),
		logger:     logging.OrNop(cfg.Logger).With("component", "reasoning"),
	}
	if c.maxTokens <= 0 {
		c.maxTokens = 2048
	}
	if c.maxRetries == 0 {
		c.maxRetries = 3
	}
	return c, nil
}

// translateModelForBedrock converts standard Anthropic model names to Bedrock inference profile format.
func translateModelForBedrock(model anthropic.Model) anthropic.Model {
	bedrockModels := map[anthropic.Model]string{
		anthropic.ModelClaudeSonnet4_20250514:   "us.anthropic.claude-sonnet-4-20250514-v1:0",
		anthropic.ModelClaudeSonnet4_5_20250929: "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
		anthropic.ModelClaudeHaiku4_5_20251001:  "us.anthropic.claude-haiku-4-5-20251001-v1:0",
		anthropic.ModelClaude3_5Haiku20241022:   "us.anthropic.claude-3-5-haiku-20241022-v1:0",
	}
	if m, ok := bedrockModels[model]; ok {
		return anthropic.Model(m)
	}
	return model
}

// Model returns the configured model name.
func (c *Client) Model() anthropic.Model {
	return c.model
}

// Tracker returns the token tracker for this client.
func (c *Client) Tracker() *TokenTracker {
	return c.tracker
}

// Complete sends a single-turn prompt, retrying throttling and server
// errors with exponential backoff.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	attempt := 0
	op := func() (string, error) {
		attempt++
		resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			System: []anthropic.TextBlockParam{
				{Text: system},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			if !retryable(err) {
				return "", backoff.Permanent(err)
			}
			c.logger.Warn("model call failed, retrying", "attempt", attempt, "error", err)
			return "", err
		}

		c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		var b strings.Builder
		for _, block := range resp.Content {
			if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
				b.WriteString(variant.Text)
			}
		}
		return b.String(), nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(c.maxRetries),
	)
}

// retryable reports whether an API error is worth retrying.
func retryable(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// TokenTracker tracks token usage across API calls.
type TokenTracker struct {
	mu        sync.Mutex
	inputTok  int64
	outputTok int64
	calls     int
}

// NewTokenTracker creates a new token tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{}
}

// Add records token usage from an API call.
func (t *TokenTracker) Add(input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok += input
	t.outputTok += output
	t.calls++
}

// Total returns the total input and output tokens tracked.
func (t *TokenTracker) Total() (input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inputTok, t.outputTok
}

// Calls returns the number of API calls made.
func (t *TokenTracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
