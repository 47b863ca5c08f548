// Package openai implements text generation and handwriting analysis on the
// OpenAI chat completions API, or any endpoint compatible with it.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Deva-here/ScribbleForge/pkg/integrations"
	"github.com/Deva-here/ScribbleForge/pkg/observability"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

// Config configures a Client. BaseURL selects a compatible endpoint; empty
// uses the SDK default.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries int
}

// Client calls the chat completions API. It is safe for concurrent use.
type Client struct {
	sdk   openai.Client
	model string
}

// NewClient creates a client. The SDK owns retries; MaxRetries of zero
// disables them.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = integrations.NewHTTPClient()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithMiddleware(observe),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	return &Client{sdk: openai.NewClient(opts...), model: cfg.Model}
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// GenerateText returns body text for prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(integrations.GenerationInstruction),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", mapError(err)
	}
	text, err := firstContent(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// AnalyzeHandwriting sends the image as an image_url content part and
// decodes the JSON reply into a Partial. image must be a base64 data URI.
func (c *Client) AnalyzeHandwriting(ctx context.Context, image string) (style.Partial, error) {
	img, err := integrations.ParseDataURI(image)
	if err != nil {
		return style.Partial{}, err
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(integrations.AnalysisPrompt()),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: img.DataURI()}),
			}),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return style.Partial{}, mapError(err)
	}
	text, err := firstContent(resp)
	if err != nil {
		return style.Partial{}, err
	}
	return integrations.DecodeAnalysis(ctx, text)
}

func firstContent(resp *openai.ChatCompletion) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", integrations.ErrEmptyResponse)
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("%w: refused: %s", integrations.ErrEmptyResponse, choice.Message.Refusal)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", fmt.Errorf("%w: finish reason %q", integrations.ErrEmptyResponse, choice.FinishReason)
	}
	return choice.Message.Content, nil
}

// mapError translates SDK errors to the integrations sentinels so callers
// handle every provider alike.
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", integrations.ErrNetwork, err)
	}

	code := apiErr.StatusCode
	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %v", integrations.ErrNotFound, err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", integrations.ErrUnauthorized, err)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", integrations.ErrRateLimited, err)
	default:
		return fmt.Errorf("%w: %v", integrations.ErrNetwork, err)
	}
}

// observe reports SDK requests to the HTTP hooks.
func observe(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := next(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return resp, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}
