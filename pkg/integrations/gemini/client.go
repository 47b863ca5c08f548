// Package gemini implements text generation and handwriting analysis on the
// Google Gemini generateContent REST API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Deva-here/ScribbleForge/pkg/integrations"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

const (
	// DefaultBaseURL is the public Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "gemini-2.5-flash"
)

// Config configures a Client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the Gemini API. It is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
	model   string
}

// NewClient creates a Gemini client. The API key travels in the
// x-goog-api-key header, never in the URL.
func NewClient(cfg Config, opts ...integrations.ClientOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HTTPClient != nil {
		opts = append([]integrations.ClientOption{integrations.WithHTTPClient(cfg.HTTPClient)}, opts...)
	}
	return &Client{
		Client:  integrations.NewClient(map[string]string{"x-goog-api-key": cfg.APIKey}, opts...),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

// GenerateText returns body text for prompt.
//
// Returns:
//   - [integrations.ErrUnauthorized] if the API key is rejected
//   - [integrations.ErrNotFound] if the model does not exist
//   - [integrations.ErrEmptyResponse] if the model produced no text
//   - [integrations.ErrNetwork] / [integrations.ErrRateLimited] for transport failures
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: integrations.GenerationPrompt(prompt)}}}},
	}
	text, err := c.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// AnalyzeHandwriting sends the image with the analysis prompt and decodes
// the JSON reply into a Partial. image must be a base64 data URI.
func (c *Client) AnalyzeHandwriting(ctx context.Context, image string) (style.Partial, error) {
	img, err := integrations.ParseDataURI(image)
	if err != nil {
		return style.Partial{}, err
	}

	zero := 0.0
	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: integrations.AnalysisPrompt()},
				{InlineData: &inlineData{MIMEType: img.MIMEType, Data: img.Base64()}},
			},
		}},
		GenerationConfig: &generationConfig{ResponseMIMEType: "application/json", Temperature: &zero},
	}
	text, err := c.generate(ctx, req)
	if err != nil {
		return style.Partial{}, err
	}
	return integrations.DecodeAnalysis(ctx, text)
}

func (c *Client) generate(ctx context.Context, req generateRequest) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	body, err := c.PostJSON(ctx, endpoint, req)
	if err != nil {
		return "", err
	}
	return extractText(body)
}

// extractText joins the text parts of the first candidate.
func extractText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: response is not JSON", integrations.ErrEmptyResponse)
	}
	if reason := gjson.GetBytes(body, "promptFeedback.blockReason").String(); reason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", integrations.ErrEmptyResponse, reason)
	}

	var b strings.Builder
	for _, t := range gjson.GetBytes(body, "candidates.0.content.parts.#.text").Array() {
		b.WriteString(t.String())
	}
	if strings.TrimSpace(b.String()) == "" {
		reason := gjson.GetBytes(body, "candidates.0.finishReason").String()
		if reason == "" {
			reason = "no candidates"
		}
		return "", fmt.Errorf("%w: %s", integrations.ErrEmptyResponse, reason)
	}
	return b.String(), nil
}
