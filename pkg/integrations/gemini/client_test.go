package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Deva-here/ScribbleForge/pkg/integrations"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		Config{APIKey: "test-key", Model: "gemini-test", BaseURL: server.URL, HTTPClient: server.Client()},
		integrations.WithRetry(2, time.Millisecond),
	)
}

func reply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
			"finishReason": "STOP",
		}},
	})
	return string(b)
}

func TestClient_GenerateText(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("api key header = %q", r.Header.Get("x-goog-api-key"))
		}
		if r.URL.RawQuery != "" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(req.Contents[0].Parts[0].Text, "a poem about rain") {
			t.Errorf("prompt not forwarded: %q", req.Contents[0].Parts[0].Text)
		}
		w.Write([]byte(reply("Rain falls softly...\n")))
	})

	text, err := c.GenerateText(context.Background(), "a poem about rain")
	if err != nil {
		t.Fatalf("GenerateText() error: %v", err)
	}
	if text != "Rain falls softly..." {
		t.Errorf("text = %q", text)
	}
}

func TestClient_GenerateTextJoinsParts(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Rain "},{"text":"falls."}]}}]}`))
	})

	text, err := c.GenerateText(context.Background(), "rain")
	if err != nil {
		t.Fatal(err)
	}
	if text != "Rain falls." {
		t.Errorf("text = %q", text)
	}
}

func TestClient_GenerateTextEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no candidates", `{"candidates":[]}`},
		{"blocked", `{"promptFeedback":{"blockReason":"SAFETY"}}`},
		{"empty text", `{"candidates":[{"content":{"parts":[{"text":"  "}]},"finishReason":"MAX_TOKENS"}]}`},
		{"not json", `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			_, err := c.GenerateText(context.Background(), "x")
			if !errors.Is(err, integrations.ErrEmptyResponse) {
				t.Errorf("error = %v, want ErrEmptyResponse", err)
			}
		})
	}
}

func TestClient_GenerateTextUnauthorized(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	})

	_, err := c.GenerateText(context.Background(), "x")
	if !errors.Is(err, integrations.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestClient_AnalyzeHandwriting(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		parts := req.Contents[0].Parts
		if len(parts) != 2 || parts[1].InlineData == nil {
			t.Fatalf("expected text + inline image parts, got %+v", parts)
		}
		if parts[1].InlineData.MIMEType != "image/png" || parts[1].InlineData.Data != "iVBORw0KGgo=" {
			t.Errorf("inline data = %+v", parts[1].InlineData)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.ResponseMIMEType != "application/json" {
			t.Error("analysis should request JSON output")
		}
		w.Write([]byte(reply(`{"color":"#ff0000","pressure":80,"smudgeLevel":42}`)))
	})

	p, err := c.AnalyzeHandwriting(context.Background(), "data:image/png;base64,iVBORw0KGgo=")
	if err != nil {
		t.Fatalf("AnalyzeHandwriting() error: %v", err)
	}
	if p.Color == nil || *p.Color != "#ff0000" {
		t.Errorf("Color = %v", p.Color)
	}
	if p.Pressure == nil || *p.Pressure != 80 {
		t.Errorf("Pressure = %v", p.Pressure)
	}
	if p.SmudgeLevel != nil {
		t.Error("out-of-range smudgeLevel should be dropped")
	}

	merged := style.Merge(style.Default(), p)
	if err := merged.Validate(); err != nil {
		t.Errorf("merged settings invalid: %v", err)
	}
}

func TestClient_AnalyzeHandwritingBadImage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for malformed image")
	})
	if _, err := c.AnalyzeHandwriting(context.Background(), "hello"); err == nil {
		t.Error("expected error")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"})
	if c.Model() != DefaultModel {
		t.Errorf("Model() = %q", c.Model())
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}
