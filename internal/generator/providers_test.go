package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiProvider_Complete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		body, _ := io.ReadAll(r.Body) //nolint:errcheck
		_ = json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[{\"title\":\"x\"}]"}]}}]}`))
	}))
	defer server.Close()

	p := NewGeminiProvider(GeminiConfig{APIKey: "test-key", BaseURL: server.URL})

	text, err := p.Complete(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, `[{"title":"x"}]`, text)
	assert.Equal(t, "/models/gemini-1.5-flash-latest:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "hello", gotBody.Contents[0].Parts[0].Text)
	assert.InDelta(t, 0.7, gotBody.GenerationConfig.Temperature, 0.001)
	assert.Equal(t, 2000, gotBody.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, "gemini", p.Name())
}

func TestGeminiProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{"http error", http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, "status 429"},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY"},
		{"empty", http.StatusOK, `{"candidates":[]}`, "no content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: server.URL})

			_, err := p.Complete(context.Background(), "hello")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestAnthropicProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anthropic-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"  [] "}]}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider(AnthropicConfig{APIKey: "anthropic-key", URL: server.URL})

	text, err := p.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	assert.Equal(t, DefaultAnthropicModel, p.Model())
}

func TestOpenAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o-mini",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"[{\"title\":\"o\"}]"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"})

	text, err := p.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"o"}]`, text)
}
