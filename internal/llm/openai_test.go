package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseChunk(content string) string {
	payload := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion.chunk",
		"created": 1700000000,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"delta":         map[string]any{"content": content},
			"finish_reason": nil,
		}},
	}
	raw, _ := json.Marshal(payload)
	return "data: " + string(raw) + "\n\n"
}

func newStreamingServer(t *testing.T, chunks []string, seen *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			*seen = body
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, chunk := range chunks {
			_, _ = fmt.Fprint(w, sseChunk(chunk))
			if flusher != nil {
				flusher.Flush()
			}
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(server.Close)
	return server
}

func newErrorServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func testStreamer(baseURL string) *OpenAIStreamer {
	return NewOpenAIStreamer(OpenAIOptions{
		APIKey:  "sk-test",
		BaseURL: baseURL + "/v1/",
		Model:   "gpt-4o",
		Timeout: 5 * time.Second,
	}, nil)
}

func TestOpenAIStreamerForwardsChunksInOrder(t *testing.T) {
	t.Parallel()

	var body map[string]any
	server := newStreamingServer(t, []string{"Hel", "lo", " there"}, &body)
	streamer := testStreamer(server.URL)

	var received []string
	text, err := streamer.Stream(context.Background(), Request{
		SystemPrompt: "You are a florist.",
		Turns: []Turn{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
			{Role: RoleUser, Content: "flowers for my mom"},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	}, func(chunk string) {
		received = append(received, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo", " there"}, received)
	assert.Equal(t, "Hello there", text)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.Equal(t, true, body["stream"])
	assert.InDelta(t, 0.7, body["temperature"], 0.0001)
	assert.EqualValues(t, 500, body["max_tokens"])
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 4)
	first, _ := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	_, hasPenalty := body["presence_penalty"]
	assert.False(t, hasPenalty)
}

func TestOpenAIStreamerClassifiesProviderErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{
			name:   "bad key",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			want:   KindCredentials,
		},
		{
			name:   "quota",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"You exceeded your current quota, please check your plan and billing details.","type":"insufficient_quota","code":"insufficient_quota"}}`,
			want:   KindQuota,
		},
		{
			name:   "rate limit",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"Rate limit reached for requests","type":"requests","code":"rate_limit_exceeded"}}`,
			want:   KindRateLimit,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":{"message":"The server had an error","type":"server_error"}}`,
			want:   KindUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var hits int32
			server := newErrorServer(t, tc.status, tc.body, &hits)
			streamer := testStreamer(server.URL)

			chunks := 0
			text, err := streamer.Stream(context.Background(), Request{
				Turns: []Turn{{Role: RoleUser, Content: "hello"}},
			}, func(string) { chunks++ })
			require.Error(t, err)
			assert.Empty(t, text)
			assert.Zero(t, chunks)
			assert.Equal(t, tc.want, KindOf(err))
			assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "streams must not be retried")

			var llmErr *Error
			require.True(t, errors.As(err, &llmErr))
			assert.Equal(t, tc.status, llmErr.StatusCode)
		})
	}
}

func TestOpenAIStreamerAbortsOnCallerCancel(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, sseChunk("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	streamer := testStreamer(server.URL)
	ctx, cancel := context.WithCancel(context.Background())

	text, err := streamer.Stream(ctx, Request{
		Turns: []Turn{{Role: RoleUser, Content: "hello"}},
	}, func(string) { cancel() })
	require.Error(t, err)
	assert.Empty(t, text)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOpenAIStreamerRequiresModel(t *testing.T) {
	streamer := NewOpenAIStreamer(OpenAIOptions{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1/v1/"}, nil)
	_, err := streamer.Stream(context.Background(), Request{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}
