package llm

import (
	"context"
	"strings"
	"sync"
)

// MockStreamer replays fixed chunks. With no Chunks it echoes the last user
// turn word by word, which is what AI_PROVIDER=mock serves locally.
type MockStreamer struct {
	Chunks []string
	// Err is returned after ErrAfter chunks have been delivered.
	Err      error
	ErrAfter int

	mu       sync.Mutex
	calls    int
	requests []Request
}

func (m *MockStreamer) Stream(ctx context.Context, req Request, onChunk func(string)) (string, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	chunks := m.Chunks
	if len(chunks) == 0 {
		chunks = mockReply(LastUserContent(req.Turns))
	}

	var text strings.Builder
	for idx, chunk := range chunks {
		if m.Err != nil && idx >= m.ErrAfter {
			return "", m.Err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	if m.Err != nil {
		return "", m.Err
	}
	return text.String(), nil
}

func mockReply(question string) []string {
	if question == "" {
		question = "No question provided."
	}
	words := strings.Fields("Mock response: " + question)
	chunks := make([]string, 0, len(words))
	for idx, word := range words {
		if idx > 0 {
			word = " " + word
		}
		chunks = append(chunks, word)
	}
	return chunks
}

func (m *MockStreamer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or false if Stream was never called.
func (m *MockStreamer) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}
