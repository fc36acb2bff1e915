// Package llm streams chat completions from an OpenAI-compatible provider.
package llm

import (
	"context"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion. Zero penalties are left unset on the wire.
type Request struct {
	Model            string
	SystemPrompt     string
	Turns            []Turn
	Temperature      float64
	MaxTokens        int
	PresencePenalty  float64
	FrequencyPenalty float64
}

// Streamer delivers completion text incrementally. onChunk is called on the
// caller's goroutine, in delivery order, and the returned string is exactly the
// concatenation of every chunk passed to it. On error no text is returned.
type Streamer interface {
	Stream(ctx context.Context, req Request, onChunk func(string)) (string, error)
}

// LastUserContent returns the content of the most recent user turn.
func LastUserContent(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			return strings.TrimSpace(turns[i].Content)
		}
	}
	return ""
}
