package recommend

import (
	"context"
	"strings"

	"bloomery/backend/internal/catalog"
	"bloomery/backend/internal/llm"
)

type Message struct {
	ID       string            `json:"id,omitempty"`
	Role     llm.Role          `json:"role"`
	Content  string            `json:"content"`
	Bouquets []catalog.Bouquet `json:"bouquets,omitempty"`
}

// ValidateConversation checks that messages is non-empty, uses only user and
// assistant roles, and ends with a non-empty user message.
func ValidateConversation(messages []Message) error {
	if len(messages) == 0 {
		return ErrNoMessages
	}
	for _, m := range messages {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			return ErrInvalidRole
		}
	}
	last := messages[len(messages)-1]
	if last.Role != llm.RoleUser {
		return ErrLastNotUser
	}
	if strings.TrimSpace(last.Content) == "" {
		return ErrEmptyUserPrompt
	}
	return nil
}

type ChatConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// DefaultChatConfig mirrors the production advisor settings.
var DefaultChatConfig = ChatConfig{Model: "gpt-4o", Temperature: 0.7, MaxTokens: 500}

// ChatClient sends a conversation to the advisor model.
type ChatClient struct {
	streamer llm.Streamer
	cfg      ChatConfig
}

func NewChatClient(streamer llm.Streamer, cfg ChatConfig) *ChatClient {
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultChatConfig.Temperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultChatConfig.MaxTokens
	}
	return &ChatClient{streamer: streamer, cfg: cfg}
}

// Complete streams the advisor's reply. Provider errors come back classified
// as *llm.Error.
func (c *ChatClient) Complete(ctx context.Context, messages []Message, onChunk func(string)) (string, error) {
	if err := ValidateConversation(messages); err != nil {
		return "", err
	}
	turns := make([]llm.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Content})
	}
	text, err := c.streamer.Stream(ctx, llm.Request{
		Model:        c.cfg.Model,
		SystemPrompt: SystemPrompt,
		Turns:        turns,
		Temperature:  c.cfg.Temperature,
		MaxTokens:    c.cfg.MaxTokens,
	}, onChunk)
	if err != nil {
		return "", llm.Classify(err)
	}
	return text, nil
}
