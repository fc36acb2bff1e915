package recommend

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"bloomery/backend/internal/catalog"
	"bloomery/backend/internal/llm"
)

type UpdateKind string

const (
	UpdateChunk       UpdateKind = "chunk"
	UpdateSuggestions UpdateKind = "suggestions"
)

// Update is one streaming event. Chunk is set for UpdateChunk, Bouquets for
// UpdateSuggestions.
type Update struct {
	Kind     UpdateKind
	Chunk    string
	Bouquets []catalog.Bouquet
}

type Result struct {
	Text     string            `json:"text"`
	Bouquets []catalog.Bouquet `json:"bouquets"`
}

const (
	rescoreInterval = 300 * time.Millisecond
	rescoreEvery    = 30
)

type Service struct {
	chat   *ChatClient
	scorer *Scorer
	logger *zap.Logger
	now    func() time.Time
}

func NewService(chat *ChatClient, scorer *Scorer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{chat: chat, scorer: scorer, logger: logger, now: time.Now}
}

func (s *Service) Scorer() *Scorer {
	return s.scorer
}

// Generate streams the advisor reply for messages and scores the finished text.
// onUpdate may be nil. Validation failures return the sentinel errors,
// provider failures return *Error carrying the partial text, and caller
// cancellation returns the context error.
func (s *Service) Generate(ctx context.Context, messages []Message, onUpdate func(Update)) (Result, error) {
	if err := ValidateConversation(messages); err != nil {
		return Result{}, err
	}
	userText := messages[len(messages)-1].Content

	var partial strings.Builder
	lastRescore := s.now()
	var lastIDs []string

	onChunk := func(chunk string) {
		partial.WriteString(chunk)
		if onUpdate == nil {
			return
		}
		onUpdate(Update{Kind: UpdateChunk, Chunk: chunk})

		now := s.now()
		if now.Sub(lastRescore) < rescoreInterval && partial.Len()%rescoreEvery != 0 {
			return
		}
		lastRescore = now
		suggestions := s.scorer.Score(userText, partial.String(), MaxRecommendations)
		ids := bouquetIDs(suggestions)
		if equalIDs(ids, lastIDs) {
			return
		}
		lastIDs = ids
		onUpdate(Update{Kind: UpdateSuggestions, Bouquets: suggestions})
	}

	text, err := s.chat.Complete(ctx, messages, onChunk)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return Result{}, err
		}
		kind := llm.KindOf(err)
		s.logger.Warn("recommendation generation failed",
			zap.String("kind", string(kind)),
			zap.Int("partial_bytes", partial.Len()),
			zap.Error(err),
		)
		return Result{}, &Error{
			Kind:    kind,
			Message: userMessage(kind),
			Partial: partial.String(),
			Err:     err,
		}
	}

	return Result{
		Text:     text,
		Bouquets: s.scorer.Score(userText, text, MaxRecommendations),
	}, nil
}

func bouquetIDs(items []catalog.Bouquet) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
