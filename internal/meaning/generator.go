package meaning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"bloomery/backend/internal/llm"
)

const systemPrompt = `You are a poetic flower expert and meaning interpreter. When given bouquet information, create beautiful, meaningful content including:

1. Inspirational and meaningful text about the bouquet's significance
2. Beautiful quotes related to the flowers and their meanings
3. Symbolic interpretations of each flower and color
4. Emotional messages the bouquet conveys
5. Poetic descriptions that capture the essence
6. Wisdom and insights about the flowers

Focus on creating content that is:
- Emotionally resonant and meaningful
- Poetic and beautifully written
- Culturally aware and respectful
- Inspirational and uplifting
- Rich in symbolism and deeper meaning

Format your response as JSON with the specified structure.`

func buildPrompt(info Info) string {
	var b strings.Builder
	b.WriteString("Generate beautiful, meaningful content for this bouquet:\n\n")
	fmt.Fprintf(&b, "Bouquet Name: %s\n", info.Name)
	fmt.Fprintf(&b, "Flowers: %s\n", strings.Join(info.Flowers, ", "))
	fmt.Fprintf(&b, "Colors: %s\n", strings.Join(info.Colors, ", "))
	if info.Occasion != "" {
		fmt.Fprintf(&b, "Occasion: %s\n", info.Occasion)
	}
	if info.Style != "" {
		fmt.Fprintf(&b, "Style: %s\n", info.Style)
	}
	b.WriteString(`
Please provide a JSON response with the following structure:
{
  "title": "Meaningful title for this bouquet",
  "meaningText": "2-3 paragraphs about the deeper meaning and significance",
  "inspirationalQuote": "A beautiful quote related to these flowers",
  "symbolism": ["array", "of", "symbolic", "meanings"],
  "emotionalMessage": "The emotional message this bouquet conveys",
  "poeticDescription": "A poetic, beautiful description of the bouquet",
  "flowerWisdom": "Wisdom or insight about these flowers",
  "occasions": ["suitable", "occasions", "for", "this", "bouquet"]
}

Make the content inspirational, meaningful, and beautifully written.`)
	return b.String()
}

type Options struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	PresencePenalty  float64
	FrequencyPenalty float64
	CacheTTL         time.Duration
	// Timeout bounds a provider call shared by concurrent callers.
	Timeout time.Duration
	// OnCacheLookup receives "hit", "miss" or "error".
	OnCacheLookup func(result string)
}

var DefaultOptions = Options{
	Model:            "deepseek/deepseek-chat-v3-0324:free",
	Temperature:      0.9,
	MaxTokens:        1200,
	PresencePenalty:  0.2,
	FrequencyPenalty: 0.1,
	CacheTTL:         7 * 24 * time.Hour,
	Timeout:          60 * time.Second,
}

type Generator struct {
	streamer llm.Streamer
	cache    Cache
	opts     Options
	logger   *zap.Logger
	group    singleflight.Group
}

// NewGenerator builds a generator; cache may be nil.
func NewGenerator(streamer llm.Streamer, cache Cache, opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultOptions.Temperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultOptions.MaxTokens
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultOptions.CacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions.Timeout
	}
	return &Generator{streamer: streamer, cache: cache, opts: opts, logger: logger}
}

// Generate writes a meaning for info. Provider failures are not errors: the
// result falls back to templates and carries the failure in Result.Error.
// Concurrent non-streaming calls for the same bouquet share one provider call.
func (g *Generator) Generate(ctx context.Context, info Info, onChunk func(string)) (Result, error) {
	if err := info.Validate(); err != nil {
		return Result{}, err
	}
	info = info.normalized()
	key := cacheKey(info)

	if cached, ok := g.lookup(ctx, key); ok {
		return Result{Meaning: cached, Source: SourceModel, Cached: true}, nil
	}

	if onChunk != nil {
		return g.generate(ctx, info, key, onChunk), nil
	}

	// The shared call outlives any single caller; each caller stops waiting
	// when its own context ends.
	shared := g.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.opts.Timeout)
		defer cancel()
		return g.generate(callCtx, info, key, nil), nil
	})
	select {
	case res := <-shared:
		return res.Val.(Result), nil
	case <-ctx.Done():
		return Result{Meaning: fallbackMeaning(info), Source: SourceFallback, Error: ctx.Err().Error()}, nil
	}
}

func (g *Generator) generate(ctx context.Context, info Info, key string, onChunk func(string)) Result {
	text, err := g.streamer.Stream(ctx, llm.Request{
		Model:            g.opts.Model,
		SystemPrompt:     systemPrompt,
		Turns:            []llm.Turn{{Role: llm.RoleUser, Content: buildPrompt(info)}},
		Temperature:      g.opts.Temperature,
		MaxTokens:        g.opts.MaxTokens,
		PresencePenalty:  g.opts.PresencePenalty,
		FrequencyPenalty: g.opts.FrequencyPenalty,
	}, onChunk)
	if err != nil {
		g.logger.Warn("bouquet meaning generation failed",
			zap.String("bouquet", info.Name),
			zap.String("kind", string(llm.KindOf(err))),
			zap.Error(err),
		)
		return Result{Meaning: fallbackMeaning(info), Source: SourceFallback, Error: err.Error()}
	}

	m, source := parseResponse(text, info)
	if source == SourceModel {
		g.store(ctx, key, m)
	}
	return Result{Meaning: m, Source: source}
}

func (g *Generator) lookup(ctx context.Context, key string) (Meaning, bool) {
	if g.cache == nil {
		return Meaning{}, false
	}
	m, ok, err := g.cache.Get(ctx, key)
	switch {
	case err != nil:
		g.observe("error")
		g.logger.Warn("meaning cache lookup failed", zap.Error(err))
		return Meaning{}, false
	case ok:
		g.observe("hit")
		return m, true
	default:
		g.observe("miss")
		return Meaning{}, false
	}
}

func (g *Generator) store(ctx context.Context, key string, m Meaning) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, key, m, g.opts.CacheTTL); err != nil {
		g.logger.Warn("meaning cache write failed", zap.Error(err))
	}
}

func (g *Generator) observe(result string) {
	if g.opts.OnCacheLookup != nil {
		g.opts.OnCacheLookup(result)
	}
}
