package meaning

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloomery/backend/internal/llm"
)

var roseInfo = Info{
	Name:    "Love's Embrace",
	Flowers: []string{"roses", "lilies"},
	Colors:  []string{"Red", "white"},
}

const modelReply = "Here you go:\n```json\n" + `{
  "title": "A Crimson Promise",
  "meaningText": "Roses and lilies woven together.",
  "inspirationalQuote": "Love blooms where it is tended.",
  "symbolism": ["Love", "Devotion"],
  "emotionalMessage": "You are cherished.",
  "poeticDescription": "Petals like embers.",
  "flowerWisdom": "Patience makes gardens.",
  "occasions": ["Anniversaries"]
}` + "\n```"

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestGenerateParsesModelJSON(t *testing.T) {
	streamer := &llm.MockStreamer{Chunks: []string{modelReply[:20], modelReply[20:]}}
	gen := NewGenerator(streamer, nil, DefaultOptions, nil)

	var streamed strings.Builder
	result, err := gen.Generate(context.Background(), roseInfo, func(c string) { streamed.WriteString(c) })
	require.NoError(t, err)
	assert.Equal(t, SourceModel, result.Source)
	assert.True(t, result.Success())
	assert.Equal(t, "A Crimson Promise", result.Meaning.Title)
	assert.Equal(t, []string{"Love", "Devotion"}, result.Meaning.Symbolism)
	assert.Equal(t, modelReply, streamed.String())

	req, ok := streamer.LastRequest()
	require.True(t, ok)
	assert.InDelta(t, 0.9, req.Temperature, 0.0001)
	assert.Equal(t, 1200, req.MaxTokens)
	assert.InDelta(t, 0.2, req.PresencePenalty, 0.0001)
	assert.InDelta(t, 0.1, req.FrequencyPenalty, 0.0001)
	assert.Contains(t, req.Turns[0].Content, "Bouquet Name: Love's Embrace")
	assert.Contains(t, req.Turns[0].Content, "Colors: red, white")
	assert.NotContains(t, req.Turns[0].Content, "Occasion:")
}

func TestGenerateFillsMissingFields(t *testing.T) {
	streamer := &llm.MockStreamer{Chunks: []string{`{"title": "Only a title"}`}}
	result, err := NewGenerator(streamer, nil, DefaultOptions, nil).Generate(context.Background(), roseInfo, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceModel, result.Source)
	assert.Equal(t, "Only a title", result.Meaning.Title)
	assert.Equal(t, "A message of love and appreciation", result.Meaning.EmotionalMessage)
	assert.Equal(t, []string{"Beauty", "Love", "Nature", "Appreciation", "Passion", "Deep Love", "Purity", "Peace"}, result.Meaning.Symbolism)
	assert.Contains(t, templates["roses"].quotes, result.Meaning.InspirationalQuote)
	assert.Contains(t, wisdomPhrases, result.Meaning.FlowerWisdom)
}

func TestGenerateFallsBackToTextExcerpt(t *testing.T) {
	long := strings.Repeat("é", 450)
	streamer := &llm.MockStreamer{Chunks: []string{long}}
	result, err := NewGenerator(streamer, nil, DefaultOptions, nil).Generate(context.Background(), roseInfo, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceText, result.Source)
	assert.Equal(t, strings.Repeat("é", 400)+"...", result.Meaning.MeaningText)
	assert.Equal(t, "The Beauty and Meaning of Love's Embrace", result.Meaning.Title)
}

func TestGenerateUsesFallbackOnProviderError(t *testing.T) {
	streamer := &llm.MockStreamer{Err: &llm.Error{Kind: llm.KindQuota, Err: errors.New("quota")}}
	info := Info{Name: "Sunny Days", Flowers: []string{"sunflowers"}, Colors: []string{"yellow"}}

	first, err := NewGenerator(streamer, nil, DefaultOptions, nil).Generate(context.Background(), info, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, first.Source)
	assert.False(t, first.Success())
	assert.NotEmpty(t, first.Error)
	assert.Equal(t, "The Essence of Sunny Days", first.Meaning.Title)
	assert.Contains(t, first.Meaning.Symbolism, "Friendship")
	assert.Contains(t, templates["mixed"].quotes, first.Meaning.InspirationalQuote)

	second, err := NewGenerator(streamer, nil, DefaultOptions, nil).Generate(context.Background(), info, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Meaning, second.Meaning, "fallbacks are deterministic")
}

func TestGenerateValidatesInfo(t *testing.T) {
	gen := NewGenerator(&llm.MockStreamer{}, nil, DefaultOptions, nil)
	_, err := gen.Generate(context.Background(), Info{Flowers: []string{"roses"}}, nil)
	assert.Error(t, err)
	_, err = gen.Generate(context.Background(), Info{Name: "x"}, nil)
	assert.Error(t, err)
}

func TestGenerateCachesModelResultsInRedis(t *testing.T) {
	cache, mr := newTestCache(t)
	streamer := &llm.MockStreamer{Chunks: []string{modelReply}}

	var lookups []string
	opts := DefaultOptions
	opts.CacheTTL = time.Hour
	opts.OnCacheLookup = func(result string) { lookups = append(lookups, result) }
	gen := NewGenerator(streamer, cache, opts, nil)

	first, err := gen.Generate(context.Background(), roseInfo, nil)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := gen.Generate(context.Background(), Info{Name: " Love's Embrace ", Flowers: roseInfo.Flowers, Colors: []string{"red", "WHITE"}}, nil)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Meaning, second.Meaning)
	assert.Equal(t, 1, streamer.Calls())
	assert.Equal(t, []string{"miss", "hit"}, lookups)

	key := cacheKey(roseInfo.normalized())
	require.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(2 * time.Hour)
	_, err = gen.Generate(context.Background(), roseInfo, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, streamer.Calls())
}

func TestGenerateDoesNotCacheFallbacks(t *testing.T) {
	cache, mr := newTestCache(t)
	streamer := &llm.MockStreamer{Err: errors.New("connection refused")}
	_, err := NewGenerator(streamer, cache, DefaultOptions, nil).Generate(context.Background(), roseInfo, nil)
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())
}

func TestRedisCacheReportsBrokenEntries(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("broken", "not json"))

	_, ok, err := cache.Get(context.Background(), "broken")
	assert.False(t, ok)
	assert.Error(t, err)

	_, ok, err = cache.Get(context.Background(), "absent")
	assert.False(t, ok)
	assert.NoError(t, err)
}

// gatedStreamer blocks until release is closed so concurrent callers overlap.
type gatedStreamer struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (g *gatedStreamer) Stream(ctx context.Context, _ llm.Request, onChunk func(string)) (string, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()
	if first {
		close(g.started)
	}
	select {
	case <-g.release:
		return modelReply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestGenerateCollapsesConcurrentRequests(t *testing.T) {
	streamer := &gatedStreamer{started: make(chan struct{}), release: make(chan struct{})}
	gen := NewGenerator(streamer, nil, DefaultOptions, nil)

	const callers = 5
	results := make([]Result, callers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = gen.Generate(context.Background(), roseInfo, nil)
	}()
	<-streamer.started
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = gen.Generate(context.Background(), roseInfo, nil)
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(streamer.release)
	wg.Wait()

	streamer.mu.Lock()
	calls := streamer.calls
	streamer.mu.Unlock()
	assert.Equal(t, 1, calls)
	for _, r := range results {
		assert.Equal(t, "A Crimson Promise", r.Meaning.Title)
	}
}

func TestGenerateSharedCallSurvivesFirstCallerCancel(t *testing.T) {
	streamer := &gatedStreamer{started: make(chan struct{}), release: make(chan struct{})}
	gen := NewGenerator(streamer, nil, DefaultOptions, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan Result, 1)
	go func() {
		res, _ := gen.Generate(firstCtx, roseInfo, nil)
		firstDone <- res
	}()
	<-streamer.started

	secondDone := make(chan Result, 1)
	go func() {
		res, _ := gen.Generate(context.Background(), roseInfo, nil)
		secondDone <- res
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	first := <-firstDone
	assert.Equal(t, SourceFallback, first.Source)
	assert.Equal(t, context.Canceled.Error(), first.Error)

	close(streamer.release)
	second := <-secondDone
	assert.Equal(t, SourceModel, second.Source)
	assert.Empty(t, second.Error)
	assert.Equal(t, "A Crimson Promise", second.Meaning.Title)

	streamer.mu.Lock()
	defer streamer.mu.Unlock()
	assert.Equal(t, 1, streamer.calls)
}

func TestGenerateSharedCallIsBoundedByTimeout(t *testing.T) {
	streamer := &gatedStreamer{started: make(chan struct{}), release: make(chan struct{})}
	opts := DefaultOptions
	opts.Timeout = 20 * time.Millisecond
	gen := NewGenerator(streamer, nil, opts, nil)

	res, err := gen.Generate(context.Background(), roseInfo, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, context.DeadlineExceeded.Error(), res.Error)
}
