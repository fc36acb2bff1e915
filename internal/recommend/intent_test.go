package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeDetectsRomanticOccasion(t *testing.T) {
	for _, keyword := range []string{"love", "romantic", "anniversary", "valentine", "date", "propose", "engagement"} {
		intent := Analyze("Ideas for our " + keyword)
		assert.Equal(t, "romantic", intent.Occasion, keyword)
		assert.True(t, intent.Has(keyword), keyword)
	}
}

func TestAnalyzeIsCaseInsensitiveAndDeduplicates(t *testing.T) {
	intent := Analyze("LOVE, love and more Love")
	assert.Equal(t, "romantic", intent.Occasion)
	assert.Equal(t, "loving", intent.Emotion)
	assert.Equal(t, []string{"love"}, intent.Keywords)
}

// Several occasions match here; the later table entry wins.
func TestAnalyzeLastMatchingTagWins(t *testing.T) {
	intent := Analyze("I love her and she has a graduation, so I want calm and happy flowers")
	assert.Equal(t, "celebration", intent.Occasion)
	assert.Equal(t, "loving", intent.Emotion)
	assert.Equal(t, []string{"love", "graduation", "happy", "calm"}, intent.Keywords)
}

func TestAnalyzeMatchesSubstrings(t *testing.T) {
	intent := Analyze("a gift for the newborn")
	assert.Equal(t, "newbeginning", intent.Occasion)
	assert.True(t, intent.Has("new"))
	assert.False(t, intent.Has("birth"))
}

func TestAnalyzeWithoutMatches(t *testing.T) {
	intent := Analyze("Hello there")
	assert.Empty(t, intent.Occasion)
	assert.Empty(t, intent.Emotion)
	assert.Empty(t, intent.Keywords)
	assert.NotNil(t, intent.Keywords)
}

func TestAnalyzeIsPure(t *testing.T) {
	text := "Thank you for the lovely anniversary, we are grateful and at peace"
	assert.Equal(t, Analyze(text), Analyze(text))
}
