package meaning

import (
	"encoding/json"
	"regexp"
	"strings"
)

const textExcerptRunes = 400

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseResponse reads the JSON object embedded in a model reply, filling any
// missing field from the templates. Replies without a usable object become a
// text-derived meaning.
func parseResponse(response string, info Info) (Meaning, Source) {
	if raw := jsonObjectPattern.FindString(response); raw != "" {
		var parsed Meaning
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			return fillMissing(parsed, info), SourceModel
		}
	}
	return fromText(response, info), SourceText
}

func fillMissing(m Meaning, info Info) Meaning {
	if strings.TrimSpace(m.Title) == "" {
		m.Title = "The Meaning of " + info.Name
	}
	if strings.TrimSpace(m.MeaningText) == "" {
		m.MeaningText = fallbackMeaningText(info)
	}
	if strings.TrimSpace(m.InspirationalQuote) == "" {
		m.InspirationalQuote = quoteFor(info)
	}
	if len(m.Symbolism) == 0 {
		m.Symbolism = symbolismFor(info)
	}
	if strings.TrimSpace(m.EmotionalMessage) == "" {
		m.EmotionalMessage = "A message of love and appreciation"
	}
	if strings.TrimSpace(m.PoeticDescription) == "" {
		m.PoeticDescription = poeticDescription(info)
	}
	if strings.TrimSpace(m.FlowerWisdom) == "" {
		m.FlowerWisdom = wisdomFor(info)
	}
	if len(m.Occasions) == 0 {
		m.Occasions = []string{"Special celebrations", "Expressions of love", "Meaningful moments"}
	}
	return m
}

func fromText(response string, info Info) Meaning {
	excerpt := response
	if runes := []rune(response); len(runes) > textExcerptRunes {
		excerpt = string(runes[:textExcerptRunes])
	}
	return Meaning{
		Title:              "The Beauty and Meaning of " + info.Name,
		MeaningText:        excerpt + "...",
		InspirationalQuote: quoteFor(info),
		Symbolism:          symbolismFor(info),
		EmotionalMessage:   "A heartfelt expression of care and beauty",
		PoeticDescription:  poeticDescription(info),
		FlowerWisdom:       wisdomFor(info),
		Occasions:          []string{"Celebrations", "Gift-giving", "Special moments"},
	}
}
