// Package meaning writes the "story behind the bouquet" shown on product pages.
package meaning

import (
	"errors"
	"strings"
)

// Info describes the bouquet a meaning is written for.
type Info struct {
	Name     string   `json:"name"`
	Flowers  []string `json:"flowers"`
	Colors   []string `json:"colors"`
	Occasion string   `json:"occasion,omitempty"`
	Style    string   `json:"style,omitempty"`
}

func (i Info) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return errors.New("bouquet name is required")
	}
	if len(i.Flowers) == 0 {
		return errors.New("at least one flower is required")
	}
	return nil
}

func (i Info) normalized() Info {
	out := Info{
		Name:     strings.TrimSpace(i.Name),
		Occasion: strings.TrimSpace(i.Occasion),
		Style:    strings.TrimSpace(i.Style),
	}
	for _, f := range i.Flowers {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			out.Flowers = append(out.Flowers, trimmed)
		}
	}
	for _, c := range i.Colors {
		if trimmed := strings.ToLower(strings.TrimSpace(c)); trimmed != "" {
			out.Colors = append(out.Colors, trimmed)
		}
	}
	return out
}

type Meaning struct {
	Title              string   `json:"title"`
	MeaningText        string   `json:"meaningText"`
	InspirationalQuote string   `json:"inspirationalQuote"`
	Symbolism          []string `json:"symbolism"`
	EmotionalMessage   string   `json:"emotionalMessage"`
	PoeticDescription  string   `json:"poeticDescription"`
	FlowerWisdom       string   `json:"flowerWisdom"`
	Occasions          []string `json:"occasions"`
}

type Source string

const (
	SourceModel    Source = "model"
	SourceText     Source = "text"
	SourceFallback Source = "fallback"
)

type Result struct {
	Meaning Meaning `json:"meaning"`
	Source  Source  `json:"source"`
	Cached  bool    `json:"cached"`
	// Error is set when the provider failed and Meaning is the fallback.
	Error string `json:"error,omitempty"`
}

func (r Result) Success() bool {
	return r.Source != SourceFallback
}
