package meaning

import (
	"fmt"
	"hash/fnv"
	"strings"
)

type template struct {
	quotes    []string
	symbolism []string
	wisdom    string
}

var templates = map[string]template{
	"roses": {
		quotes: []string{
			"A rose speaks of love silently, in a language known only to the heart.",
			"The rose is the poetry of earth written in petals and perfume.",
			"In every rose, there lies a story of love waiting to bloom.",
		},
		symbolism: []string{"Love", "Passion", "Beauty", "Devotion", "Romance"},
		wisdom:    "Roses teach us that love, like their petals, unfolds gradually and reveals its beauty in layers.",
	},
	"mixed": {
		quotes: []string{
			"In diversity of flowers lies the true beauty of a garden.",
			"Each bloom tells its own story, together they create a symphony.",
			"Life is like a bouquet - made beautiful by its variety.",
		},
		symbolism: []string{"Diversity", "Harmony", "Celebration", "Joy", "Unity"},
		wisdom:    "Mixed bouquets remind us that beauty comes from embracing differences and finding harmony in variety.",
	},
}

var wisdomPhrases = []string{
	"Flowers teach us that beauty is fleeting, but the memories they create last forever.",
	"In the language of flowers, every bloom has a story to tell and a heart to touch.",
	"Like flowers reaching toward the sun, we too grow toward the light of love and understanding.",
	"The wisdom of flowers lies not in their perfection, but in their willingness to bloom despite life's storms.",
	"Each petal reminds us that life's most beautiful moments are often the most delicate.",
}

var colorSymbolism = []struct {
	color   string
	symbols []string
}{
	{color: "red", symbols: []string{"Passion", "Deep Love"}},
	{color: "white", symbols: []string{"Purity", "Peace"}},
	{color: "yellow", symbols: []string{"Joy", "Friendship"}},
	{color: "pink", symbols: []string{"Gratitude", "Admiration"}},
	{color: "purple", symbols: []string{"Nobility", "Spirituality"}},
}

// pick chooses a stable element for name so identical bouquets read the same.
func pick(items []string, name string) string {
	if len(items) == 0 {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(name)))
	return items[int(h.Sum32()%uint32(len(items)))]
}

func templateFor(info Info) template {
	if len(info.Flowers) > 0 {
		if t, ok := templates[strings.ToLower(info.Flowers[0])]; ok {
			return t
		}
	}
	return templates["mixed"]
}

func quoteFor(info Info) string {
	return pick(templateFor(info).quotes, info.Name)
}

func wisdomFor(info Info) string {
	return pick(wisdomPhrases, info.Name)
}

func symbolismFor(info Info) []string {
	symbols := []string{"Beauty", "Love", "Nature", "Appreciation"}
	for _, entry := range colorSymbolism {
		for _, c := range info.Colors {
			if c == entry.color {
				symbols = append(symbols, entry.symbols...)
				break
			}
		}
	}
	return symbols
}

func poeticDescription(info Info) string {
	return fmt.Sprintf(
		"Like whispered secrets from nature's heart, this bouquet of %s dances in shades of %s, each petal a verse in love's eternal poem. Together, they create a masterpiece that speaks the language flowers have whispered since time began.",
		strings.Join(info.Flowers, " and "),
		strings.Join(info.Colors, " and "),
	)
}

func fallbackMeaningText(info Info) string {
	return fmt.Sprintf(
		"This exquisite arrangement of %s represents more than mere beauty. It embodies the profound connection between nature and human emotion. Each flower has been chosen not only for its visual appeal but for the deeper meaning it carries through centuries of floral tradition.\n\nThe %s hues speak their own language of symbolism, creating layers of meaning that touch both heart and soul. This bouquet serves as a bridge between the giver and receiver, carrying messages that words alone cannot express.",
		strings.Join(info.Flowers, ", "),
		strings.Join(info.Colors, " and "),
	)
}

// fallbackMeaning is served when the provider could not be reached.
func fallbackMeaning(info Info) Meaning {
	return Meaning{
		Title: "The Essence of " + info.Name,
		MeaningText: fmt.Sprintf(
			"This beautiful bouquet of %s represents the timeless language of flowers. Each bloom carries its own story, and together they create a symphony of meaning that speaks directly to the heart. The carefully chosen %s colors add layers of symbolism, creating an arrangement that goes beyond mere beauty to touch the soul.",
			strings.Join(info.Flowers, ", "),
			strings.Join(info.Colors, " and "),
		),
		InspirationalQuote: quoteFor(info),
		Symbolism:          symbolismFor(info),
		EmotionalMessage:   "A beautiful expression of love, care, and meaningful connection",
		PoeticDescription:  poeticDescription(info),
		FlowerWisdom:       wisdomFor(info),
		Occasions:          []string{"Anniversaries", "Celebrations", "Expressions of love", "Meaningful gifts"},
	}
}
