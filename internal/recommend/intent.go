package recommend

import "strings"

type keywordGroup struct {
	tag      string
	keywords []string
}

// Table order decides which tag wins when several match.
var occasionKeywords = []keywordGroup{
	{tag: "romantic", keywords: []string{"love", "romantic", "anniversary", "valentine", "date", "propose", "engagement"}},
	{tag: "celebration", keywords: []string{"birthday", "congratulations", "graduation", "promotion", "achievement", "success"}},
	{tag: "sympathy", keywords: []string{"sympathy", "condolences", "funeral", "sorry", "loss", "grief", "memorial"}},
	{tag: "gratitude", keywords: []string{"thank", "appreciation", "grateful", "gratitude", "thanks"}},
	{tag: "newbeginning", keywords: []string{"new", "beginning", "baby", "birth", "housewarming", "job", "fresh start"}},
	{tag: "wellness", keywords: []string{"get well", "hospital", "recovery", "healing", "sick", "better"}},
}

var emotionKeywords = []keywordGroup{
	{tag: "happy", keywords: []string{"happy", "joy", "cheerful", "bright", "uplifting", "smile"}},
	{tag: "peaceful", keywords: []string{"peace", "calm", "relax", "serene", "tranquil", "zen"}},
	{tag: "loving", keywords: []string{"love", "affection", "caring", "tender", "sweet"}},
	{tag: "respectful", keywords: []string{"respect", "honor", "dignified", "elegant", "formal"}},
}

// Intent is what Analyze found in a piece of text. Empty Occasion or Emotion
// means nothing matched.
type Intent struct {
	Occasion string   `json:"occasion,omitempty"`
	Emotion  string   `json:"emotion,omitempty"`
	Keywords []string `json:"keywords"`
}

func (i Intent) Has(keyword string) bool {
	for _, k := range i.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// Analyze matches text against the occasion and emotion tables by substring.
// When several tags in one table match, the last one in table order wins.
func Analyze(text string) Intent {
	lowered := strings.ToLower(text)
	intent := Intent{Keywords: []string{}}
	seen := map[string]struct{}{}

	match := func(groups []keywordGroup) string {
		detected := ""
		for _, group := range groups {
			found := false
			for _, keyword := range group.keywords {
				if !strings.Contains(lowered, keyword) {
					continue
				}
				found = true
				if _, dup := seen[keyword]; !dup {
					seen[keyword] = struct{}{}
					intent.Keywords = append(intent.Keywords, keyword)
				}
			}
			if found {
				detected = group.tag
			}
		}
		return detected
	}

	intent.Occasion = match(occasionKeywords)
	intent.Emotion = match(emotionKeywords)
	return intent
}
