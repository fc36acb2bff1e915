package recommend

import (
	"sort"

	"bloomery/backend/internal/catalog"
)

// MaxRecommendations caps every result set.
const MaxRecommendations = 3

// fallbackIndexes are catalog positions shown when nothing matched.
var fallbackIndexes = []int{0, 2, 4}

type Scorer struct {
	ruleset Ruleset
	rules   map[string]Rule
}

func NewScorer(ruleset Ruleset) (*Scorer, error) {
	if err := ruleset.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{ruleset: ruleset, rules: ruleset.index()}, nil
}

func (s *Scorer) Version() string {
	return s.ruleset.Version
}

// Score ranks catalog bouquets for a user message and the assistant reply.
// Keywords found in both texts count once. n <= 0 or n > MaxRecommendations
// means MaxRecommendations.
func (s *Scorer) Score(userText, replyText string, n int) []catalog.Bouquet {
	if n <= 0 || n > MaxRecommendations {
		n = MaxRecommendations
	}

	keywords := unionKeywords(Analyze(userText), Analyze(replyText))
	scores := map[string]int{}
	for _, keyword := range keywords {
		rule, ok := s.rules[keyword]
		if !ok {
			continue
		}
		for _, id := range rule.BouquetIDs {
			scores[id] += rule.Weight
		}
	}

	if len(scores) == 0 {
		return Fallback(n)
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return catalog.IndexOf(ids[i]) < catalog.IndexOf(ids[j])
	})

	result := make([]catalog.Bouquet, 0, n)
	for _, id := range ids {
		if len(result) == n {
			break
		}
		if b, ok := catalog.ByID(id); ok {
			result = append(result, b)
		}
	}
	return result
}

// Fallback returns the fixed diverse selection, capped at n.
func Fallback(n int) []catalog.Bouquet {
	if n <= 0 || n > MaxRecommendations {
		n = MaxRecommendations
	}
	result := make([]catalog.Bouquet, 0, n)
	for _, idx := range fallbackIndexes {
		if len(result) == n {
			break
		}
		if b, ok := catalog.At(idx); ok {
			result = append(result, b)
		}
	}
	return result
}

func unionKeywords(intents ...Intent) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, intent := range intents {
		for _, keyword := range intent.Keywords {
			if _, dup := seen[keyword]; dup {
				continue
			}
			seen[keyword] = struct{}{}
			out = append(out, keyword)
		}
	}
	return out
}
