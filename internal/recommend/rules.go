package recommend

import (
	"errors"
	"fmt"
	"strings"

	"bloomery/backend/internal/catalog"
)

// Rule adds Weight to every bouquet in BouquetIDs when Keyword was detected.
type Rule struct {
	Keyword    string   `json:"keyword"`
	BouquetIDs []string `json:"bouquet_ids"`
	Weight     int      `json:"weight"`
}

type Ruleset struct {
	Version string `json:"version"`
	Rules   []Rule `json:"rules"`
}

var DefaultRuleset = Ruleset{
	Version: "2025.1",
	Rules: []Rule{
		{Keyword: "love", BouquetIDs: []string{"1"}, Weight: 3},
		{Keyword: "romantic", BouquetIDs: []string{"1"}, Weight: 3},
		{Keyword: "anniversary", BouquetIDs: []string{"1"}, Weight: 3},
		{Keyword: "peace", BouquetIDs: []string{"2"}, Weight: 3},
		{Keyword: "calm", BouquetIDs: []string{"2"}, Weight: 2},
		{Keyword: "tranquil", BouquetIDs: []string{"2"}, Weight: 2},
		{Keyword: "happy", BouquetIDs: []string{"3"}, Weight: 3},
		{Keyword: "joy", BouquetIDs: []string{"3"}, Weight: 3},
		{Keyword: "celebration", BouquetIDs: []string{"3"}, Weight: 3},
		{Keyword: "birthday", BouquetIDs: []string{"3"}, Weight: 3},
		{Keyword: "sympathy", BouquetIDs: []string{"4"}, Weight: 3},
		{Keyword: "condolences", BouquetIDs: []string{"4"}, Weight: 3},
		{Keyword: "funeral", BouquetIDs: []string{"4"}, Weight: 3},
		{Keyword: "new", BouquetIDs: []string{"5"}, Weight: 2},
		{Keyword: "beginning", BouquetIDs: []string{"5"}, Weight: 3},
		{Keyword: "baby", BouquetIDs: []string{"5"}, Weight: 3},
		{Keyword: "thank", BouquetIDs: []string{"6"}, Weight: 3},
		{Keyword: "grateful", BouquetIDs: []string{"6"}, Weight: 3},
		{Keyword: "appreciation", BouquetIDs: []string{"6"}, Weight: 3},
	},
}

// Validate checks every rule against the catalog.
func (r Ruleset) Validate() error {
	if strings.TrimSpace(r.Version) == "" {
		return errors.New("ruleset version is required")
	}
	seen := make(map[string]struct{}, len(r.Rules))
	for _, rule := range r.Rules {
		keyword := strings.TrimSpace(rule.Keyword)
		if keyword == "" {
			return errors.New("ruleset contains a rule without keyword")
		}
		if keyword != strings.ToLower(keyword) {
			return fmt.Errorf("rule %q: keyword must be lower case", keyword)
		}
		if _, dup := seen[keyword]; dup {
			return fmt.Errorf("rule %q: duplicate keyword", keyword)
		}
		seen[keyword] = struct{}{}
		if rule.Weight <= 0 {
			return fmt.Errorf("rule %q: weight must be positive", keyword)
		}
		if len(rule.BouquetIDs) == 0 {
			return fmt.Errorf("rule %q: no bouquet ids", keyword)
		}
		for _, id := range rule.BouquetIDs {
			if catalog.IndexOf(id) < 0 {
				return fmt.Errorf("rule %q: unknown bouquet id %q", keyword, id)
			}
		}
	}
	return nil
}

func (r Ruleset) index() map[string]Rule {
	byKeyword := make(map[string]Rule, len(r.Rules))
	for _, rule := range r.Rules {
		byKeyword[rule.Keyword] = rule
	}
	return byKeyword
}
