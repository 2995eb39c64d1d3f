package categorizer

import (
	"fmt"
	"strings"

	"fjacquet/expense-categorizer/internal/models"
)

// DefaultRuleSetVersion identifies the built-in dictionary.
const DefaultRuleSetVersion = "builtin-1"

// KeywordRule maps a lowercase keyword to a category.
type KeywordRule struct {
	Keyword  string
	Category string
}

// RuleSet is the immutable static configuration of the cascade: the ordered
// keyword table, the ordered synonym mapping applied to AI output and the
// allowed category set. All accessors return copies.
type RuleSet struct {
	version    string
	keywords   []KeywordRule
	aiSynonyms []KeywordRule
	allowed    []string
}

// NewRuleSet validates and copies its inputs. Keywords are lowercased and
// trimmed; rule order is preserved.
func NewRuleSet(version string, keywords, aiSynonyms []KeywordRule, allowed []string) (*RuleSet, error) {
	if strings.TrimSpace(version) == "" {
		return nil, fmt.Errorf("rule set version is required")
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("rule set %s: allowed categories are required", version)
	}

	rs := &RuleSet{version: version, allowed: make([]string, 0, len(allowed))}
	allowedIdx := make(map[string]struct{}, len(allowed))
	for _, c := range allowed {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("rule set %s: empty allowed category", version)
		}
		if _, dup := allowedIdx[c]; dup {
			continue
		}
		allowedIdx[c] = struct{}{}
		rs.allowed = append(rs.allowed, c)
	}

	var err error
	if rs.keywords, err = cleanRules(version, "keyword", keywords); err != nil {
		return nil, err
	}
	if rs.aiSynonyms, err = cleanRules(version, "ai synonym", aiSynonyms); err != nil {
		return nil, err
	}
	for _, r := range rs.aiSynonyms {
		if _, ok := allowedIdx[r.Category]; !ok {
			return nil, fmt.Errorf("rule set %s: ai synonym %q maps to %q outside the allowed set", version, r.Keyword, r.Category)
		}
	}
	return rs, nil
}

func cleanRules(version, kind string, in []KeywordRule) ([]KeywordRule, error) {
	out := make([]KeywordRule, 0, len(in))
	for i, r := range in {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		cat := strings.TrimSpace(r.Category)
		if kw == "" || cat == "" {
			return nil, fmt.Errorf("rule set %s: %s rule %d has empty keyword or category", version, kind, i)
		}
		out = append(out, KeywordRule{Keyword: kw, Category: cat})
	}
	return out, nil
}

// RuleSetFromConfig builds a RuleSet from its YAML form. Missing sections fall
// back to the built-in ones.
func RuleSetFromConfig(cfg models.RulesConfig) (*RuleSet, error) {
	def := DefaultRuleSet()

	version := cfg.Version
	if version == "" {
		version = "custom"
	}
	keywords := def.keywords
	if len(cfg.Keywords) > 0 {
		keywords = convertRules(cfg.Keywords)
	}
	synonyms := def.aiSynonyms
	if len(cfg.AISynonyms) > 0 {
		synonyms = convertRules(cfg.AISynonyms)
	}
	allowed := def.allowed
	if len(cfg.Allowed) > 0 {
		allowed = cfg.Allowed
	}
	return NewRuleSet(version, keywords, synonyms, allowed)
}

func convertRules(in []models.KeywordRule) []KeywordRule {
	out := make([]KeywordRule, len(in))
	for i, r := range in {
		out[i] = KeywordRule{Keyword: r.Keyword, Category: r.Category}
	}
	return out
}

// Config returns the YAML form of the rule set.
func (rs *RuleSet) Config() models.RulesConfig {
	cfg := models.RulesConfig{Version: rs.version, Allowed: rs.Allowed()}
	for _, r := range rs.keywords {
		cfg.Keywords = append(cfg.Keywords, models.KeywordRule{Keyword: r.Keyword, Category: r.Category})
	}
	for _, r := range rs.aiSynonyms {
		cfg.AISynonyms = append(cfg.AISynonyms, models.KeywordRule{Keyword: r.Keyword, Category: r.Category})
	}
	return cfg
}

// Version returns the rule set version.
func (rs *RuleSet) Version() string { return rs.version }

// Keywords returns a copy of the ordered keyword table.
func (rs *RuleSet) Keywords() []KeywordRule {
	out := make([]KeywordRule, len(rs.keywords))
	copy(out, rs.keywords)
	return out
}

// Allowed returns a copy of the allowed category set.
func (rs *RuleSet) Allowed() []string {
	out := make([]string, len(rs.allowed))
	copy(out, rs.allowed)
	return out
}

// IsAllowed reports whether category is in the allowed set.
func (rs *RuleSet) IsAllowed(category string) bool {
	for _, c := range rs.allowed {
		if c == category {
			return true
		}
	}
	return false
}

// MatchKeyword returns the first rule whose keyword is a case-insensitive
// substring of text.
func (rs *RuleSet) MatchKeyword(text string) (KeywordRule, bool) {
	lower := strings.ToLower(text)
	for _, r := range rs.keywords {
		if strings.Contains(lower, r.Keyword) {
			return r, true
		}
	}
	return KeywordRule{}, false
}

// NormalizeAICategory maps a free-form AI category onto the allowed set.
// ok is false when raw is empty.
func (rs *RuleSet) NormalizeAICategory(raw string) (category string, ok bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	for _, r := range rs.aiSynonyms {
		if r.Keyword == key {
			return r.Category, true
		}
	}
	for _, r := range rs.aiSynonyms {
		if strings.Contains(key, r.Keyword) || strings.Contains(r.Keyword, key) {
			return r.Category, true
		}
	}
	return models.CategoryOther, true
}

func group(category string, keywords ...string) []KeywordRule {
	out := make([]KeywordRule, len(keywords))
	for i, kw := range keywords {
		out[i] = KeywordRule{Keyword: kw, Category: category}
	}
	return out
}

func concat(groups ...[]KeywordRule) []KeywordRule {
	var out []KeywordRule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DefaultRuleSet returns the built-in dictionary.
func DefaultRuleSet() *RuleSet {
	keywords := concat(
		group(models.CategoryFood, "groceries", "grocery", "restaurant", "dining", "lunch", "dinner",
			"breakfast", "snacks", "coffee", "swiggy", "zomato", "ubereats"),
		group(models.CategoryTravel, "travel", "transport", "taxi", "uber", "ola", "bus",
			"train", "flight", "airline", "fuel", "petrol", "gas"),
		group(models.CategoryEntertainment, "entertainment", "movie", "cinema", "netflix",
			"hotstar", "sunnxt", "spotify", "prime", "disney", "playstation", "xbox"),
		group(models.CategoryShopping, "shopping", "amazon", "flipkart", "myntra", "apparel",
			"clothing", "mall", "electronics", "gadget"),
		group(models.CategoryUtilities, "utilities", "electricity", "water", "internet", "broadband",
			"jio", "airtel", "bsnl", "bill"),
		group(models.CategoryHealthcare, "health", "healthcare", "medicine", "hospital", "doctor",
			"pharmacy", "apollo", "pharmeasy", "practo"),
	)
	synonyms := concat(
		group(models.CategoryFood, "food", "restaurant", "groceries"),
		group(models.CategoryTravel, "travel", "transport", "taxi", "fuel"),
		group(models.CategoryEntertainment, "entertainment", "movies", "movie", "subscription"),
		group(models.CategoryShopping, "shopping", "apparel", "clothing", "electronics"),
		group(models.CategoryUtilities, "utilities", "internet", "electricity", "water"),
		group(models.CategoryHealthcare, "health", "healthcare", "medical", "medicine"),
		group(models.CategoryOther, "other"),
	)

	rs, err := NewRuleSet(DefaultRuleSetVersion, keywords, synonyms, models.AllowedCategories())
	if err != nil {
		panic(fmt.Sprintf("invalid built-in rule set: %v", err))
	}
	return rs
}
