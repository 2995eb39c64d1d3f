package categorizer

import (
	"testing"

	"fjacquet/expense-categorizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRuleSet(t *testing.T) {
	rs := DefaultRuleSet()
	assert.Equal(t, DefaultRuleSetVersion, rs.Version())
	assert.Equal(t, models.AllowedCategories(), rs.Allowed())
	assert.False(t, rs.IsAllowed(models.CategoryUncategorized))
	assert.True(t, rs.IsAllowed(models.CategoryOther))
}

func TestRuleSet_MatchKeyword(t *testing.T) {
	rs := DefaultRuleSet()
	tests := []struct {
		name     string
		text     string
		category string
		keyword  string
		found    bool
	}{
		{name: "simple", text: "spent 450 on groceries", category: "Food", keyword: "groceries", found: true},
		{name: "case insensitive", text: "NETFLIX renewal", category: "Entertainment", keyword: "netflix", found: true},
		{name: "definition order wins", text: "gas bill 900", category: "Travel", keyword: "gas", found: true},
		{name: "earlier keyword inside later one", text: "ubereats 300", category: "Food", keyword: "ubereats", found: true},
		{name: "substring not word", text: "paid the busboy", category: "Travel", keyword: "bus", found: true},
		{name: "no match", text: "paid 300 to ramesh", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, found := rs.MatchKeyword(tt.text)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.category, rule.Category)
			assert.Equal(t, tt.keyword, rule.Keyword)
		})
	}
}

func TestRuleSet_NormalizeAICategory(t *testing.T) {
	rs := DefaultRuleSet()
	tests := []struct {
		raw      string
		expected string
		ok       bool
	}{
		{raw: "", ok: false},
		{raw: "   ", ok: false},
		{raw: "Food", expected: "Food", ok: true},
		{raw: " SUBSCRIPTION ", expected: "Entertainment", ok: true},
		{raw: "medical care", expected: "Healthcare", ok: true},
		{raw: "fast food", expected: "Food", ok: true},
		{raw: "movi", expected: "Entertainment", ok: true},
		{raw: "other", expected: "Other", ok: true},
		{raw: "cryptocurrency", expected: "Other", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			category, ok := rs.NormalizeAICategory(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, category)
		})
	}
}

func TestNewRuleSet_Validation(t *testing.T) {
	allowed := []string{"Food", "Other"}

	_, err := NewRuleSet("", nil, nil, allowed)
	assert.Error(t, err)

	_, err = NewRuleSet("v1", nil, nil, nil)
	assert.Error(t, err)

	_, err = NewRuleSet("v1", []KeywordRule{{Keyword: " ", Category: "Food"}}, nil, allowed)
	assert.Error(t, err)

	_, err = NewRuleSet("v1", nil, []KeywordRule{{Keyword: "cab", Category: "Travel"}}, allowed)
	assert.Error(t, err, "synonyms must map into the allowed set")

	rs, err := NewRuleSet("v1", []KeywordRule{{Keyword: " Chai ", Category: "Food"}}, nil, []string{"Food", "Food", "Other"})
	require.NoError(t, err)
	assert.Equal(t, []KeywordRule{{Keyword: "chai", Category: "Food"}}, rs.Keywords())
	assert.Equal(t, []string{"Food", "Other"}, rs.Allowed())
}

func TestRuleSet_IsImmutable(t *testing.T) {
	rs := DefaultRuleSet()

	kws := rs.Keywords()
	kws[0].Category = "Hacked"
	allowed := rs.Allowed()
	allowed[0] = "Hacked"

	rule, _ := rs.MatchKeyword("groceries")
	assert.Equal(t, "Food", rule.Category)
	assert.Equal(t, "Food", rs.Allowed()[0])
}

func TestRuleSetFromConfig(t *testing.T) {
	rs, err := RuleSetFromConfig(models.RulesConfig{
		Version:  "2024-06",
		Keywords: []models.KeywordRule{{Keyword: "chai", Category: "Snacks"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-06", rs.Version())
	rule, found := rs.MatchKeyword("masala chai 20")
	require.True(t, found)
	assert.Equal(t, "Snacks", rule.Category)

	_, found = rs.MatchKeyword("groceries")
	assert.False(t, found, "custom keywords replace the built-in table")

	category, ok := rs.NormalizeAICategory("taxi")
	assert.True(t, ok)
	assert.Equal(t, "Travel", category, "synonyms fall back to built-ins")
	assert.Equal(t, models.AllowedCategories(), rs.Allowed())

	cfg := rs.Config()
	assert.Equal(t, "2024-06", cfg.Version)
	assert.Equal(t, []models.KeywordRule{{Keyword: "chai", Category: "Snacks"}}, cfg.Keywords)
}
