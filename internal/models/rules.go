package models

// KeywordRule maps a keyword substring to a category.
type KeywordRule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// RulesConfig is the on-disk representation of a rule set. Rule order is
// significant: the first matching keyword wins.
type RulesConfig struct {
	Version    string        `yaml:"version"`
	Keywords   []KeywordRule `yaml:"keywords"`
	AISynonyms []KeywordRule `yaml:"ai_synonyms"`
	Allowed    []string      `yaml:"allowed"`
}
