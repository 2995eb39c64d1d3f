package categorizer

import "context"

// Strategy names, also used as ClassificationResult.Source and metric labels.
const (
	SourceStaticRule  = "static_rule"
	SourceDynamicRule = "dynamic_rule"
	SourceUserMemory  = "user_memory"
	SourceAI          = "ai"
	SourcePlaceholder = "placeholder"
)

// Input is what every strategy sees for one request.
type Input struct {
	UserID  string
	RawText string
	// Term is the normalized subject extracted from RawText; may be empty.
	Term string
}

// Match is a strategy's answer.
type Match struct {
	Category   string
	Confidence *float64
	// Tentative marks an AI suggestion below the confidence threshold.
	Tentative bool
	// Learn asks the resolver to cache Term -> Category in the rule store.
	Learn bool
	// Keyword is the matched static keyword or memory term, for logs.
	Keyword string
}

// CategorizationStrategy is one stage of the cascade.
// Each strategy implements a specific approach to categorization (static
// rules, learned rules, user memory, AI).
type CategorizationStrategy interface {
	// Categorize attempts to categorize the input using this strategy.
	// Returns the match, a boolean indicating if categorization was
	// successful, and any error encountered during the process. An error is
	// treated by the resolver as "no answer from this stage".
	Categorize(ctx context.Context, in Input) (Match, bool, error)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}
