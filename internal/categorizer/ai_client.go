package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AIResponse is the raw answer of an AI classifier. Category is free-form
// and Confidence is nil when the classifier did not provide a usable one.
type AIResponse struct {
	Category   string
	Confidence *float64
}

// AIClient defines the interface for AI-based categorization services.
// This abstraction allows the core categorization logic to be tested independently
// of external API calls and provides flexibility in choosing AI providers.
type AIClient interface {
	// Classify sends text to the classifier. Implementations must honour ctx.
	Classify(ctx context.Context, text string) (AIResponse, error)
}

// wireConfidence accepts a JSON number, a numeric string or null.
type wireConfidence struct {
	value *float64
}

func (c *wireConfidence) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Unparseable confidence is treated as absent.
		return nil
	}
	c.value = &v
	return nil
}

type wireClassification struct {
	Category   string         `json:"category"`
	Confidence wireConfidence `json:"confidence"`
}

// parseAIResponse decodes a {"category": ..., "confidence": ...} object,
// tolerating markdown code fences around it.
func parseAIResponse(content string) (AIResponse, error) {
	content = cleanMarkdownWrapper(content)
	var wire wireClassification
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return AIResponse{}, fmt.Errorf("failed to parse classifier response: %w", err)
	}
	return AIResponse{Category: wire.Category, Confidence: wire.Confidence.value}, nil
}

func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
