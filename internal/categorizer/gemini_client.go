package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/expense-categorizer/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiClient implements AIClient with the Google Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	allowed []string
	logger  logging.Logger
}

// NewGeminiClient creates a Gemini-backed classifier. allowed is listed in
// the prompt so the model answers within the category set.
func NewGeminiClient(ctx context.Context, apiKey, model string, allowed []string, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0.1)

	return &GeminiClient{client: client, model: m, allowed: allowed, logger: logger}, nil
}

func (c *GeminiClient) prompt(text string) string {
	return fmt.Sprintf(`Classify the following personal expense into exactly one of these categories: %s.

Expense: %q

Respond with ONLY a JSON object of the form {"category": "<category>", "confidence": <number between 0 and 1>}.`,
		strings.Join(c.allowed, ", "), text)
}

// Classify asks the model for a category and confidence.
func (c *GeminiClient) Classify(ctx context.Context, text string) (AIResponse, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(c.prompt(text)))
	if err != nil {
		return AIResponse{}, fmt.Errorf("gemini API error: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return AIResponse{}, fmt.Errorf("no response from Gemini API")
	}

	c.logger.WithField("operation", "gemini_classification").Debug("Received Gemini response")
	return parseAIResponse(sb.String())
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
