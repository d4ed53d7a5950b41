package generativeAI

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
)

const defaultModel = "gemini-2.0-flash"

// AIClient wraps the Gemini chat-completion API. The provider contract is
// fixed: prompt in, JSON text out, responses must survive truncation (the
// caller's repair cascade handles that).
type AIClient struct {
	client *genai.Client
	model  string
}

// NewAIClient builds the client from GOOGLE_GEMINI_API_KEY. GEMINI_MODEL
// selects an alternate model when set.
func NewAIClient(ctx context.Context) (*AIClient, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		client: client,
		model:  model,
	}, nil
}

// GenerateJSON issues one completion that must return a strict JSON object.
// maxTokens bounds the response; 0 leaves the model default in place.
func (ai *AIClient) GenerateJSON(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.4),
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = maxTokens
	}

	metrics.Get().AIRequestsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("model", ai.model)))

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	txt := result.Text()
	if txt == "" {
		return "", fmt.Errorf("no valid content from AI")
	}
	return txt, nil
}
