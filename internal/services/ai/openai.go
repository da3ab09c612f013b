package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mindtide/mindtide/internal/models"
	"github.com/mindtide/mindtide/internal/wellness"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxNotesLength caps how much note text is sent for analysis
	MaxNotesLength = 4000
	// MaxAffirmationTokens bounds the affirmation completion
	MaxAffirmationTokens = 100

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIAnalyzer implements wellness.TextAnalyzer and affirmation
// generation on top of OpenAI's chat completions API.
type OpenAIAnalyzer struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

var _ wellness.TextAnalyzer = (*OpenAIAnalyzer)(nil)

// NewOpenAIAnalyzer creates a new OpenAI-backed analyzer
func NewOpenAIAnalyzer(apiKey string, model string) *OpenAIAnalyzer {
	return NewOpenAIAnalyzerWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIAnalyzerWithLogger creates a new OpenAI-backed analyzer with logger support
func NewOpenAIAnalyzerWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIAnalyzer {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIAnalyzer{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// AnalyzeNotes extracts sentiment, topics, and confidence from free-text
// check-in notes. Transport and parse failures surface as errors so the
// classifier can fall back to structured fields alone.
func (a *OpenAIAnalyzer) AnalyzeNotes(ctx context.Context, text string) (*wellness.TextInsight, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty notes")
	}
	if len(text) > MaxNotesLength {
		text = text[:MaxNotesLength]
	}

	content, err := a.sendJSONRequest(ctx, "analyze_notes",
		"You analyze short emotional-wellness journal notes. Respond with valid JSON only.",
		buildNotesPrompt(text))
	if err != nil {
		return nil, err
	}

	return parseInsightResponse(content)
}

// buildNotesPrompt builds the prompt for note analysis
func buildNotesPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following journal note from a daily emotional check-in.

Note: %q

Respond with a JSON object in this format:
{
  "sentiment": "positive" | "neutral" | "negative",
  "topics": ["short topic", ...],
  "confidence": 0.0
}

Guidelines:
- "sentiment" is the overall emotional polarity of the note
- "topics" are at most five short lowercase labels naming what the note is about (e.g. "work", "sleep", "family")
- "confidence" is your certainty in the sentiment, between 0 and 1

Return only valid JSON.`, text)
}

// parseInsightResponse parses model output, tolerating prose around the
// JSON object, and normalizes the sentiment value.
func parseInsightResponse(content string) (*wellness.TextInsight, error) {
	var payload struct {
		Sentiment  string   `json:"sentiment"`
		Topics     []string `json:"topics"`
		Confidence float64  `json:"confidence"`
	}
	raw := content
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		if len(raw) > 0 && raw[0] != '{' {
			start := bytes.Index([]byte(raw), []byte("{"))
			end := bytes.LastIndex([]byte(raw), []byte("}"))
			if start != -1 && end != -1 && end > start {
				raw = raw[start : end+1]
			}
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("failed to parse analysis response: %w", err)
		}
	}

	var sentiment wellness.Sentiment
	switch strings.ToLower(strings.TrimSpace(payload.Sentiment)) {
	case "positive":
		sentiment = wellness.SentimentPositive
	case "neutral":
		sentiment = wellness.SentimentNeutral
	case "negative":
		sentiment = wellness.SentimentNegative
	default:
		return nil, fmt.Errorf("unrecognized sentiment %q", payload.Sentiment)
	}

	confidence := payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	topics := make([]string, 0, len(payload.Topics))
	for _, topic := range payload.Topics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic != "" {
			topics = append(topics, topic)
		}
	}

	return &wellness.TextInsight{
		Sentiment:  sentiment,
		Topics:     topics,
		Confidence: confidence,
	}, nil
}

// GenerateAffirmation asks the model for one short supportive sentence
// matched to the assessment. Callers that must never fail should wrap
// this with AffirmationOrDefault.
func (a *OpenAIAnalyzer) GenerateAffirmation(ctx context.Context, assessment *models.StressAssessment) (string, error) {
	if assessment == nil {
		return "", errors.New("nil assessment")
	}

	prompt := fmt.Sprintf("Write one short, warm, non-clinical affirmation (max 25 words) for someone whose stress level today is %d out of 5", assessment.StressLevel)
	if assessment.StressType != models.StressTypeNone {
		prompt += fmt.Sprintf(" and whose stress pattern is %s", assessment.StressType)
	}
	prompt += ". Respond with the sentence only, no quotes."

	content, err := a.sendTextRequest(ctx, "generate_affirmation",
		"You are a supportive wellness companion. Keep responses short and kind.", prompt)
	if err != nil {
		return "", err
	}
	affirmation := strings.TrimSpace(strings.Trim(strings.TrimSpace(content), `"`))
	if affirmation == "" {
		return "", errors.New("empty affirmation")
	}
	return affirmation, nil
}

// sendJSONRequest sends a chat completion with JSON response format
func (a *OpenAIAnalyzer) sendJSONRequest(ctx context.Context, operation, system, prompt string) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	return a.send(ctx, operation, prompt, req)
}

// sendTextRequest sends a plain chat completion
func (a *OpenAIAnalyzer) sendTextRequest(ctx context.Context, operation, system, prompt string) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(MaxAffirmationTokens),
	}
	return a.send(ctx, operation, prompt, req)
}

func (a *OpenAIAnalyzer) send(ctx context.Context, operation, prompt string, req openai.ChatCompletionNewParams) (string, error) {
	requestID := ExtractRequestID(ctx)
	if a.logger != nil && a.debugMode {
		a.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", a.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := a.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if a.logger != nil && a.debugMode {
			a.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", a.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("%s failed: %w", operation, apiErr)
		}
		return "", fmt.Errorf("%s failed: %w", operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if a.logger != nil && a.debugMode {
		a.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", a.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}
