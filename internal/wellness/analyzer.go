// Package wellness holds the stress classification and weekly aggregation
// core. Everything in this package is a pure transform over in-memory
// data: no storage, no transport, and no fatal error paths. The only
// side call is the optional TextAnalyzer used for free-text notes, and
// its failure is always recoverable.
package wellness

import "context"

// Sentiment is the coarse polarity of analyzed free text
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// TextInsight is what a TextAnalyzer extracts from check-in notes
type TextInsight struct {
	Sentiment  Sentiment `json:"sentiment"`
	Topics     []string  `json:"topics,omitempty"`
	Confidence float64   `json:"confidence"` // 0-1
}

// TextAnalyzer analyzes free-text notes. Implementations may call out to
// an LLM; the classifier treats any error, timeout, or cancellation as
// "no text signal available" and proceeds on structured fields alone.
type TextAnalyzer interface {
	AnalyzeNotes(ctx context.Context, text string) (*TextInsight, error)
}
