// Package ai turns a batch of YouTube comments into a structured viewpoint
// analysis using Gemini.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"comment-lens/internal/models"
	"comment-lens/shared/apperrors"
	"comment-lens/shared/monitoring"

	"google.golang.org/genai"
)

// maxCommentChars bounds how much of a single comment makes it into the
// prompt. Comments are frequently Japanese, so the cut is rune-based.
const maxCommentChars = 500

// ContentGenerator is the slice of the Gemini client the analyzer needs.
// *genai.Models satisfies it; tests substitute doubles.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Analyzer struct {
	generator   ContentGenerator
	model       string
	maxComments int
}

func New(ctx context.Context, apiKey, model string, maxComments int) (*Analyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return NewWithGenerator(client.Models, model, maxComments), nil
}

func NewWithGenerator(generator ContentGenerator, model string, maxComments int) *Analyzer {
	return &Analyzer{
		generator:   generator,
		model:       model,
		maxComments: maxComments,
	}
}

// Analyze sends the comment batch to Gemini in a single request and returns
// the parsed viewpoint analysis. Batches larger than the analyzer's limit
// are cut down to the first comments in fetch order.
func (a *Analyzer) Analyze(ctx context.Context, comments []string) (*models.AnalysisResult, error) {
	if len(comments) > a.maxComments {
		log.Printf("Truncating comment batch from %d to %d for analysis", len(comments), a.maxComments)
		comments = comments[:a.maxComments]
	}

	prompt := a.buildAnalysisPrompt(comments)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	result, err := a.generator.GenerateContent(ctx, a.model, contents, analysisConfig())
	if err != nil {
		monitoring.GeminiRequestsTotal.WithLabelValues("error").Inc()
		log.Printf("Gemini request failed: %v", err)
		return nil, apperrors.Wrap(apperrors.KindUpstreamFailure, err, "AI analysis failed")
	}
	monitoring.GeminiRequestsTotal.WithLabelValues("ok").Inc()

	return a.parseAnalysisResponse(result.Text())
}

func (a *Analyzer) buildAnalysisPrompt(comments []string) string {
	var b strings.Builder

	b.WriteString(`You are an AI assistant that analyzes YouTube comment sections to map out the viewpoints expressed in them.

INSTRUCTIONS:
1. Read every comment below and identify the 2-4 main viewpoints being argued.
2. Assign each comment to exactly one viewpoint, or to the neutral bucket when it takes no side.
3. Name the viewpoint buckets exactly 意見1を支持, 意見2を支持, and so on, following the order of the viewpoints list.
4. Name the neutral bucket exactly 中立/その他.
5. Write a short summary of the overall discussion, 2-3 sentences, in the dominant language of the comments.

Respond with JSON: "viewpoints" (the viewpoint descriptions, 2-4 entries), "summary", and "sentiment" (one {"name", "count"} entry per bucket, counts covering every comment).

`)

	fmt.Fprintf(&b, "COMMENTS (%d):\n", len(comments))
	for i, comment := range comments {
		fmt.Fprintf(&b, "%d. %s\n", i+1, truncateString(comment, maxCommentChars))
	}

	return b.String()
}

func (a *Analyzer) parseAnalysisResponse(response string) (*models.AnalysisResult, error) {
	jsonStr := sanitizeJSON(response)
	if jsonStr == "" {
		log.Printf("No JSON found in Gemini response: %q", truncateString(response, 200))
		return nil, apperrors.New(apperrors.KindUpstreamFailure, "AI analysis failed")
	}

	var payload struct {
		Viewpoints []string `json:"viewpoints"`
		Summary    string   `json:"summary"`
		Sentiment  []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"sentiment"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// valid JSON, wrong shape
			return nil, apperrors.Wrap(apperrors.KindMalformedResponse, err, "malformed AI response")
		}
		log.Printf("Failed to unmarshal Gemini response %q: %v", truncateString(jsonStr, 200), err)
		return nil, apperrors.Wrap(apperrors.KindUpstreamFailure, err, "AI analysis failed")
	}

	if payload.Summary == "" || payload.Viewpoints == nil || payload.Sentiment == nil {
		return nil, apperrors.New(apperrors.KindMalformedResponse, "malformed AI response")
	}

	result := &models.AnalysisResult{
		Summary:    payload.Summary,
		Viewpoints: payload.Viewpoints,
	}
	for _, bucket := range payload.Sentiment {
		result.Sentiment = append(result.Sentiment, models.SentimentBucket{
			Name:  rewriteBucketName(bucket.Name),
			Count: bucket.Count,
		})
	}

	return result, nil
}

// analysisConfig constrains Gemini to the JSON document the parser expects.
func analysisConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"viewpoints": {
					Type:     genai.TypeArray,
					Items:    &genai.Schema{Type: genai.TypeString},
					MinItems: genai.Ptr[int64](2),
					MaxItems: genai.Ptr[int64](4),
				},
				"summary": {Type: genai.TypeString},
				"sentiment": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":  {Type: genai.TypeString},
							"count": {Type: genai.TypeInteger, Minimum: genai.Ptr(0.0)},
						},
						Required: []string{"name", "count"},
					},
				},
			},
			Required: []string{"viewpoints", "summary", "sentiment"},
		},
	}
}

// sanitizeJSON strips markdown fences and any prose around the JSON object.
func sanitizeJSON(response string) string {
	s := strings.TrimSpace(response)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

func truncateString(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes]) + "…"
}
