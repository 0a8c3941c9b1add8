// Package ai scores translations with an OpenAI-compatible chat completions API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/phrasebot/internal/texts"
	"github.com/example/phrasebot/pkg/models"
)

var errNoAPIKey = errors.New("AI_API_KEY is not set")

// Config configures the scoring client
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client evaluates translations. It makes a single attempt per call.
type Client struct {
	apiKey      string
	apiURL      string
	model       string
	temperature float64
	timeout     time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

// New creates a scoring client. A missing API key is not an error: every
// evaluation then returns the fallback verdict.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		logger.Warn("AI_API_KEY is not set, translations will not be scored")
	}

	return &Client{
		apiKey:      cfg.APIKey,
		apiURL:      strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:       cfg.Model,
		temperature: 0.2,
		timeout:     cfg.Timeout,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

// Message represents a message in the chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// ChatRequest represents a request to the chat completions API
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// ChatResponse represents a response from the chat completions API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Evaluate scores a translation. It never fails: any transport, timeout or
// parse problem yields Fallback(req).
func (c *Client) Evaluate(ctx context.Context, req models.EvaluationRequest) models.Evaluation {
	result, err := c.evaluate(ctx, req)
	if err != nil {
		c.logger.Error("translation scoring failed", "direction", req.Direction, "err", err)
		return Fallback(req)
	}
	return result
}

// Fallback is the fixed verdict returned when scoring is unavailable
func Fallback(req models.EvaluationRequest) models.Evaluation {
	return models.Evaluation{
		Score:                0,
		Explanation:          texts.Message(req.Locale, texts.MsgScoringUnavailable),
		CorrectedTranslation: req.Reference,
		Mistakes:             []models.Mistake{},
		Fallback:             true,
	}
}

func (c *Client) evaluate(ctx context.Context, req models.EvaluationRequest) (models.Evaluation, error) {
	if c.apiKey == "" {
		return models.Evaluation{}, errNoAPIKey
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	content, err := c.complete(ctx, []Message{
		{Role: "system", Content: "You are a language expert who grades translations. Reply with a single JSON object and nothing else."},
		{Role: "user", Content: buildPrompt(req)},
	})
	if err != nil {
		return models.Evaluation{}, err
	}

	result, err := parseEvaluation(content)
	if err != nil {
		return models.Evaluation{}, err
	}
	if result.CorrectedTranslation == "" {
		result.CorrectedTranslation = req.Reference
	}
	return result, nil
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	request := ChatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    c.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("no response choices returned")
	}

	return response.Choices[0].Message.Content, nil
}

func buildPrompt(req models.EvaluationRequest) string {
	from, to := req.Direction.Source(), req.Direction.Target()
	locale := req.Locale
	if locale == "" {
		locale = models.DefaultLocale
	}

	return fmt.Sprintf(`Evaluate the user's translation based on the original phrase and a correct example.
Respond ONLY with valid JSON, without markdown code fences.

The user's interface language is '%[1]s'. The explanation and every description must be written in this language.

- Original phrase (%[2]s): %[4]q
- User's translation (%[3]s): %[5]q
- Example of a correct translation (%[3]s): %[6]q

Analyze the user's translation for grammar, vocabulary and meaning.
Assign a score from 0 to 100, where 100 is a perfect translation.

The JSON must have this structure:
{
  "score": <integer 0-100>,
  "explanation": "<feedback in %[1]s>",
  "corrected_translation": "<an ideal version of the translation>",
  "mistakes": [
    {"type": "<Grammar, Vocabulary, Punctuation or Meaning>", "description": "<short description in %[1]s>"}
  ]
}

If the translation is perfect, "mistakes" must be an empty array.`,
		locale, from, to, req.Original, req.Answer, req.Reference)
}

// rawEvaluation distinguishes a missing score from a zero score
type rawEvaluation struct {
	Score                *int             `json:"score"`
	Explanation          string           `json:"explanation"`
	CorrectedTranslation string           `json:"corrected_translation"`
	Mistakes             []models.Mistake `json:"mistakes"`
}

func parseEvaluation(content string) (models.Evaluation, error) {
	cleaned := stripFences(content)

	var raw rawEvaluation
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return models.Evaluation{}, fmt.Errorf("failed to parse evaluation %q: %w", truncate(cleaned, 200), err)
	}
	if raw.Score == nil {
		return models.Evaluation{}, errors.New("evaluation has no score")
	}
	if *raw.Score < 0 || *raw.Score > 100 {
		return models.Evaluation{}, fmt.Errorf("evaluation score %d out of range", *raw.Score)
	}

	mistakes := raw.Mistakes
	if mistakes == nil {
		mistakes = []models.Mistake{}
	}

	return models.Evaluation{
		Score:                *raw.Score,
		Explanation:          strings.TrimSpace(raw.Explanation),
		CorrectedTranslation: strings.TrimSpace(raw.CorrectedTranslation),
		Mistakes:             mistakes,
	}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
