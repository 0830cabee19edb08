// Package oracle implements the judgment collaborator behind the
// radar.Oracle interface. The external judge is untrusted: its answers may
// be malformed or missing, so all JSON repair, retry, and pacing logic lives
// at this boundary and nowhere else.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"techradar/internal/radar"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// ErrMalformedOpinion reports an oracle answer that could not be parsed
// after repair. Callers treat it as recoverable.
var ErrMalformedOpinion = errors.New("oracle: malformed opinion")

type completionFunc func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)

// Client is the OpenAI-backed oracle.
type Client struct {
	complete    completionFunc
	model       string
	maxTokens   int
	temperature float32
	attempts    int
	limiter     *rate.Limiter
	sleep       func(ctx context.Context, d time.Duration) error
}

// Options configures the oracle client.
type Options struct {
	// Model names the chat model; empty selects gpt-4o-mini.
	Model string
	// MaxTokens caps the classification answer; 0 selects 1000.
	MaxTokens int
	// Temperature for classification questions; curation questions always
	// run at 0.1.
	Temperature float32
	// Attempts bounds retries per question, covering both transport and
	// malformed-payload failures; 0 selects 3.
	Attempts int
	// RequestsPerMinute paces outbound calls; 0 selects 60.
	RequestsPerMinute int
}

// NewClient builds an oracle backed by the OpenAI chat API.
func NewClient(apiKey string, opts Options) *Client {
	api := openai.NewClient(apiKey)
	return newClient(api.CreateChatCompletion, opts)
}

func newClient(complete completionFunc, opts Options) *Client {
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.3
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}
	return &Client{
		complete:    complete,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		attempts:    opts.Attempts,
		limiter:     rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1),
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ask sends one question and decodes the JSON answer into out, retrying
// transport errors and malformed payloads alike with exponential backoff.
func (c *Client) ask(ctx context.Context, system, user string, temperature float32, maxTokens int, out any) error {
	if c == nil || c.complete == nil {
		return fmt.Errorf("oracle: client not initialized")
	}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			if err := c.sleep(ctx, backoff); err != nil {
				return err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		resp, err := c.complete(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			Temperature: temperature,
			MaxTokens:   maxTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("%w: no choices", ErrMalformedOpinion)
			continue
		}

		if err := decodeOpinion(resp.Choices[0].Message.Content, out); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// decodeOpinion parses a JSON answer, stripping markdown fences the judge
// sometimes wraps around the payload.
func decodeOpinion(content string, out any) error {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	// Some answers prepend prose; recover the first JSON object.
	if !strings.HasPrefix(trimmed, "{") {
		start := strings.Index(trimmed, "{")
		end := strings.LastIndex(trimmed, "}")
		if start < 0 || end <= start {
			return fmt.Errorf("%w: no JSON object in answer", ErrMalformedOpinion)
		}
		trimmed = trimmed[start : end+1]
	}
	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOpinion, err)
	}
	return nil
}

type techAnswer struct {
	Quadrant    json.RawMessage `json:"quadrant"`
	Description string          `json:"description"`
	Confidence  string          `json:"ai_confidence"`
}

// ClassifyTechnology asks for quadrant, description, and a confidence label.
func (c *Client) ClassifyTechnology(ctx context.Context, q radar.TechQuestion) (radar.TechOpinion, error) {
	var answer techAnswer
	if err := c.ask(ctx, classifySystemPrompt, classifyPrompt(q), c.temperature, c.maxTokens, &answer); err != nil {
		return radar.TechOpinion{}, err
	}
	return radar.TechOpinion{
		Quadrant:    parseQuadrant(answer.Quadrant),
		Description: answer.Description,
		Confidence:  parseConfidence(answer.Confidence),
	}, nil
}

type domainAnswer struct {
	Domain     string  `json:"domain"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ClassifyDomain asks for a repository's engineering domain.
func (c *Client) ClassifyDomain(ctx context.Context, q radar.DomainQuestion) (radar.DomainOpinion, error) {
	var answer domainAnswer
	if err := c.ask(ctx, domainSystemPrompt, domainPrompt(q), 0.1, 300, &answer); err != nil {
		return radar.DomainOpinion{}, err
	}
	domain := radar.DomainTag(strings.ToLower(strings.TrimSpace(answer.Domain)))
	if !radar.IsKnownDomain(domain) {
		domain = radar.DomainUnknown
	}
	confidence := answer.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return radar.DomainOpinion{Domain: domain, Confidence: confidence, Reasoning: answer.Reasoning}, nil
}

type strategicAnswer struct {
	StrategicValue string `json:"strategic_value"`
	Reason         string `json:"reason"`
	Confidence     string `json:"confidence"`
}

// JudgeStrategicValue asks whether a technology belongs on the radar.
func (c *Client) JudgeStrategicValue(ctx context.Context, q radar.StrategicQuestion) (radar.StrategicOpinion, error) {
	var answer strategicAnswer
	if err := c.ask(ctx, strategicSystemPrompt, strategicPrompt(q), 0.1, 300, &answer); err != nil {
		return radar.StrategicOpinion{}, err
	}
	return radar.StrategicOpinion{
		Value:      parseConfidence(answer.StrategicValue),
		Reason:     answer.Reason,
		Confidence: parseConfidence(answer.Confidence),
	}, nil
}

type duplicateAnswer struct {
	AreDuplicates bool     `json:"are_duplicates"`
	Canonical     string   `json:"canonical_name"`
	Candidates    []string `json:"merge_candidates"`
	Reason        string   `json:"reason"`
}

// JudgeDuplicates asks whether a group of similar names is one technology.
func (c *Client) JudgeDuplicates(ctx context.Context, names []string) (radar.DuplicateOpinion, error) {
	var answer duplicateAnswer
	if err := c.ask(ctx, duplicateSystemPrompt, duplicatePrompt(names), 0.1, 200, &answer); err != nil {
		return radar.DuplicateOpinion{}, err
	}
	return radar.DuplicateOpinion{
		AreDuplicates: answer.AreDuplicates,
		Canonical:     answer.Canonical,
		Candidates:    answer.Candidates,
		Reason:        answer.Reason,
	}, nil
}

type hierarchyAnswer struct {
	ShouldConsolidate bool   `json:"should_consolidate"`
	Reason            string `json:"reason"`
}

// JudgeHierarchy asks whether children are true sub-features of parent.
func (c *Client) JudgeHierarchy(ctx context.Context, parent string, children []string) (radar.HierarchyOpinion, error) {
	var answer hierarchyAnswer
	if err := c.ask(ctx, hierarchySystemPrompt, hierarchyPrompt(parent, children), 0.1, 200, &answer); err != nil {
		return radar.HierarchyOpinion{}, err
	}
	return radar.HierarchyOpinion{Consolidate: answer.ShouldConsolidate, Reason: answer.Reason}, nil
}

// parseQuadrant accepts either the numeric index the prompt suggests or a
// quadrant name, defaulting to empty (callers fall back to keyword
// inference).
func parseQuadrant(raw json.RawMessage) radar.Quadrant {
	if len(raw) == 0 {
		return ""
	}

	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		switch idx {
		case 0:
			return radar.QuadrantTechniques
		case 1:
			return radar.QuadrantTools
		case 2:
			return radar.QuadrantPlatforms
		case 3:
			return radar.QuadrantLanguages
		}
		return ""
	}

	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "techniques", "technique", "0":
		return radar.QuadrantTechniques
	case "tools", "tool", "1":
		return radar.QuadrantTools
	case "platforms", "platform", "2":
		return radar.QuadrantPlatforms
	case "languages & frameworks", "languages and frameworks", "languages", "frameworks", "3":
		return radar.QuadrantLanguages
	}
	return ""
}

func parseConfidence(label string) radar.ConfidenceLabel {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "high":
		return radar.ConfidenceHigh
	case "medium":
		return radar.ConfidenceMedium
	case "low":
		return radar.ConfidenceLow
	}
	return radar.ConfidenceLabel(strings.ToLower(strings.TrimSpace(label)))
}
