package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"techradar/internal/radar"

	openai "github.com/sashabaranov/go-openai"
)

func respondWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

// scriptedCompletion replays answers in order; an empty string means a
// transport error.
func scriptedCompletion(answers []string) (completionFunc, *int) {
	calls := new(int)
	fn := func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		idx := *calls
		*calls++
		if idx >= len(answers) {
			return openai.ChatCompletionResponse{}, errors.New("script exhausted")
		}
		if answers[idx] == "" {
			return openai.ChatCompletionResponse{}, errors.New("transport error")
		}
		return respondWith(answers[idx]), nil
	}
	return fn, calls
}

func testClient(answers []string) (*Client, *int) {
	fn, calls := scriptedCompletion(answers)
	c := newClient(fn, Options{RequestsPerMinute: 100000})
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return c, calls
}

func TestDecodeOpinion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain object", `{"domain": "backend"}`, false},
		{"fenced json", "```json\n{\"domain\": \"backend\"}\n```", false},
		{"bare fence", "```\n{\"domain\": \"backend\"}\n```", false},
		{"prose prefix", `Here is the answer: {"domain": "backend"}`, false},
		{"no object", "I cannot answer that.", true},
		{"truncated", `{"domain": "back`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out domainAnswer
			err := decodeOpinion(tt.content, &out)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedOpinion) {
					t.Fatalf("expected ErrMalformedOpinion, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeOpinion: %v", err)
			}
			if out.Domain != "backend" {
				t.Fatalf("domain = %q, want backend", out.Domain)
			}
		})
	}
}

func TestAskRetriesMalformedAnswers(t *testing.T) {
	c, calls := testClient([]string{
		"not json at all",
		`{"domain": "backend", "confidence": 0.9}`,
	})

	opinion, err := c.ClassifyDomain(context.Background(), radar.DomainQuestion{RepoName: "acme/api"})
	if err != nil {
		t.Fatalf("ClassifyDomain: %v", err)
	}
	if opinion.Domain != radar.DomainBackend {
		t.Fatalf("domain = %s, want backend", opinion.Domain)
	}
	if *calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", *calls)
	}
}

func TestAskRetriesTransportErrors(t *testing.T) {
	c, calls := testClient([]string{
		"",
		"",
		`{"domain": "frontend", "confidence": 0.8}`,
	})

	opinion, err := c.ClassifyDomain(context.Background(), radar.DomainQuestion{RepoName: "acme/web"})
	if err != nil {
		t.Fatalf("ClassifyDomain: %v", err)
	}
	if opinion.Domain != radar.DomainFrontend {
		t.Fatalf("domain = %s, want frontend", opinion.Domain)
	}
	if *calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", *calls)
	}
}

func TestAskGivesUpAfterAttempts(t *testing.T) {
	c, calls := testClient([]string{"garbage", "garbage", "garbage", "garbage"})

	_, err := c.ClassifyDomain(context.Background(), radar.DomainQuestion{RepoName: "acme/api"})
	if !errors.Is(err, ErrMalformedOpinion) {
		t.Fatalf("expected ErrMalformedOpinion after exhaustion, got %v", err)
	}
	if *calls != 3 {
		t.Fatalf("expected attempts bounded at 3, got %d", *calls)
	}
}

func TestClassifyTechnologyParsesAnswer(t *testing.T) {
	c, _ := testClient([]string{
		`{"quadrant": 2, "description": "Infra as code.", "ai_confidence": "high"}`,
	})

	opinion, err := c.ClassifyTechnology(context.Background(), radar.TechQuestion{
		Name:          "Terraform",
		UsagePercent:  60,
		SuggestedRing: radar.RingAdopt,
		Profile:       radar.TemporalProfile{TotalRepos: 6, ActiveRepos: 6},
	})
	if err != nil {
		t.Fatalf("ClassifyTechnology: %v", err)
	}
	if opinion.Quadrant != radar.QuadrantPlatforms {
		t.Fatalf("quadrant = %s, want Platforms", opinion.Quadrant)
	}
	if opinion.Confidence != radar.ConfidenceHigh {
		t.Fatalf("confidence = %s, want high", opinion.Confidence)
	}
	if opinion.Description != "Infra as code." {
		t.Fatalf("description = %q", opinion.Description)
	}
}

func TestClassifyDomainRejectsUnknownTags(t *testing.T) {
	c, _ := testClient([]string{
		`{"domain": "quantum", "confidence": 1.7, "reasoning": "made up"}`,
	})

	opinion, err := c.ClassifyDomain(context.Background(), radar.DomainQuestion{RepoName: "acme/api"})
	if err != nil {
		t.Fatalf("ClassifyDomain: %v", err)
	}
	if opinion.Domain != radar.DomainUnknown {
		t.Fatalf("unrecognized domain must map to unknown, got %s", opinion.Domain)
	}
	if opinion.Confidence != 1 {
		t.Fatalf("confidence must clamp to 1, got %f", opinion.Confidence)
	}
}

func TestParseQuadrant(t *testing.T) {
	tests := []struct {
		raw  string
		want radar.Quadrant
	}{
		{`0`, radar.QuadrantTechniques},
		{`1`, radar.QuadrantTools},
		{`2`, radar.QuadrantPlatforms},
		{`3`, radar.QuadrantLanguages},
		{`7`, ""},
		{`"Tools"`, radar.QuadrantTools},
		{`"languages & frameworks"`, radar.QuadrantLanguages},
		{`"Platform"`, radar.QuadrantPlatforms},
		{`"nonsense"`, ""},
		{`null`, ""},
	}

	for _, tt := range tests {
		if got := parseQuadrant(json.RawMessage(tt.raw)); got != tt.want {
			t.Fatalf("parseQuadrant(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestJudgeDuplicatesParsesAnswer(t *testing.T) {
	c, _ := testClient([]string{
		`{"are_duplicates": true, "canonical_name": "ESLint", "merge_candidates": ["eslint"], "reason": "case variants"}`,
	})

	opinion, err := c.JudgeDuplicates(context.Background(), []string{"ESLint", "eslint"})
	if err != nil {
		t.Fatalf("JudgeDuplicates: %v", err)
	}
	if !opinion.AreDuplicates || opinion.Canonical != "ESLint" || len(opinion.Candidates) != 1 {
		t.Fatalf("unexpected opinion: %+v", opinion)
	}
}

func TestStubSatisfiesOracle(t *testing.T) {
	var _ radar.Oracle = NewStub()
	var _ radar.Oracle = (*Client)(nil)

	opinion, err := NewStub().ClassifyTechnology(context.Background(), radar.TechQuestion{Name: "Docker"})
	if err != nil {
		t.Fatalf("stub must not fail: %v", err)
	}
	if opinion.Quadrant != radar.QuadrantPlatforms {
		t.Fatalf("stub quadrant = %s, want keyword inference result", opinion.Quadrant)
	}
}
