package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Suggester proposes corrections for messy text values, keyed by the original
// value. Implementations must return only mappings for values they were
// given; unknown keys are ignored by callers.
type Suggester interface {
	SuggestCorrections(ctx context.Context, column string, values []string) (map[string]string, error)
}

// SuggestOptions tunes a correction request.
type SuggestOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// ClientSuggester adapts the chat-completions client to the Suggester
// interface.
type ClientSuggester struct {
	client *Client
	opt    SuggestOptions
}

// NewSuggester wraps a client with suggestion settings.
func NewSuggester(c *Client, opt SuggestOptions) *ClientSuggester {
	if opt.MaxTokens <= 0 {
		opt.MaxTokens = 2000
	}
	return &ClientSuggester{client: c, opt: opt}
}

const suggestSystemPrompt = `You are a data cleaning assistant. You receive distinct values from one column of a tabular dataset. Propose a standardized replacement for each value that needs one: fix casing, trim stray punctuation, expand obvious abbreviations, and unify spellings of the same entity. Respond with a single JSON object mapping original values to corrected values. Omit values that are already clean. Do not invent values.`

// SuggestCorrections asks the model for a original->corrected mapping over
// the column's distinct values.
func (s *ClientSuggester) SuggestCorrections(ctx context.Context, column string, values []string) (map[string]string, error) {
	if len(values) == 0 {
		return map[string]string{}, nil
	}
	distinct := dedupeValues(values)

	var b strings.Builder
	fmt.Fprintf(&b, "Column: %s\nValues:\n", column)
	for _, v := range distinct {
		fmt.Fprintf(&b, "- %s\n", v)
	}

	resp, err := s.client.Generate(ctx, GenerateRequest{
		Model: s.opt.Model,
		Messages: []Message{
			{Role: "system", Content: suggestSystemPrompt},
			{Role: "user", Content: b.String()},
		},
		MaxTokens:   s.opt.MaxTokens,
		Temperature: s.opt.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest corrections for %s: %w", column, err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion")
	}

	mapping, err := parseMapping(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse corrections for %s: %w", column, err)
	}

	// Keep only mappings for values we actually sent.
	known := make(map[string]bool, len(distinct))
	for _, v := range distinct {
		known[v] = true
	}
	out := make(map[string]string, len(mapping))
	for from, to := range mapping {
		if known[from] && to != "" && to != from {
			out[from] = to
		}
	}
	return out, nil
}

// parseMapping decodes the model's JSON object, tolerating markdown code
// fences around the payload.
func parseMapping(content string) (map[string]string, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	// Fall back to the outermost braces if the model added prose.
	if !strings.HasPrefix(s, "{") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON object in completion")
		}
		s = s[start : end+1]
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func dedupeValues(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
