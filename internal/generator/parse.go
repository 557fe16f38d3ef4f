package generator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const fallbackIdeaCount = 5

// extracts ideas from model output. the first '[' to the last ']' is read as a
// JSON array; members are read tolerantly. when no usable array is found the
// placeholder ideas are returned and fallback is true
func ParseIdeas(text string, brief Brief, now time.Time) (ideas []Idea, fallback bool) {
	defaulted := brief.WithDefaults()

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return FallbackIdeas(brief, now), true
	}

	span := text[start : end+1]
	if !gjson.Valid(span) {
		return FallbackIdeas(brief, now), true
	}

	for _, el := range gjson.Parse(span).Array() {
		if !el.IsObject() {
			continue
		}

		idea := Idea{
			ID:          el.Get("id").String(),
			Title:       strings.TrimSpace(el.Get("title").String()),
			Description: strings.TrimSpace(el.Get("description").String()),
			Platforms:   stringList(el.Get("platforms")),
			Hashtags:    stringList(el.Get("hashtags")),
			Type:        el.Get("type").String(),
			Timestamp:   now.UTC(),
			ContentType: defaulted.ContentType,
		}

		if idea.ID == "" {
			idea.ID = uuid.NewString()
		}

		if idea.Type == "" {
			idea.Type = defaulted.ContentType
		}

		ideas = append(ideas, idea)
	}

	if len(ideas) == 0 {
		return FallbackIdeas(brief, now), true
	}

	return ideas, false
}

// the placeholder ideas shown when the model output cannot be used
func FallbackIdeas(brief Brief, now time.Time) []Idea {
	subject := orDefault(brief.Industry, "your brand")
	audience := orDefault(brief.TargetAudience, "your audience")
	contentType := brief.WithDefaults().ContentType

	platforms := []string{"Instagram", "TikTok"}
	hashtags := []string{"#growth", "#brand"}

	ideas := make([]Idea, 0, fallbackIdeaCount)
	for i := range fallbackIdeaCount {
		n := (i % 2) + 1

		ideas = append(ideas, Idea{
			ID:          uuid.NewString(),
			Title:       fmt.Sprintf("Idea %d for %s", i+1, subject),
			Description: fmt.Sprintf("A quick concept targeting %s.", audience),
			Platforms:   append([]string(nil), platforms[:n]...),
			Hashtags:    append([]string(nil), hashtags[:n]...),
			Type:        contentType,
			Timestamp:   now.UTC(),
			ContentType: contentType,
		})
	}

	return ideas
}

// wraps ideas in the candidates envelope, the ideas array serialized as the
// single part's text
func Candidates(ideas []Idea) (CandidatesResponse, error) {
	if ideas == nil {
		ideas = []Idea{}
	}

	text, err := json.Marshal(ideas)
	if err != nil {
		return CandidatesResponse{}, fmt.Errorf("failed to encode ideas: %w", err)
	}

	return CandidatesResponse{
		Candidates: []Candidate{{
			Content: CandidateContent{Parts: []CandidatePart{{Text: string(text)}}},
		}},
	}, nil
}

func stringList(v gjson.Result) []string {
	out := []string{}

	if !v.IsArray() {
		return out
	}

	for _, item := range v.Array() {
		if item.Type != gjson.String {
			continue
		}

		if s := strings.TrimSpace(item.Str); s != "" {
			out = append(out, s)
		}
	}

	return out
}
