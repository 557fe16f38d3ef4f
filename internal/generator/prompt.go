package generator

import (
	"fmt"
	"slices"
	"strings"
)

const DefaultIdeaCount = 8

// fills empty brief fields with the generic defaults
func (b Brief) WithDefaults() Brief {
	b.Industry = orDefault(b.Industry, "general business")
	b.TargetAudience = orDefault(b.TargetAudience, "general audience")
	b.Services = orDefault(b.Services, "various products")
	b.ContentType = strings.ToLower(orDefault(b.ContentType, ContentSocial))

	return b
}

// checks the brief's content type, an empty type is allowed and means social
func (b Brief) Validate() error {
	ct := strings.ToLower(strings.TrimSpace(b.ContentType))
	if ct == "" || slices.Contains(ContentTypes, ct) {
		return nil
	}

	return fmt.Errorf("%w: %q", ErrInvalidContentType, b.ContentType)
}

// builds the content strategist prompt for count ideas
func BuildPrompt(b Brief, count int) string {
	if count <= 0 {
		count = DefaultIdeaCount
	}

	b = b.WithDefaults()

	var sb strings.Builder

	fmt.Fprintf(&sb, "You are an expert content marketing strategist. Generate %d content ideas based on the following inputs.\n", count)
	sb.WriteString("Return the ideas as a valid JSON array. Do NOT include any text before or after the JSON array.\n\n")
	sb.WriteString("Each idea in the array should be an object with this exact structure:\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "title": "A catchy, short title for the content",` + "\n")
	sb.WriteString(`  "description": "A 2-3 sentence detailed description of the content idea, explaining the angle and value.",` + "\n")
	sb.WriteString(`  "platforms": ["Platform 1", "Platform 2"],` + "\n")
	sb.WriteString(`  "hashtags": ["#hashtag1", "#hashtag2"],` + "\n")
	fmt.Fprintf(&sb, "  \"type\": %q\n", b.ContentType)
	sb.WriteString("}\n\n")
	sb.WriteString("Here is the user's data:\n")
	fmt.Fprintf(&sb, "- Industry: %s\n", b.Industry)
	fmt.Fprintf(&sb, "- Target Audience: %s\n", b.TargetAudience)
	fmt.Fprintf(&sb, "- Services/Products: %s\n", b.Services)
	fmt.Fprintf(&sb, "- Content Type: %s\n", b.ContentType)

	return sb.String()
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}

	return fallback
}
