package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_Defaults(t *testing.T) {
	prompt := BuildPrompt(Brief{}, 0)

	assert.Contains(t, prompt, "Generate 8 content ideas")
	assert.Contains(t, prompt, "- Industry: general business")
	assert.Contains(t, prompt, "- Target Audience: general audience")
	assert.Contains(t, prompt, "- Services/Products: various products")
	assert.Contains(t, prompt, `"type": "social"`)
	assert.Contains(t, prompt, "valid JSON array")
}

func TestBuildPrompt_UsesBrief(t *testing.T) {
	prompt := BuildPrompt(Brief{
		Industry:       "fitness",
		TargetAudience: "new parents",
		Services:       "online classes",
		ContentType:    "Video",
	}, 3)

	assert.Contains(t, prompt, "Generate 3 content ideas")
	assert.Contains(t, prompt, "- Industry: fitness")
	assert.Contains(t, prompt, "- Target Audience: new parents")
	assert.Contains(t, prompt, "- Services/Products: online classes")
	assert.Contains(t, prompt, "- Content Type: video")
}

func TestBrief_Validate(t *testing.T) {
	for _, ct := range append([]string{"", "SOCIAL"}, ContentTypes...) {
		assert.NoError(t, Brief{ContentType: ct}.Validate(), ct)
	}

	assert.ErrorIs(t, Brief{ContentType: "telegram"}.Validate(), ErrInvalidContentType)
}
