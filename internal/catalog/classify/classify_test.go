package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testClassifier() *Classifier {
	platforms := []Rule{
		{Keyword: "instagram", Label: "Instagram"},
		{Keyword: "tiktok", Label: "TikTok"},
		{Keyword: "youtube", Label: "YouTube"},
		{Keyword: "website", Label: "Website"},
	}
	kinds := []Rule{
		{Keyword: "follower", Label: "Seguidores"},
		{Keyword: "like", Label: "Curtidas"},
		{Keyword: "view", Label: "Visualizações"},
	}
	return New(platforms, kinds)
}

func TestClassifyFirstMatchWins(t *testing.T) {
	c := testClassifier()

	// Both "instagram" and "website" occur; the earlier rule must win.
	platform, kind := c.Classify("Instagram Followers for your Website", "", "Other", "Outros")
	assert.Equal(t, "Instagram", platform)
	assert.Equal(t, "Seguidores", kind)
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := testClassifier()

	platform, kind := c.Classify("TIKTOK LIKES", "", "Other", "Outros")
	assert.Equal(t, "TikTok", platform)
	assert.Equal(t, "Curtidas", kind)
}

func TestClassifyUsesCategoryText(t *testing.T) {
	c := testClassifier()

	platform, kind := c.Classify("Premium Views", "YouTube Services", "Other", "Outros")
	assert.Equal(t, "YouTube", platform)
	assert.Equal(t, "Visualizações", kind)
}

func TestClassifyFallsBackToDefaults(t *testing.T) {
	c := testClassifier()

	platform, kind := c.Classify("Mystery Bundle", "Misc", "Other", "Outros")
	assert.Equal(t, "Other", platform)
	assert.Equal(t, "Outros", kind)
}

func TestClassifyDeterministic(t *testing.T) {
	c := testClassifier()

	first, _ := c.Classify("instagram tiktok youtube", "", "Other", "Outros")
	for i := 0; i < 10; i++ {
		got, _ := c.Classify("instagram tiktok youtube", "", "Other", "Outros")
		assert.Equal(t, first, got)
	}
	assert.Equal(t, "Instagram", first)
}

func TestClassifySkipsEmptyKeyword(t *testing.T) {
	c := New([]Rule{{Keyword: "", Label: "Broken"}, {Keyword: "kwai", Label: "Kwai"}}, nil)

	platform, _ := c.Classify("Kwai Followers", "", "Other", "Outros")
	assert.Equal(t, "Kwai", platform)
}
