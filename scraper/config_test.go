package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultTFCConfig verifies the site defaults
func TestDefaultTFCConfig(t *testing.T) {
	cfg := DefaultTFCConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "TFC", cfg.Source)
	assert.Equal(t, []string{".post-content", ".single-content"}, cfg.ArticleConfig.ContentSelectors)
	assert.Equal(t, " - 看見真實，才能打造美好台灣", cfg.ArticleConfig.TitleSuffix)
	assert.Equal(t, "未勾選屬性", cfg.ArticleConfig.UncheckedCategory)
	assert.True(t, cfg.Politeness.ObeyRobots)
}

// TestPageURL verifies the page parameter is set on the listing URL
func TestPageURL(t *testing.T) {
	cfg := DefaultTFCConfig()

	u, err := cfg.PageURL(3)
	require.NoError(t, err)
	assert.Equal(t, "https://tfc-taiwan.org.tw/fact-check-reports-all/?pg=3", u)

	cfg.ListConfig.URL = "http://127.0.0.1:8080/list?lang=zh"
	u, err = cfg.PageURL(12)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/list?lang=zh&pg=12", u)
}

// TestValidate verifies incomplete configs are rejected
func TestValidate(t *testing.T) {
	tests := map[string]func(*SiteConfig){
		"no listing URL":         func(c *SiteConfig) { c.ListConfig.URL = "" },
		"no page param":          func(c *SiteConfig) { c.ListConfig.PageParam = "" },
		"no article selector":    func(c *SiteConfig) { c.ListConfig.ArticleSelector = "" },
		"no content selectors":   func(c *SiteConfig) { c.ArticleConfig.ContentSelectors = nil },
		"unparsable listing URL": func(c *SiteConfig) { c.ListConfig.URL = "http://[::1" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultTFCConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
