// Package classify labels catalog entries by substring matching. The rule
// tables are ordered and the first keyword found wins, so a service named
// "Instagram Followers for your Website" resolves to Instagram as long as the
// Instagram rule comes first.
package classify

import "strings"

type Rule struct {
	Keyword string
	Label   string
}

type Classifier struct {
	platforms []Rule
	kinds     []Rule
}

func New(platforms, kinds []Rule) *Classifier {
	return &Classifier{platforms: platforms, kinds: kinds}
}

// Classify derives (platform, kind) from the entry's name and category text.
// Matching is case-insensitive substring containment; no match falls back to
// the provided defaults.
func (c *Classifier) Classify(name, category, defaultPlatform, defaultKind string) (string, string) {
	haystack := strings.ToLower(name + " " + category)
	platform := firstMatch(c.platforms, haystack, defaultPlatform)
	kind := firstMatch(c.kinds, haystack, defaultKind)
	return platform, kind
}

func firstMatch(rules []Rule, haystack, def string) string {
	for _, rule := range rules {
		if rule.Keyword == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(rule.Keyword)) {
			return rule.Label
		}
	}
	return def
}
