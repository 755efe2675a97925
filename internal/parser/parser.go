// Package parser extracts a category label from the free-form text a vision
// model returns. Backends are asked for a JSON object but routinely wrap it
// in prose or markdown, or ignore the format entirely, so extraction is
// best-effort with a prose fallback.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// SentinelCategory is the label applied when a response cannot be parsed.
// The fallback is applied by the orchestrator, never inside Parse.
const SentinelCategory = "unknown_error"

// Classification is the parsed result of a vision response.
type Classification struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// ParseError means no category could be extracted from a response.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse classification: %s", e.Reason)
}

var (
	// \b keeps "category:" from matching inside "subcategory:".
	categoryRe    = regexp.MustCompile(`(?i)\bcategory:\s*([A-Za-z0-9_ -]+)`)
	subcategoryRe = regexp.MustCompile(`(?i)\bsubcategory:\s*([A-Za-z0-9_ -]+)`)

	invalidRunes = regexp.MustCompile(`[^a-z0-9_-]+`)
)

// Parse extracts a Classification from raw model output. It tries a JSON
// object first, then the older "Category: x, Subcategory: y" prose format.
// On failure it returns a *ParseError; it never panics and never applies the
// sentinel itself.
func Parse(raw string) (Classification, error) {
	if jsonStr, ok := extractJSONObject(raw); ok {
		var c Classification
		if err := json.Unmarshal([]byte(jsonStr), &c); err == nil {
			c.Category = Normalize(c.Category)
			c.Subcategory = Normalize(c.Subcategory)
			if c.Category != "" {
				return c, nil
			}
		}
		// Malformed or categoryless JSON: fall through to the prose format.
	}

	if m := categoryRe.FindStringSubmatch(raw); m != nil {
		c := Classification{Category: Normalize(m[1])}
		if sm := subcategoryRe.FindStringSubmatch(raw); sm != nil {
			c.Subcategory = Normalize(sm[1])
		}
		if c.Category != "" {
			return c, nil
		}
	}

	return Classification{}, &ParseError{Raw: raw, Reason: "no category found in response"}
}

// Normalize turns a model-provided label into a safe filename component:
// lowercase, spaces to underscores, anything else dropped.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = invalidRunes.ReplaceAllString(s, "")
	return strings.Trim(s, "_")
}

// extractJSONObject returns the substring from the first '{' to the last '}'.
// This tolerates markdown fences and prose around the object.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
