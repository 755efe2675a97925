// Package classifier sends screenshots to a vision-capable model backend and
// returns the raw text the model produced. Two interchangeable backends are
// supported: a hosted OpenAI-compatible API (Together AI) and a local ollama
// server.
package classifier

import (
	"context"
	"strings"
)

// Classifier is the capability a backend must provide: one blocking call per
// image, raw text out. There is no retry loop; a failed call surfaces as a
// per-file error.
type Classifier interface {
	Classify(ctx context.Context, imagePath string) (string, error)
}

const classifyPrompt = `Analyze the given screenshot and decide what it shows.

Respond with a JSON object with these fields:
- category: a short lowercase label for the kind of content (examples: code_editor, browser, chat, receipt, document)
- subcategory: a more specific label (examples: python_script, payment, identity_docs, finance)

Example response:
{"category": "code_editor", "subcategory": "python_script"}

Respond ONLY with the JSON object, no markdown or other text.`

func mimeTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}
