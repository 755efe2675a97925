package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// TogetherClassifier talks to a hosted OpenAI-compatible chat completions
// endpoint. The default configuration points at Together AI, but any endpoint
// that accepts image content parts works via the base URL setting.
type TogetherClassifier struct {
	client openai.Client
	model  string
}

// NewTogetherClassifier builds the hosted backend. A missing API key is an
// authentication error at construction time, before any file is touched.
func NewTogetherClassifier(apiKey, baseURL, model string) (*TogetherClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is not set", ErrAuth)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &TogetherClassifier{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Classify sends the image inline as a base64 data URL and returns the
// model's raw text response.
func (c *TogetherClassifier) Classify(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image '%s': %w", imagePath, err)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		mimeTypeFor(filepath.Ext(imagePath)),
		base64.StdEncoding.EncodeToString(data))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{buildImageUserMessage(classifyPrompt, dataURL)},
	})
	if err != nil {
		return "", classifyErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	return resp.Choices[0].Message.Content, nil
}

func buildImageUserMessage(prompt, imageURL string) openai.ChatCompletionMessageParamUnion {
	textContent := openai.ChatCompletionContentPartUnionParam{
		OfText: &openai.ChatCompletionContentPartTextParam{
			Text: prompt,
		},
	}
	imageContent := openai.ChatCompletionContentPartUnionParam{
		OfImageURL: &openai.ChatCompletionContentPartImageParam{
			ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
				URL:    imageURL,
				Detail: "auto",
			},
		},
	}

	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
					textContent,
					imageContent,
				},
			},
		},
	}
}
