package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	genai "google.golang.org/genai"
)

// DefaultEditModel is the Gemini image model used for evidence edits.
const DefaultEditModel = "gemini-2.5-flash-image-preview"

// Editor applies free-text edit instructions to the session's evidence
// image through the Gemini image model.
type Editor struct {
	client *genai.Client
	model  string
}

// NewEditor builds an Editor. The API key falls back to GEMINI_API_KEY.
func NewEditor(ctx context.Context, apiKey, model string) (*Editor, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if model == "" {
		model = DefaultEditModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &Editor{client: c, model: model}, nil
}

// Edit sends the current evidence image plus the instruction to the model
// and returns the edited image as a new data URL.
func (e *Editor) Edit(ctx context.Context, dataURL, instruction string) (string, error) {
	mimeType, raw, err := ParseDataURL(dataURL)
	if err != nil {
		return "", fmt.Errorf("current image: %w", err)
	}

	content := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: instruction},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: raw}},
		},
	}
	res, err := e.client.Models.GenerateContent(ctx, e.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("image edit call failed: %w", err)
	}

	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return fmt.Sprintf("data:%s;base64,%s", part.InlineData.MIMEType,
					base64.StdEncoding.EncodeToString(part.InlineData.Data)), nil
			}
		}
	}
	return "", errors.New("model returned no edited image")
}
