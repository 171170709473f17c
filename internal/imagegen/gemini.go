package imagegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	genaisdk "google.golang.org/genai"
)

// Default Gemini models.
const (
	DefaultPromptModel = "gemini-2.0-flash"
	DefaultImageModel  = "gemini-2.0-flash-preview-image-generation"
)

const promptInstruction = `You write illustration briefs for children's picture books.
Given the book title, the text of one page and the pages before it, describe a single
illustration for that page in one paragraph: characters, setting, mood, colours and
composition. Keep characters consistent with earlier pages. Do not include any text or
lettering in the picture. Reply with the description only.`

var _ Generator = (*Gemini)(nil)

// Gemini is a Generator backed by Google Gemini. The API key is supplied per call.
type Gemini struct {
	PromptModel string
	ImageModel  string
	Temperature float32
}

// NewGemini returns a Gemini generator, filling in default model names.
func NewGemini(promptModel, imageModel string) *Gemini {
	if promptModel == "" {
		promptModel = DefaultPromptModel
	}
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	return &Gemini{
		PromptModel: promptModel,
		ImageModel:  imageModel,
		Temperature: 0.7,
	}
}

func (g *Gemini) client(ctx context.Context, credential string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(credential))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	return client, nil
}

// GeneratePrompt asks the text model for an illustration description.
func (g *Gemini) GeneratePrompt(ctx context.Context, credential, title, pageText string, history []string) (string, error) {
	client, err := g.client(ctx, credential)
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(g.PromptModel)
	model.SetTemperature(g.Temperature)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(promptInstruction)}}

	resp, err := model.GenerateContent(ctx, genai.Text(buildPromptRequest(title, pageText, history)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if txt, ok := part.(genai.Text); ok && strings.TrimSpace(string(txt)) != "" {
				return strings.TrimSpace(string(txt)), nil
			}
		}
	}
	return "", fmt.Errorf("no description returned from Gemini")
}

// GenerateImage renders the description with the image model. The image models only
// return pictures when image output is requested, which the generative-ai-go client cannot
// express, so this call goes through the google.golang.org/genai client.
func (g *Gemini) GenerateImage(ctx context.Context, credential, description string) (Image, error) {
	client, err := genaisdk.NewClient(ctx, &genaisdk.ClientConfig{
		APIKey:  credential,
		Backend: genaisdk.BackendGeminiAPI,
	})
	if err != nil {
		return Image{}, fmt.Errorf("failed to create new gemini client: %w", err)
	}

	prompt := "Children's picture book illustration, soft and warm style. " + description
	resp, err := client.Models.GenerateContent(ctx, g.ImageModel, genaisdk.Text(prompt), imageConfig())
	if err != nil {
		return Image{}, fmt.Errorf("failed to generate image: %w", err)
	}
	return imageFromResponse(resp)
}

// imageConfig asks for image output. The model rejects IMAGE alone, so TEXT is requested too.
func imageConfig() *genaisdk.GenerateContentConfig {
	return &genaisdk.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
}

// imageFromResponse returns the first inline image part.
func imageFromResponse(resp *genaisdk.GenerateContentResponse) (Image, error) {
	if resp == nil {
		return Image{}, ErrNoImage
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil {
				continue
			}
			blob := part.InlineData
			if strings.HasPrefix(blob.MIMEType, "image/") && len(blob.Data) > 0 {
				return Image{MIMEType: blob.MIMEType, Data: blob.Data}, nil
			}
		}
	}
	return Image{}, ErrNoImage
}

func buildPromptRequest(title, pageText string, history []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Book title: %s\n", title)
	if len(history) > 0 {
		sb.WriteString("Previous pages:\n")
		for i, h := range history {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, h)
		}
	}
	fmt.Fprintf(&sb, "Page text: %s\n", pageText)
	return sb.String()
}
