package imagegen

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Request describes one generation. The credential is passed explicitly by the caller.
type Request struct {
	Scope      string // session the marker belongs to
	Key        string // page id or NewPageKey
	Credential string
	Title      string
	Text       string
	History    []string
}

// Service runs generations with precondition checks and generation markers.
type Service struct {
	generator Generator
	markers   *Markers
}

func NewService(generator Generator) *Service {
	return &Service{
		generator: generator,
		markers:   NewMarkers(),
	}
}

// Generating reports whether a generation is in flight for the page.
func (s *Service) Generating(scope, key string) bool {
	return s.markers.Held(scope, key)
}

// Generate produces an image for the request. Preconditions are checked before any marker
// is set or external call is made. The marker is cleared whatever the outcome, and nothing
// is retried.
func (s *Service) Generate(ctx context.Context, req Request) (Image, error) {
	if strings.TrimSpace(req.Credential) == "" {
		return Image{}, ErrNoCredential
	}
	if strings.TrimSpace(req.Text) == "" {
		return Image{}, ErrEmptyText
	}
	if req.Key == "" {
		req.Key = NewPageKey
	}

	release, err := s.markers.Acquire(req.Scope, req.Key)
	if err != nil {
		return Image{}, err
	}
	defer release()

	description, err := s.generator.GeneratePrompt(ctx, req.Credential, req.Title, req.Text, req.History)
	if err != nil {
		log.Printf("Image prompt generation failed for page %s: %v", req.Key, err)
		return Image{}, fmt.Errorf("%w: describing page: %w", ErrGenerationFailed, err)
	}

	img, err := s.generator.GenerateImage(ctx, req.Credential, description)
	if err != nil {
		log.Printf("Image rendering failed for page %s: %v", req.Key, err)
		return Image{}, fmt.Errorf("%w: rendering image: %w", ErrGenerationFailed, err)
	}

	return img, nil
}
