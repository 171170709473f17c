// Package imagegen turns page text into illustrations through an external generative model.
//
// Generation is two sequential calls: the first asks the model for an illustration
// description, the second renders that description into an image. Service wraps the calls
// with precondition checks and a per-page generation marker.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
)

// NewPageKey is the marker key used for a page that has not been added yet.
const NewPageKey = "new"

var (
	ErrNoCredential      = errors.New("API key is not configured")
	ErrEmptyText         = errors.New("page text is required to generate an image")
	ErrAlreadyGenerating = errors.New("an image is already being generated for this page")
	ErrGenerationFailed  = errors.New("image generation failed")
	ErrNoImage           = errors.New("model returned no image")
)

// Image is a rendered picture.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI encodes the image for embedding in a page.
func (img Image) DataURI() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Generator is the external model. Both calls either succeed with a value or fail.
type Generator interface {
	GeneratePrompt(ctx context.Context, credential, title, pageText string, history []string) (string, error)
	GenerateImage(ctx context.Context, credential, description string) (Image, error)
}
