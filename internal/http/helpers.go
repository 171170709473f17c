package http

import (
	"errors"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/imagegen"
	"github.com/mrlokans/storybook/internal/images"
	"github.com/mrlokans/storybook/internal/vault"
)

// Machine-readable error codes
const (
	CodeValidation        = "validation_error"
	CodeEmptyPage         = "empty_page"
	CodeInvalidImage      = "invalid_image"
	CodeImageTooLarge     = "image_too_large"
	CodeInvalidOrder      = "invalid_order"
	CodeInvalidCredential = "invalid_credential"
	CodeNoCredential      = "no_credential"
	CodeEmptyText         = "empty_text"
	CodeGenerating        = "already_generating"
	CodeGenerationFailed  = "generation_failed"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: code})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondImageError maps image decoding failures to 400 responses.
func respondImageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, images.ErrTooLarge):
		respondBadRequest(c, CodeImageTooLarge, "image is too large")
	case errors.Is(err, images.ErrNotImage), errors.Is(err, images.ErrEmptyFile), errors.Is(err, images.ErrInvalidDataURI):
		respondBadRequest(c, CodeInvalidImage, "please select an image file")
	default:
		respondInternalError(c, err, "read image")
	}
}

// respondCredentialError maps credential validation failures to 400 responses.
func respondCredentialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vault.ErrEmptyCredential), errors.Is(err, vault.ErrMalformedCredential):
		respondBadRequest(c, CodeInvalidCredential, err.Error())
	default:
		respondInternalError(c, err, "save credential")
	}
}

// respondGenerationError maps image generation failures to HTTP statuses.
// Provider details are logged by the generator and never echoed to the client.
func respondGenerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, imagegen.ErrNoCredential):
		c.JSON(http.StatusPreconditionFailed, ErrorResponse{
			Error: "Please set your Gemini API key in settings first.",
			Code:  CodeNoCredential,
		})
	case errors.Is(err, imagegen.ErrEmptyText):
		respondBadRequest(c, CodeEmptyText, "Please enter some text for the page first.")
	case errors.Is(err, imagegen.ErrAlreadyGenerating):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeGenerating})
	default:
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "Failed to generate image. Please check your API key and try again.",
			Code:  CodeGenerationFailed,
		})
	}
}

// --- Request Parsing ---

// isMultipart reports whether the request carries a multipart form.
func isMultipart(c *gin.Context) bool {
	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// parseScale reads an optional image_scale value. Missing means the default.
func parseScale(raw string, fallback float64) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, true
	}
	scale, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return scale, true
}

// isPreview reports whether the request asked for preview mode (?preview=1).
func isPreview(c *gin.Context) bool {
	v := c.Query("preview")
	return v == "1" || v == "true"
}
