package model

import (
	"context"
	"errors"
)

// Image is an inline image payload sent alongside a prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Provider is the generative model abstraction used by the dispatcher.
type Provider interface {
	// Generate submits the prompt (and optional image) and returns the
	// generated text with surrounding whitespace trimmed.
	Generate(ctx context.Context, prompt string, img *Image) (string, error)
}

// Classified invocation failures. Anything else coming out of Generate is an
// unknown invocation failure.
var (
	// ErrSafetyBlocked means the provider declined to generate due to
	// content-safety filtering.
	ErrSafetyBlocked = errors.New("generation blocked by safety filter")
	// ErrRateLimited means the provider signaled too many requests.
	ErrRateLimited = errors.New("provider rate limited")
)
