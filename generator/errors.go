package generator

import (
	"errors"
	"fmt"
)

var (
	ErrGenerationFailed    = errors.New("generation failed")
	ErrMalformedGeneration = errors.New("malformed generation")
)

// GenerationError reports a failed call to the generative service.
type GenerationError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s generation failed: API error %d - %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGenerationFailed}
	}
	return []error{ErrGenerationFailed, e.Err}
}

// MalformedError reports a response that did not yield a usable draft.
type MalformedError struct {
	Reason  string
	Preview string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("failed to parse generated content: %s\ncleaned preview: %s...", e.Reason, e.Preview)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedGeneration }
