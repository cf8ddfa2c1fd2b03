package domain

import "errors"

var (
	// ErrInvalidItem signals a catalog item that failed boundary validation.
	ErrInvalidItem = errors.New("invalid catalog item")
	// ErrInterpretationFailed signals a text-generation failure or unusable
	// interpreter output. Distinguishes "search could not be performed"
	// from "no matches".
	ErrInterpretationFailed = errors.New("query interpretation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorDimMismatch signals query and item vectors of different
	// lengths: a provider contract violation, never scored silently.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrClassificationFailed signals a location classifier failure.
	ErrClassificationFailed = errors.New("material classification failed")
)
