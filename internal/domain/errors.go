package domain

import "errors"

var (
	// ErrProviderConfig signals a missing credential or endpoint for an AI provider.
	ErrProviderConfig = errors.New("provider not configured")
	// ErrProviderResponse signals a non-success status or malformed body from an AI provider.
	ErrProviderResponse = errors.New("provider response error")
	// ErrVectorDimMismatch signals an embedding dimension mismatch between
	// the stored business vectors and the live query embedder.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
