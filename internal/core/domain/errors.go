package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document format or processor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfiguration indicates a required credential or setting is missing.
	// Raised before any provider call is made.
	ErrConfiguration = errors.New("configuration error")

	// ErrExtraction indicates the policy file could not be read or parsed.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbeddingUnavailable indicates the embedding provider refused work
	// because of authentication, quota or rate limiting.
	// Semantic retrieval is disabled and the whole-text heuristic is used.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generative provider refused work
	// because of authentication, quota or rate limiting.
	// Synthesis is disabled and the context heuristic is used.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrMalformedResponse indicates a provider answered with output that
	// could not be parsed into the expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ProviderService names the kind of external AI service that failed.
type ProviderService string

// Provider services.
const (
	ServiceEmbedding  ProviderService = "embedding"
	ServiceGeneration ProviderService = "generation"
)

// ProviderReason classifies a provider failure.
type ProviderReason string

// Provider failure reasons.
const (
	// ReasonAuth is a rejected or missing credential.
	ReasonAuth ProviderReason = "auth"

	// ReasonQuota is an exhausted account quota or billing limit.
	ReasonQuota ProviderReason = "quota"

	// ReasonRateLimit is a temporary throttle.
	ReasonRateLimit ProviderReason = "rate_limit"

	// ReasonTransient is a network or server fault that may succeed on retry.
	ReasonTransient ProviderReason = "transient"

	// ReasonRejected is a request the provider refused as invalid, such as
	// an unknown model or an oversized input.
	ReasonRejected ProviderReason = "rejected"

	// ReasonBadResponse is a reply that did not match the provider's schema.
	ReasonBadResponse ProviderReason = "bad_response"
)

// Degrades returns true if the reason should route the pipeline to a
// lower tier rather than surface as a failure.
func (r ProviderReason) Degrades() bool {
	return r == ReasonAuth || r == ReasonQuota || r == ReasonRateLimit
}

// ProviderError is the tagged error produced at every provider-call boundary.
// Callers branch on it with errors.Is against the domain sentinels:
// auth, quota and rate limiting match the service's *Unavailable error,
// bad responses match ErrMalformedResponse, and transient faults match neither.
type ProviderError struct {
	// Service is the kind of service that failed.
	Service ProviderService

	// Provider is the backend that produced the failure.
	Provider AIProvider

	// Reason is the failure classification.
	Reason ProviderReason

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Message is the provider's own error message, if any.
	Message string

	// RetryAfter is the provider's requested back-off, if any.
	RetryAfter time.Duration

	// Err is the underlying transport or decode error, if any.
	Err error
}

// Error implements error.
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Provider, e.Service, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is maps the tagged reason onto the domain sentinels.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrEmbeddingUnavailable:
		return e.Service == ServiceEmbedding && e.Reason.Degrades()
	case ErrGenerationUnavailable:
		return e.Service == ServiceGeneration && e.Reason.Degrades()
	case ErrMalformedResponse:
		return e.Reason == ReasonBadResponse
	case ErrRateLimited:
		return e.Reason == ReasonRateLimit
	default:
		return false
	}
}
