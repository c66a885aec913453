// Package apierr classifies AI provider failures into domain.ProviderError.
//
// Every HTTP adapter routes its failures through a Classifier so the core
// can decide between degrading and surfacing with errors.Is alone.
package apierr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

const (
	// maxMessageLen caps provider messages carried in errors.
	maxMessageLen = 300

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 64 << 20
)

// quotaMarkers identify an exhausted account rather than a throttle.
var quotaMarkers = []string{
	"insufficient_quota",
	"billing",
	"credit balance",
	"exceeded your current quota",
}

// Classifier tags failures from one provider and service.
type Classifier struct {
	Service  domain.ProviderService
	Provider domain.AIProvider
}

// New creates a classifier.
func New(service domain.ProviderService, provider domain.AIProvider) Classifier {
	return Classifier{Service: service, Provider: provider}
}

// Response classifies a non-2xx HTTP response. body is the already read
// response body and may be empty.
func (c Classifier) Response(resp *http.Response, body []byte) *domain.ProviderError {
	detail := parseBody(body)
	perr := &domain.ProviderError{
		Service:    c.Service,
		Provider:   c.Provider,
		StatusCode: resp.StatusCode,
		Message:    detail.message,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		perr.Reason = domain.ReasonAuth
	case resp.StatusCode == http.StatusPaymentRequired || detail.isQuota():
		perr.Reason = domain.ReasonQuota
	case resp.StatusCode == http.StatusTooManyRequests:
		perr.Reason = domain.ReasonRateLimit
		perr.RetryAfter = RetryAfter(resp.Header)
	case resp.StatusCode >= 500:
		perr.Reason = domain.ReasonTransient
	default:
		perr.Reason = domain.ReasonRejected
	}
	return perr
}

// Do sends req and returns the body of a 2xx response. Any other outcome
// is returned as a classified *domain.ProviderError.
func (c Classifier) Do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, c.Transport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.Transport(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.Response(resp, body)
	}
	return body, nil
}

// PostJSON sends payload as JSON to url and decodes a 2xx reply into out.
// A reply that does not decode is a bad response.
func (c Classifier) PostJSON(ctx context.Context, client *http.Client, url string, header http.Header, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", c.Provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", c.Provider, err)
	}
	copyHeader(req, header)
	req.Header.Set("Content-Type", "application/json")

	reply, err := c.Do(client, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(reply, out); err != nil {
		return c.BadResponse(err)
	}
	return nil
}

// GetOK issues a GET to url and discards the reply. Used for connectivity
// and credential checks.
func (c Classifier) GetOK(ctx context.Context, client *http.Client, url string, header http.Header) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("building %s request: %w", c.Provider, err)
	}
	copyHeader(req, header)

	if _, err := c.Do(client, req); err != nil {
		return fmt.Errorf("%s %s check: %w", c.Provider, c.Service, err)
	}
	return nil
}

func copyHeader(req *http.Request, header http.Header) {
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
}

// Transport classifies a failure to get any response at all.
// Context cancellation is returned unchanged.
func (c Classifier) Transport(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.ProviderError{
		Service:  c.Service,
		Provider: c.Provider,
		Reason:   domain.ReasonTransient,
		Err:      err,
	}
}

// BadResponse tags a 2xx reply that did not match the provider's schema.
func (c Classifier) BadResponse(err error) *domain.ProviderError {
	return &domain.ProviderError{
		Service:  c.Service,
		Provider: c.Provider,
		Reason:   domain.ReasonBadResponse,
		Err:      err,
	}
}

// Missing tags a successful reply that lacks the expected payload.
func (c Classifier) Missing(what string) *domain.ProviderError {
	return &domain.ProviderError{
		Service:  c.Service,
		Provider: c.Provider,
		Reason:   domain.ReasonBadResponse,
		Message:  "no " + what + " in response",
	}
}

// RetryAfter parses a Retry-After header given in seconds or as an HTTP date.
// It returns 0 when the header is absent or unparseable.
func RetryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// errorDetail is what we could recover from an error body.
type errorDetail struct {
	message string
	kind    string
}

func (d errorDetail) isQuota() bool {
	text := strings.ToLower(d.kind + " " + d.message)
	for _, m := range quotaMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// parseBody understands the three error shapes in use:
//
//	OpenAI:    {"error": {"message": "...", "type": "...", "code": "..."}}
//	Anthropic: {"type": "error", "error": {"type": "...", "message": "..."}}
//	Ollama:    {"error": "..."}
//
// Anything else is kept as raw text.
func parseBody(body []byte) errorDetail {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return errorDetail{}
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return errorDetail{message: clip(raw)}
	}

	var text string
	if err := json.Unmarshal(envelope.Error, &text); err == nil {
		return errorDetail{message: clip(text)}
	}

	var obj struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	}
	if err := json.Unmarshal(envelope.Error, &obj); err != nil {
		return errorDetail{message: clip(raw)}
	}
	kind := obj.Type
	if code, ok := obj.Code.(string); ok && code != "" {
		kind += " " + code
	}
	return errorDetail{message: clip(obj.Message), kind: strings.TrimSpace(kind)}
}

func clip(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	return s[:maxMessageLen] + "..."
}
