// Package invoker issues the one outbound HTTP request a backend step
// makes. JSONClient is the contract the evaluator depends on; LiveClient
// talks to real services and MockClient echoes for tests.
package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/threadlane/delegator/internal/cryptogram"
	apperrors "github.com/threadlane/delegator/pkg/errors"
	"github.com/threadlane/delegator/pkg/logger"
	"github.com/threadlane/delegator/pkg/otel"
)

// JSONClient issues one outbound JSON request and returns the decoded
// response body.
type JSONClient interface {
	IssueRequest(ctx context.Context, method, uri string, body interface{}, headers []cryptogram.Header) (interface{}, error)
}

// LiveClient is the production JSONClient backed by net/http. Every request
// carries the configured User-Agent, a JSON content type, the caller's
// per-step headers, and the W3C trace context of ctx.
type LiveClient struct {
	client    *http.Client
	userAgent string
	log       logger.Logger
}

// NewLiveClient creates a client with the given identity and per-request
// timeout.
func NewLiveClient(userAgent string, timeout time.Duration, log logger.Logger) *LiveClient {
	return &LiveClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

// IssueRequest implements JSONClient. Non-2xx responses surface as an
// UpstreamError carrying the response body, parsed as JSON when possible.
func (c *LiveClient) IssueRequest(ctx context.Context, method, uri string, body interface{}, headers []cryptogram.Header) (interface{}, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, &apperrors.SendError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, bytes.NewReader(encoded))
	if err != nil {
		return nil, &apperrors.SendError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")
	for _, h := range headers {
		req.Header.Set(h.Name, h.Value)
	}
	otel.InjectHTTPHeaders(ctx, req.Header)

	c.log.Debugf(ctx, "Issuing %s %s", method, uri)
	res, err := c.client.Do(req)
	if err != nil {
		return nil, &apperrors.SendError{Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &apperrors.InvalidPayloadError{Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// pass the upstream body through: JSON when parsable, else text
		var upstream interface{}
		if err := json.Unmarshal(raw, &upstream); err != nil {
			if !utf8.Valid(raw) {
				return nil, &apperrors.UTF8Error{}
			}
			upstream = string(raw)
		}
		return nil, &apperrors.UpstreamError{Context: upstream}
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &apperrors.InvalidJSONError{Err: err}
	}
	return value, nil
}
