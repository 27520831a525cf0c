package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/justrach/cupertino-ink/logging"
)

// maxErrorBody caps how much of an error response is captured into a
// TransportError.
const maxErrorBody = 64 * 1024

// Options configures the HTTP client.
type Options struct {
	// BaseURL is the full chat completions endpoint URL.
	BaseURL string

	// APIKey, when set, is sent as a bearer token.
	APIKey string

	// HTTPClient overrides the default http.Client.
	HTTPClient *http.Client

	// Logger receives decode warnings and request diagnostics.
	Logger logging.Logger
}

// Client streams chat completions from an OpenAI-compatible endpoint.
type Client struct {
	opts Options
}

// NewClient creates a client targeting the local endpoint by default.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Client{opts: opts}
}

// Stream posts the request and returns the decoded event stream. Failures
// before the first byte of the stream surface as EncodingError or
// TransportError.
func (c *Client) Stream(ctx context.Context, req Request) (Stream, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.opts.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	c.opts.Logger.Debug("Sending completion request",
		"model", req.Model,
		"messages", len(req.Messages),
		"tools", len(req.Tools),
	)

	res, err := c.opts.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("post %s: %w", c.opts.BaseURL, err)}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		res.Body.Close()
		return nil, &TransportError{
			StatusCode: res.StatusCode,
			Body:       string(body),
		}
	}

	return NewDecoder(res, c.opts.Logger), nil
}
