package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// ErrFetchFailed wraps every single-attempt failure returned by a Transport.
var ErrFetchFailed = errors.New("fetch failed")

// StatusError is returned when the server answered with a non-success status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrFetchFailed
}

// Transport performs exactly one GET attempt and returns the page body.
type Transport interface {
	Get(ctx context.Context, url string) (string, error)
}

type HTTPTransportOptions struct {
	UserAgent        string
	Timeout          time.Duration
	CloudflareBypass bool
}

// HTTPTransport downloads pages with a resty client that identifies as a desktop browser.
type HTTPTransport struct {
	client *resty.Client
}

func NewHTTPTransport(opts HTTPTransportOptions) *HTTPTransport {
	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	// Retries belong to Fetcher so the backoff schedule stays linear.
	client.SetRetryCount(0)
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Get(ctx context.Context, url string) (string, error) {
	res, err := t.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %v", ErrFetchFailed, url, err)
	}
	if res.IsError() {
		return "", &StatusError{URL: url, StatusCode: res.StatusCode()}
	}
	return res.String(), nil
}
