package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

// DefaultTimeout bounds a single gateway round trip when none is configured.
const DefaultTimeout = 60 * time.Second

// ErrUnexpectedStatus is returned when the gateway answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status from gateway")

// Client posts request documents to the gateway over HTTPS.
type Client struct {
	timeout time.Duration
	client  *fasthttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithDial overrides how connections are opened. Tests use it to talk to an
// in-memory listener.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) {
		c.client.Dial = dial
	}
}

// NewClient creates a Client. A non-positive timeout falls back to DefaultTimeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		timeout: timeout,
		client: &fasthttp.Client{
			Name:         "datacash-adapter",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post sends body to url and returns the response body. The request is bounded
// by the configured timeout or the context deadline, whichever comes first.
func (c *Client) Post(ctx context.Context, url, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(url)
	req.Header.SetMethod(http.MethodPost)
	req.Header.SetContentType("application/xml; charset=UTF-8")
	req.SetBodyString(body)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return "", fmt.Errorf("posting to %s: %w", url, err)
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
	}

	// resp is released on return, so copy the body out.
	return string(resp.Body()), nil
}
