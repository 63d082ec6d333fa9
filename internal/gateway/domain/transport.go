package domain

import "context"

// Transport delivers a request document and returns the raw reply.
// Implementations own timeouts; the gateway never retries.
type Transport interface {
	Post(ctx context.Context, url string, body string) (string, error)
}
