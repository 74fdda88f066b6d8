package infrastructure

import (
	"context"
	"io"
	"net/http"
	"time"
)

// RESTClient wraps http.Client so adapters share timeout defaults and request construction.
type RESTClient struct {
	client  *http.Client
	timeout time.Duration
}

func NewRESTClient(timeout time.Duration, client *http.Client) *RESTClient {
	timeout = timeoutOrDefault(timeout)
	if client == nil {
		client = &http.Client{Timeout: timeout}
	} else if client.Timeout <= 0 {
		client.Timeout = timeout
	}
	return &RESTClient{client: client, timeout: timeout}
}

// NewRequest builds a GET-style request for an absolute URL produced by the Router.
func (c *RESTClient) NewRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *RESTClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// Timeout is the per-request deadline applied on top of the caller's context.
func (c *RESTClient) Timeout() time.Duration {
	return c.timeout
}

func timeoutOrDefault(value time.Duration) time.Duration {
	if value <= 0 {
		return 10 * time.Second
	}
	return value
}
