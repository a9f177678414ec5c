package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient wraps resty.Client. It embeds the client to expose all of
// its methods while leaving room for application-specific extensions.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a new HTTPClient with its own connection pool and
// the given per-request timeout. A zero timeout leaves resty's default.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPClient{Client: client}
}
