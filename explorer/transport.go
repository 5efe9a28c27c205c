package explorer

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Transport performs a single explorer HTTP call and returns the raw response
// body. It owns HTTP-level concerns (TLS, connection reuse); everything above
// it treats the body as opaque bytes. Tests substitute fakes.
type Transport interface {
	Call(ctx context.Context, baseURL string, params url.Values) ([]byte, error)
}

// HTTPTransport is the default Transport backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport with the given per-request timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
	}
}

// Call issues a GET request against baseURL with the given query parameters.
func (t *HTTPTransport) Call(ctx context.Context, baseURL string, params url.Values) ([]byte, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, Errorf(ErrCodeInvalidConfig, "invalid base URL: %v", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, Errorf(ErrCodeTransport, "build request: %v", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, Errorf(ErrCodeTransport, "request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Errorf(ErrCodeTransport, "read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewError(ErrCodeTransport, "unexpected HTTP status", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
	}

	return body, nil
}
