// package services implements HTTP clients for the remote APIs recall uses
//
// Pocket, Google Trends, SendGrid, Hacker News (Algolia), Wayback Machine
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/desertthunder/recall/internal/shared"
)

const defaultTimeoutSeconds = 30

// checkStatus maps a non-2xx response to a typed error. Authorization
// rejections get their own kind so callers can prompt for re-authorization
// instead of retrying.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s returned status %d", shared.ErrRemoteAuth, resp.Request.URL.Host, resp.StatusCode)
	}
	return fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, resp.Request.URL.Host, resp.StatusCode)
}

// readBody drains and closes the response body so the underlying connection
// can be reused.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", shared.ErrAPIRequest, err)
	}
	return body, nil
}

// getJSON performs a GET request and decodes the JSON response into result.
func getJSON(ctx context.Context, client *http.Client, requestURL string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", shared.ErrAPIRequest, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDeserialization, err)
	}
	return nil
}

// isRetryable reports whether a transport error is worth another attempt.
// Timeouts and connection failures qualify, everything else (TLS errors,
// protocol violations, context cancellation) is surfaced immediately.
func isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return false
}

// firstNonEmpty returns the first string with content, or "".
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
