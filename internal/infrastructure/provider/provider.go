package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vitos/bitcoin_resonance/internal/domain"
)

const defaultTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// get issues a single GET with an Accept: application/json header and
// returns the raw body. Non-2xx statuses become UpstreamHTTPError,
// anything below HTTP becomes TransportError. No retries here; the
// polling loop owns retry policy.
func get(ctx context.Context, client *http.Client, name, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.TransportError{Provider: name, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Provider: name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Provider: name, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamHTTPError{Provider: name, StatusCode: resp.StatusCode}
	}

	return body, nil
}

// parseField parses a numeric string field, converting parse failures
// into schema errors that name the offending field.
func parseField(name, field, value string) (float64, error) {
	if value == "" {
		return 0, &domain.UpstreamSchemaError{Provider: name, Reason: fmt.Sprintf("missing field %s", field)}
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &domain.UpstreamSchemaError{Provider: name, Reason: fmt.Sprintf("cannot parse %s value %q", field, value)}
	}
	return f, nil
}
