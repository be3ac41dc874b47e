// Package lookup talks to the public address services: ViaCEP for Brazilian
// postal codes and the Google Geocoding API for coordinates.
//
// Both clients use a fixed timeout and never retry. Failures are reported
// with the sentinels in common (ErrNetwork, ErrAddressNotFound,
// ErrGeocodeFailed).
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// NewHTTPClient returns a client with the given timeout whose requests are
// traced through otelhttp.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// getJSON issues a GET to url and decodes a 2xx body into out. Transport
// failures, timeouts and non-2xx statuses wrap common.ErrNetwork.
func getJSON(ctx context.Context, c *http.Client, service, url string, out any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveLookup(service, err, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", common.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrNetwork, service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return fmt.Errorf("%w: %s: unexpected status %d", common.ErrNetwork, service, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %v", common.ErrNetwork, service, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: decode body: %v", common.ErrNetwork, service, err)
	}
	return nil
}
