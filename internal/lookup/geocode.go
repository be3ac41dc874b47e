package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"golang.org/x/time/rate"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location Coordinates `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type GeocodeClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  logging.Logger
}

// NewGeocodeClient builds a client allowing at most perSecond requests per
// second (no limit when perSecond <= 0).
func NewGeocodeClient(baseURL, apiKey string, httpClient *http.Client, perSecond float64, logger logging.Logger) *GeocodeClient {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &GeocodeClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With("component", "geocode"),
	}
}

// Coordinates geocodes a free-form address. Only status "OK" with at least
// one result succeeds; the first result is used.
func (c *GeocodeClient) Coordinates(ctx context.Context, address string) (Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Coordinates{}, fmt.Errorf("%w: address is empty", common.ErrValidation)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Coordinates{}, fmt.Errorf("%w: geocode: %v", common.ErrNetwork, err)
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}

	var resp geocodeResponse
	if err := getJSON(ctx, c.http, "geocode", c.baseURL+sep+q.Encode(), &resp); err != nil {
		c.logger.Warn(ctx, "geocode request failed", "error", err)
		return Coordinates{}, err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		c.logger.Warn(ctx, "geocode rejected", "status", resp.Status, "message", resp.ErrorMessage)
		return Coordinates{}, fmt.Errorf("%w: %s", common.ErrGeocodeFailed, resp.Status)
	}
	return resp.Results[0].Geometry.Location, nil
}

// ContactCoordinates geocodes the address of c.
func (c *GeocodeClient) ContactCoordinates(ctx context.Context, contact models.Contact) (Coordinates, error) {
	return c.Coordinates(ctx, FormatContactAddress(contact))
}

// FormatContactAddress renders "street, number, [complement], city, state,
// Brasil, [cep]" with blank parts dropped.
func FormatContactAddress(c models.Contact) string {
	parts := []string{c.Address, c.Number, c.Complement, c.City, c.State, "Brasil", c.CEP}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
