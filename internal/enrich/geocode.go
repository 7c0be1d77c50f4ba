package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/your-org/photodisplay/internal/config"
	"github.com/your-org/photodisplay/internal/models"
)

// Geocoder resolves a decimal coordinate to a display place. A nil place
// with nil error means "no place found" and is a normal outcome.
type Geocoder interface {
	Resolve(ctx context.Context, lat, lon float64) (*models.Place, error)
}

// NominatimGeocoder reverse-geocodes against a Nominatim-compatible endpoint.
type NominatimGeocoder struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

func NewNominatimGeocoder(cfg config.GeocodeConfig) *NominatimGeocoder {
	return &NominatimGeocoder{
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Country string `json:"country"`
	} `json:"address"`
}

// Resolve calls the reverse-geocoding endpoint. Non-success responses and
// responses without a usable display name yield (nil, nil), not an error:
// the photo simply stays without an auto place.
func (g *NominatimGeocoder) Resolve(ctx context.Context, lat, lon float64) (*models.Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil
	}
	if body.DisplayName == "" {
		return nil, nil
	}

	return &models.Place{
		Label:   body.DisplayName,
		Country: body.Address.Country,
		Lat:     lat,
		Lon:     lon,
		Source:  "auto",
	}, nil
}
