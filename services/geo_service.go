package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/grange-pets/pet-market-api/config"
)

// earthRadiusMiles is the mean Earth radius used by the Haversine formula.
const earthRadiusMiles = 3958.8

// GeoService decides whether a postcode falls inside the shop's service
// radius. It gates both registration and checkout, so implementations must
// fail closed: when a postcode cannot be resolved, it is not eligible.
type GeoService interface {
	// WithinServiceRadius reports whether the postcode is inside the
	// configured radius. A false return with a non-nil error means the
	// lookup itself failed; callers still treat it as ineligible.
	WithinServiceRadius(ctx context.Context, postcode string) (bool, error)
}

// PostcodesIOGeoService resolves postcodes to coordinates via the public
// postcodes.io directory.
type PostcodesIOGeoService struct {
	baseURL        string
	originPostcode string
	radiusMiles    float64
	httpClient     *http.Client

	mu           sync.Mutex
	originLat    float64
	originLng    float64
	originCached bool
}

var geoServiceInstance GeoService

// InitGeoService initializes the geo service from configuration.
func InitGeoService(cfg *config.Config) GeoService {
	geoServiceInstance = &PostcodesIOGeoService{
		baseURL:        "https://api.postcodes.io",
		originPostcode: cfg.OriginPostcode,
		radiusMiles:    cfg.ServiceRadiusMiles,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	return geoServiceInstance
}

// GetGeoService returns the initialized geo service instance
func GetGeoService() GeoService {
	return geoServiceInstance
}

// SetGeoService sets the geo service instance (primarily for testing)
func SetGeoService(service GeoService) {
	geoServiceInstance = service
}

// NewPostcodesIOGeoService builds a geo service against a specific directory
// URL. Used by tests to point at a stub server.
func NewPostcodesIOGeoService(baseURL, originPostcode string, radiusMiles float64) *PostcodesIOGeoService {
	return &PostcodesIOGeoService{
		baseURL:        baseURL,
		originPostcode: originPostcode,
		radiusMiles:    radiusMiles,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// postcodeLookupResponse is the shape of a postcodes.io single-postcode reply.
type postcodeLookupResponse struct {
	Status int `json:"status"`
	Result struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"result"`
}

// WithinServiceRadius resolves both the origin and the target postcode and
// compares their great-circle distance against the configured radius.
func (s *PostcodesIOGeoService) WithinServiceRadius(ctx context.Context, postcode string) (bool, error) {
	originLat, originLng, err := s.originCoords(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to resolve origin postcode: %w", err)
	}

	lat, lng, err := s.lookupCoords(ctx, postcode)
	if err != nil {
		return false, fmt.Errorf("failed to resolve postcode %q: %w", postcode, err)
	}

	dist := HaversineMiles(originLat, originLng, lat, lng)
	return dist <= s.radiusMiles, nil
}

// originCoords resolves the shop origin once and caches it; the origin
// postcode never changes at runtime.
func (s *PostcodesIOGeoService) originCoords(ctx context.Context) (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.originCached {
		return s.originLat, s.originLng, nil
	}

	lat, lng, err := s.lookupCoords(ctx, s.originPostcode)
	if err != nil {
		return 0, 0, err
	}

	s.originLat, s.originLng, s.originCached = lat, lng, true
	return lat, lng, nil
}

// lookupCoords queries the directory for a postcode's coordinates, retrying
// once on transport failure. Unknown postcodes are not retried.
func (s *PostcodesIOGeoService) lookupCoords(ctx context.Context, postcode string) (float64, float64, error) {
	lookupURL := fmt.Sprintf("%s/postcodes/%s", s.baseURL, url.PathEscape(postcode))

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			log.Printf("Retrying postcode lookup for %q after error: %v", postcode, lastErr)
		}

		lat, lng, retryable, err := s.doLookup(ctx, lookupURL)
		if err == nil {
			return lat, lng, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return 0, 0, lastErr
}

func (s *PostcodesIOGeoService) doLookup(ctx context.Context, lookupURL string) (lat, lng float64, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, true, fmt.Errorf("postcode lookup request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("warning: failed to close lookup response body: %v", closeErr)
		}
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return 0, 0, true, fmt.Errorf("postcode directory returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("postcode not found (status %d)", resp.StatusCode)
	}

	var payload postcodeLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, false, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	if payload.Status != http.StatusOK {
		return 0, 0, false, fmt.Errorf("postcode directory returned status %d", payload.Status)
	}

	return payload.Result.Latitude, payload.Result.Longitude, false, nil
}

// HaversineMiles computes the great-circle distance between two coordinates
// in miles.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	rLat1 := toRad(lat1)
	rLat2 := toRad(lat2)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}
