package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwatchw/backend/internal/weather"
)

const currentPayload = `{
	"coord": {"lat": 51.51, "lon": -0.13},
	"weather": [{"main": "Rain", "description": "light rain"}],
	"main": {"temp": 12.3, "feels_like": 11.1, "humidity": 81, "pressure": 1004},
	"wind": {"speed": 4.6, "deg": 250},
	"sys": {"country": "GB"},
	"name": "London",
	"dt": 1700000000,
	"timezone": 3600
}`

const airPayload = `{"list": [{"main": {"aqi": 2}}]}`

// newTestProvider points the provider at a local server. aqiStatus controls
// the air-quality endpoint's response code.
func newTestProvider(t *testing.T, aqiStatus int, requests *atomic.Int64) *OpenWeatherProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/current", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, currentPayload)
	})
	mux.HandleFunc("/air", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if aqiStatus != http.StatusOK {
			w.WriteHeader(aqiStatus)
			return
		}
		fmt.Fprint(w, airPayload)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewOpenWeatherProvider(srv.Client(), "test-key")
	p.currentURL = srv.URL + "/current"
	p.airURL = srv.URL + "/air"
	// No retries in tests so failure cases stay fast.
	p.httpCfg.Backoff.MaxRetries = 0
	return p
}

func TestFetchNormalizesRecord(t *testing.T) {
	var requests atomic.Int64
	p := newTestProvider(t, http.StatusOK, &requests)

	rec, err := p.Fetch(context.Background(), weather.Coordinates{Latitude: 51.5, Longitude: -0.12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.City != "London" || rec.Country != "GB" {
		t.Errorf("place = %s, %s; want London, GB", rec.City, rec.Country)
	}
	if rec.Condition != "Rain" || rec.Description != "light rain" {
		t.Errorf("condition = %q / %q", rec.Condition, rec.Description)
	}
	if rec.Temperature != 12.3 || rec.Humidity != 81 || rec.Pressure != 1004 {
		t.Errorf("unexpected conditions: %+v", rec)
	}
	if rec.AQI == nil || *rec.AQI != 2 {
		t.Errorf("AQI = %v, want 2", rec.AQI)
	}
	if rec.TimezoneOffset != 3600 {
		t.Errorf("timezone offset = %d, want 3600", rec.TimezoneOffset)
	}

	wantTS := time.Unix(1700000000, 0).UTC()
	if !rec.ObservedAt.Equal(wantTS) {
		t.Errorf("observed at = %v, want %v", rec.ObservedAt, wantTS)
	}
	if rec.ObservedAt.Location() != time.UTC {
		t.Errorf("observed at must stay UTC, got %v", rec.ObservedAt.Location())
	}
}

func TestFetchDegradesWhenAirQualityFails(t *testing.T) {
	var requests atomic.Int64
	p := newTestProvider(t, http.StatusInternalServerError, &requests)

	rec, err := p.Fetch(context.Background(), weather.Coordinates{Latitude: 51.5, Longitude: -0.12})
	if err != nil {
		t.Fatalf("air quality failure must not fail the fetch: %v", err)
	}
	if rec.AQI != nil {
		t.Errorf("AQI = %v, want absent", rec.AQI)
	}
	if rec.City != "London" {
		t.Errorf("rest of the record must survive, got %+v", rec)
	}
}

func TestFetchRejectsInvalidCoordinatesWithoutNetworkCall(t *testing.T) {
	var requests atomic.Int64
	p := newTestProvider(t, http.StatusOK, &requests)

	tests := []weather.Coordinates{
		{Latitude: 90.1, Longitude: 0},
		{Latitude: -90.1, Longitude: 0},
		{Latitude: 0, Longitude: 180.1},
		{Latitude: 0, Longitude: -180.1},
	}

	for _, coords := range tests {
		_, err := p.Fetch(context.Background(), coords)
		if !errors.Is(err, weather.ErrInvalidCoordinates) {
			t.Errorf("coords %+v: expected ErrInvalidCoordinates, got %v", coords, err)
		}
	}
	if n := requests.Load(); n != 0 {
		t.Fatalf("expected no network calls for invalid coordinates, got %d", n)
	}
}

func TestFetchAppliesDefaultsForMissingFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/current", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"dt": 1700000000}`)
	})
	mux.HandleFunc("/air", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, airPayload)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewOpenWeatherProvider(srv.Client(), "test-key")
	p.currentURL = srv.URL + "/current"
	p.airURL = srv.URL + "/air"

	rec, err := p.Fetch(context.Background(), weather.Coordinates{Latitude: 1, Longitude: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.City != "Unknown" || rec.Country != "Unknown" {
		t.Errorf("place defaults = %s, %s; want Unknown, Unknown", rec.City, rec.Country)
	}
	if rec.Condition != "Unknown" || rec.Description != "" {
		t.Errorf("condition defaults = %q / %q", rec.Condition, rec.Description)
	}
	if rec.Temperature != 0 || rec.Humidity != 0 || rec.Pressure != 0 {
		t.Errorf("numeric fields must default to zero values: %+v", rec)
	}
}

func TestFetchPrimaryFailureIsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	p := NewOpenWeatherProvider(srv.Client(), "test-key")
	p.currentURL = srv.URL + "/current"
	p.airURL = srv.URL + "/air"
	p.httpCfg.Backoff.MaxRetries = 0

	_, err := p.Fetch(context.Background(), weather.Coordinates{Latitude: 1, Longitude: 1})
	if !errors.Is(err, weather.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestFetchRequiresAPIKey(t *testing.T) {
	p := NewOpenWeatherProvider(&http.Client{}, "")

	_, err := p.Fetch(context.Background(), weather.Coordinates{Latitude: 1, Longitude: 1})
	if !errors.Is(err, weather.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}
