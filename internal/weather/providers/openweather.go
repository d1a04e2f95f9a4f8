package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cloudwatchw/backend/internal/weather"
)

// OpenWeatherProvider fetches current conditions and air quality from
// OpenWeatherMap and normalizes them into a canonical weather record.
type OpenWeatherProvider struct {
	name       string
	apiKey     string
	currentURL string
	airURL     string
	httpCfg    HTTPClientConfig
	current    *gobreaker.CircuitBreaker
	air        *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider creates the provider around a shared HTTP client.
// The conditions and air-quality endpoints get separate circuit breakers so
// air-quality outages never open the primary circuit.
func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}
	}

	return &OpenWeatherProvider{
		name:       "openweathermap",
		apiKey:     apiKey,
		currentURL: "https://api.openweathermap.org/data/2.5/weather",
		airURL:     "https://api.openweathermap.org/data/2.5/air_pollution",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		current: gobreaker.NewCircuitBreaker(settings("openweather")),
		air:     gobreaker.NewCircuitBreaker(settings("openweather-aqi")),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Fetch retrieves and normalizes one observation. Coordinates are validated
// before any network call. A failure of the conditions call is a soft
// failure (wrapped ErrProviderUnavailable); a failure of the air-quality
// call only leaves the AQI field absent.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, coords weather.Coordinates) (*weather.Record, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: openweather api key is not configured", weather.ErrProviderUnavailable)
	}

	rec, err := p.fetchCurrent(ctx, coords)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrProviderUnavailable, err)
	}

	aqi, err := p.fetchAirQuality(ctx, coords)
	if err != nil {
		// Partial failure: the rest of the record is still served.
		log.Printf("air quality fetch failed for %s: %v", coords.Key(), err)
	} else {
		rec.AQI = aqi
	}

	return rec, nil
}

func (p *OpenWeatherProvider) fetchCurrent(ctx context.Context, coords weather.Coordinates) (*weather.Record, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.current, p.buildRequest(p.currentURL, coords, true))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
			Pressure  int     `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   int     `json:"deg"`
		} `json:"wind"`
		Sys struct {
			Country string `json:"country"`
		} `json:"sys"`
		Name     string `json:"name"`
		Dt       int64  `json:"dt"`
		Timezone int    `json:"timezone"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	rec := &weather.Record{
		City:           payload.Name,
		Country:        payload.Sys.Country,
		Latitude:       payload.Coord.Lat,
		Longitude:      payload.Coord.Lon,
		Condition:      "Unknown",
		Temperature:    payload.Main.Temp,
		FeelsLike:      payload.Main.FeelsLike,
		Humidity:       payload.Main.Humidity,
		Pressure:       payload.Main.Pressure,
		WindSpeed:      payload.Wind.Speed,
		WindDirection:  payload.Wind.Deg,
		TimezoneOffset: payload.Timezone,
		ObservedAt:     time.Unix(payload.Dt, 0).UTC(),
	}

	if rec.City == "" {
		rec.City = "Unknown"
	}
	if rec.Country == "" {
		rec.Country = "Unknown"
	}
	if len(payload.Weather) > 0 {
		if payload.Weather[0].Main != "" {
			rec.Condition = payload.Weather[0].Main
		}
		rec.Description = payload.Weather[0].Description
	}

	return rec, nil
}

func (p *OpenWeatherProvider) fetchAirQuality(ctx context.Context, coords weather.Coordinates) (*int, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.air, p.buildRequest(p.airURL, coords, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("empty air quality response")
	}

	aqi := payload.List[0].Main.AQI
	return &aqi, nil
}

func (p *OpenWeatherProvider) buildRequest(baseURL string, coords weather.Coordinates, metric bool) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", coords.Latitude))
		values.Set("lon", fmt.Sprintf("%f", coords.Longitude))
		values.Set("appid", p.apiKey)
		if metric {
			values.Set("units", "metric")
		}

		u := fmt.Sprintf("%s?%s", baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}
