// Package weather provides a polling workflow that fetches and condenses
// forecasts from the Open-Meteo API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL   = "https://api.open-meteo.com"
	defaultLatitude  = 52.52
	defaultLongitude = 13.41

	requestTimeout = 30 * time.Second
	forecastHours  = 24
)

type Workflow struct {
	baseURL   string
	latitude  float64
	longitude float64
	client    *http.Client
	logger    *slog.Logger
}

func NewWorkflow(config map[string]any, logger *slog.Logger) *Workflow {
	w := &Workflow{
		baseURL:   defaultBaseURL,
		latitude:  defaultLatitude,
		longitude: defaultLongitude,
		client:    &http.Client{Timeout: requestTimeout},
		logger:    logger.With("workflow", "weather"),
	}

	if base, ok := config["base_url"].(string); ok && base != "" {
		w.baseURL = base
	}

	if lat, ok := config["latitude"].(float64); ok {
		w.latitude = lat
	}

	if lon, ok := config["longitude"].(float64); ok {
		w.longitude = lon
	}

	return w
}

// forecastResponse is the subset of the Open-Meteo payload this workflow
// consumes.
type forecastResponse struct {
	Current struct {
		Time        string  `json:"time"`
		Temperature float64 `json:"temperature_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		Humidity    []float64 `json:"relative_humidity_2m"`
		WindSpeed   []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

func (w *Workflow) Validate(_ context.Context, _ map[string]any) bool {
	return true
}

// Process fetches the current forecast and projects the current conditions
// plus the next 24 hourly entries. The queue item that triggers it is a
// scheduler tick; its payload is not consulted.
func (w *Workflow) Process(ctx context.Context, _ map[string]any) (map[string]any, error) {
	forecast, err := w.fetchForecast(ctx)
	if err != nil {
		return nil, err
	}

	hourly := make([]map[string]any, 0, forecastHours)

	for i := 0; i < forecastHours && i < len(forecast.Hourly.Time); i++ {
		entry := map[string]any{
			"timestamp":   forecast.Hourly.Time[i],
			"temperature": forecast.Hourly.Temperature[i],
		}

		if i < len(forecast.Hourly.Humidity) {
			entry["humidity"] = forecast.Hourly.Humidity[i]
		}

		if i < len(forecast.Hourly.WindSpeed) {
			entry["wind_speed"] = forecast.Hourly.WindSpeed[i]
		}

		hourly = append(hourly, entry)
	}

	w.logger.InfoContext(ctx, "Weather data processed", "forecast_hours", len(hourly))

	return map[string]any{
		"current": map[string]any{
			"timestamp":   forecast.Current.Time,
			"temperature": forecast.Current.Temperature,
			"wind_speed":  forecast.Current.WindSpeed,
		},
		"forecast": hourly,
		"location": map[string]any{
			"latitude":  w.latitude,
			"longitude": w.longitude,
		},
	}, nil
}

func (w *Workflow) fetchForecast(ctx context.Context) (*forecastResponse, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(w.latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(w.longitude, 'f', -1, 64))
	params.Set("current", "temperature_2m,wind_speed_10m")
	params.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m")
	params.Set("timezone", "auto")

	endpoint := w.baseURL + "/v1/forecast?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast request failed with status %d", resp.StatusCode)
	}

	var forecast forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	return &forecast, nil
}

func (w *Workflow) Cleanup(_ context.Context) error {
	w.client.CloseIdleConnections()

	return nil
}
