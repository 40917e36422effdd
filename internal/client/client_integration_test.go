//go:build integration
// +build integration

package client

import (
	"context"
	"os"
	"testing"
	"time"
)

// Requires a live WeatherAPI.com key:
//
//	WEATHER_API_KEY=... go test -tags=integration ./internal/client/
func liveClient(t *testing.T) *WeatherAPIClient {
	t.Helper()
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_API_KEY not set, skipping integration test")
	}
	c, err := NewWeatherAPIClient(apiKey, "https://api.weatherapi.com/v1", 10*time.Second)
	if err != nil {
		t.Fatalf("NewWeatherAPIClient: %v", err)
	}
	return c
}

func TestIntegration_GetForecast(t *testing.T) {
	env, err := liveClient(t).GetForecast(context.Background(), "London")
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if env.Location.Name == "" {
		t.Error("expected a resolved location name")
	}
	if env.Current.Condition.Text == "" {
		t.Error("expected a condition text")
	}
	if env.AstroBlock() == nil {
		t.Error("expected an astro block for a one-day forecast")
	}
}

func TestIntegration_SearchLocations(t *testing.T) {
	matches, err := liveClient(t).SearchLocations(context.Background(), "Lond")
	if err != nil {
		t.Fatalf("SearchLocations: %v", err)
	}
	if len(matches) == 0 {
		t.Error("expected at least one match for 'Lond'")
	}
}
