package main

import (
	"testing"

	"github.com/rlanders/weatherview/internal/config"
)

func TestEnsureConfigured(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.InfluxConfig
		wantErr bool
	}{
		{"empty", config.InfluxConfig{}, true},
		{"partial", config.InfluxConfig{URL: "http://localhost:8086", Token: "tok"}, true},
		{"full", config.InfluxConfig{URL: "http://localhost:8086", Token: "tok", Org: "home", Bucket: "weather"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ensureConfigured(tc.cfg)
			if (err != nil) != tc.wantErr {
				t.Errorf("ensureConfigured() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
