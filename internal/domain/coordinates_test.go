package domain

import (
	"math"
	"testing"
)

func TestNewCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{name: "origin", lat: 0, lon: 0},
		{name: "bounds", lat: -90, lon: 180},
		{name: "bangalore", lat: 12.9716, lon: 77.5946},
		{name: "lat too high", lat: 90.0001, lon: 0, wantErr: true},
		{name: "lon too low", lat: 0, lon: -180.5, wantErr: true},
		{name: "nan", lat: math.NaN(), lon: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCoordinates(tt.lat, tt.lon)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for lat=%v lon=%v", tt.lat, tt.lon)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Lat != tt.lat || c.Lon != tt.lon {
				t.Fatalf("got %v, want lat=%v lon=%v", c, tt.lat, tt.lon)
			}
		})
	}
}
