package rules

import "testing"

func TestDistanceMilesKnownPairs(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{name: "same point", lat1: 40.7128, lon1: -74.0060, lat2: 40.7128, lon2: -74.0060, want: 0, tolerance: 0},
		{name: "nyc to philadelphia", lat1: 40.7128, lon1: -74.0060, lat2: 39.9526, lon2: -75.1652, want: 81, tolerance: 2},
		{name: "nyc to la", lat1: 40.7128, lon1: -74.0060, lat2: 34.0522, lon2: -118.2437, want: 2446, tolerance: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceMiles(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if diff := got - tc.want; diff > tc.tolerance || diff < -tc.tolerance {
				t.Fatalf("unexpected distance: got %v want %v (+/- %v)", got, tc.want, tc.tolerance)
			}
		})
	}
}

func TestDistanceMilesIsRounded(t *testing.T) {
	got := DistanceMiles(40.7128, -74.0060, 40.7484, -73.9857)
	if got != float64(int64(got)) {
		t.Fatalf("expected whole-mile distance, got %v", got)
	}
}

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{name: "valid", lat: 53.9, lon: 27.55, want: true},
		{name: "lat too high", lat: 90.1, lon: 0, want: false},
		{name: "lon too low", lat: 0, lon: -180.5, want: false},
		{name: "edges", lat: -90, lon: 180, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidCoordinates(tc.lat, tc.lon); got != tc.want {
				t.Fatalf("ValidCoordinates(%v, %v) = %v, want %v", tc.lat, tc.lon, got, tc.want)
			}
		})
	}
}
