package geo

import (
	"math"
	"testing"
)

func TestDistanceKmSamePoint(t *testing.T) {
	pts := []Point{{0, 0}, {40.7128, -74.006}, {-33.86, 151.2}, {91, 200}}
	for _, p := range pts {
		if d := DistanceKm(p, p); d != 0 {
			t.Errorf("DistanceKm(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	ny := Point{Lat: 40.7128, Lng: -74.006}
	la := Point{Lat: 34.0522, Lng: -118.2437}
	ab, ba := DistanceKm(ny, la), DistanceKm(la, ny)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("asymmetric: %v vs %v", ab, ba)
	}
	// New York to Los Angeles is roughly 3936 km.
	if ab < 3900 || ab > 3970 {
		t.Errorf("NY-LA distance = %.1f km, want ~3936", ab)
	}
}

func TestDistanceKmOneDegreeLatitude(t *testing.T) {
	d := DistanceKm(Point{0, 0}, Point{1, 0})
	want := EarthRadiusKm * math.Pi / 180
	if math.Abs(d-want) > 1e-6 {
		t.Errorf("got %v, want %v", d, want)
	}
}

func TestDistanceBetweenUnresolved(t *testing.T) {
	p := &Point{Lat: 1, Lng: 1}
	if d := DistanceBetween(p, nil); !math.IsInf(d, 1) {
		t.Errorf("DistanceBetween(p, nil) = %v, want +Inf", d)
	}
	if d := DistanceBetween(nil, p); !math.IsInf(d, 1) {
		t.Errorf("DistanceBetween(nil, p) = %v, want +Inf", d)
	}
	if d := DistanceBetween(p, p); d != 0 {
		t.Errorf("DistanceBetween(p, p) = %v, want 0", d)
	}
}
