package geo

import (
	"math"
	"testing"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	p := Coordinate{Lat: 51.5074, Lng: -0.1278}
	if d := DistanceKm(p, p); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	london := Coordinate{Lat: 51.5074, Lng: -0.1278}
	manchester := Coordinate{Lat: 53.4808, Lng: -2.2426}

	ab := DistanceKm(london, manchester)
	ba := DistanceKm(manchester, london)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("expected symmetric distance, got %v and %v", ab, ba)
	}
}

func TestDistanceKmKnownPair(t *testing.T) {
	london := Coordinate{Lat: 51.5074, Lng: -0.1278}
	manchester := Coordinate{Lat: 53.4808, Lng: -2.2426}

	// Roughly 262 km apart.
	d := DistanceKm(london, manchester)
	if d < 255 || d > 270 {
		t.Fatalf("unexpected London-Manchester distance: %v", d)
	}
}

func TestCoordinateValid(t *testing.T) {
	if !(Coordinate{Lat: 51.5, Lng: -0.12}).Valid() {
		t.Fatal("expected valid coordinate")
	}
	if (Coordinate{Lat: 91, Lng: 0}).Valid() {
		t.Fatal("expected latitude out of range to be invalid")
	}
	if (Coordinate{Lat: 0, Lng: -181}).Valid() {
		t.Fatal("expected longitude out of range to be invalid")
	}
}
