package recommend

import (
	"testing"

	"tutorplan/services/schedule-service/internal/model"
)

func TestDistanceKm_SamePoint(t *testing.T) {
	p := model.GeoPoint{Lat: 32.0853, Lng: 34.7818}
	if d := DistanceKm(p, p); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDistanceKm_KnownCities(t *testing.T) {
	telAviv := model.GeoPoint{Lat: 32.0853, Lng: 34.7818}
	jerusalem := model.GeoPoint{Lat: 31.7683, Lng: 35.2137}

	d := DistanceKm(telAviv, jerusalem)
	if d < 50 || d > 58 {
		t.Fatalf("Tel Aviv-Jerusalem should be ~54 km, got %f", d)
	}
	if back := DistanceKm(jerusalem, telAviv); back != d {
		t.Fatalf("distance should be symmetric: %f vs %f", d, back)
	}
}

func TestDistanceKm_NearbyWithinRadius(t *testing.T) {
	a := model.GeoPoint{Lat: 32.08, Lng: 34.78}
	b := model.GeoPoint{Lat: 32.10, Lng: 34.80}
	if d := DistanceKm(a, b); d >= proximityRadiusKm {
		t.Fatalf("neighboring points should be inside the proximity radius, got %f", d)
	}
}
