package geo

import "strings"

// Resolver maps free-text locations to coordinates.
type Resolver interface {
	Resolve(location string) (*Point, bool)
}

type city struct {
	name  string
	point Point
}

// CityTable is a placeholder Resolver backed by a fixed list of US cities.
// It only matches lower-cased substrings; swap in a real geocoder for
// anything beyond demos.
type CityTable struct {
	cities []city
}

// NewCityTable returns the default five-city table.
func NewCityTable() *CityTable {
	return &CityTable{cities: []city{
		{"new york", Point{Lat: 40.7128, Lng: -74.006}},
		{"los angeles", Point{Lat: 34.0522, Lng: -118.2437}},
		{"chicago", Point{Lat: 41.8781, Lng: -87.6298}},
		{"houston", Point{Lat: 29.7604, Lng: -95.3698}},
		{"phoenix", Point{Lat: 33.4484, Lng: -112.074}},
	}}
}

// Resolve returns the coordinates of the first known city contained in location.
func (t *CityTable) Resolve(location string) (*Point, bool) {
	l := strings.ToLower(location)
	for _, c := range t.cities {
		if strings.Contains(l, c.name) {
			p := c.point
			return &p, true
		}
	}
	return nil, false
}
