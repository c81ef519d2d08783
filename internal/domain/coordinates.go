package domain

// Immutable geographic coordinates (latitude, longitude).
// The core always works in (lat, lng); only the routing boundary swaps axes.
type LatLng struct {
	Lat float64
	Lng float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c LatLng) CoordsToList() []float64 { return []float64{c.Lng, c.Lat} }
