// Package polyline encodes a route's ordered stops into the Google
// encoded-polyline format for the optional wire field on TeamDay (spec §6).
// Grounded on the encode/decode counterpart used by
// Cabeda-porto-realtime/worker/cron_segments.go, which decodes the same
// format via polyline.DecodeCoords; here we produce it instead of
// consuming it.
package polyline

import (
	gopolyline "github.com/twpayne/go-polyline"

	"fieldplanner/internal/geo"
)

// Encode renders points as an encoded polyline string in [lat, lng] order,
// matching the coordinate order cron_segments.go decodes.
func Encode(points []geo.Point) string {
	if len(points) == 0 {
		return ""
	}
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lng}
	}
	return string(gopolyline.EncodeCoords(coords))
}
