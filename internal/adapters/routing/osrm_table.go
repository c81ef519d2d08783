package routing

import (
	"context"
	"fmt"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/platform/obs"
	"route-planning-service/internal/ports"
)

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Table retrieves the full N×N distance and duration matrix via /table.
func (o *OSRMEngine) Table(ctx context.Context, coords []domain.LatLng) (_ ports.Matrix, err error) {
	defer obs.Time(ctx, "osrm.Table")(&err)

	if len(coords) < 2 {
		return ports.Matrix{}, ErrTooFewPoints
	}

	endpoint := fmt.Sprintf("%s/table/v1/%s/%s?annotations=distance,duration",
		o.baseURL, o.profile, encodeCoords(coords))

	var tr tableResponse
	if err := o.getJSON(ctx, "table", endpoint, &tr); err != nil {
		return ports.Matrix{}, fmt.Errorf("table request: %w", err)
	}

	if err := checkCode(tr.Code, tr.Message); err != nil {
		return ports.Matrix{}, err
	}

	n := len(coords)
	if len(tr.Distances) != n || len(tr.Durations) != n {
		return ports.Matrix{}, fmt.Errorf(
			"expected %d rows; got distances=%d durations=%d",
			n, len(tr.Distances), len(tr.Durations),
		)
	}

	out := ports.Matrix{
		DistancesKm:  make([][]float64, n),
		DurationsMin: make([][]float64, n),
		Source:       domain.PathEngine,
	}
	for i := 0; i < n; i++ {
		if len(tr.Distances[i]) != n || len(tr.Durations[i]) != n {
			return ports.Matrix{}, fmt.Errorf("row %d length does not match %d coordinates", i, n)
		}

		out.DistancesKm[i] = make([]float64, n)
		out.DurationsMin[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			metersPtr := tr.Distances[i][j]
			secondsPtr := tr.Durations[i][j]

			// A null cell means the engine found no path between the pair.
			if metersPtr == nil || secondsPtr == nil {
				return ports.Matrix{}, fmt.Errorf("%w: table cell %d->%d", ErrNoRoute, i, j)
			}

			out.DistancesKm[i][j] = *metersPtr / 1000
			out.DurationsMin[i][j] = *secondsPtr / 60
		}
	}

	return out, nil
}
