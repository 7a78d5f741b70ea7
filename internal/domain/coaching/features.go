package coaching

import (
	"math"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Features are coarse biomechanics measures of one swing window.
type Features struct {
	Speed           float64 // peak acceleration norm
	HorizontalPower float64 // |mean ax|
	UpwardPower     float64 // max(0, mean az)
	DownwardPower   float64 // max(0, -mean az)
	WristRotation   float64 // |mean gz|
	FollowThrough   float64 // mean norm over the last 40% of the window
}

const minFollowThroughSamples = 10

// ExtractFeatures computes Features for w. ok is false for an empty window.
func ExtractFeatures(w model.SwingWindow) (Features, bool) {
	n := len(w)
	if n == 0 {
		return Features{}, false
	}
	ax := make([]float64, n)
	az := make([]float64, n)
	gz := make([]float64, n)
	norms := make([]float64, n)
	for i, s := range w {
		ax[i], az[i], gz[i] = s.AX, s.AZ, s.GZ
		norms[i] = s.AccelNorm()
	}

	vertical := stat.Mean(az, nil)
	f := Features{
		Speed:           floats.Max(norms),
		HorizontalPower: math.Abs(stat.Mean(ax, nil)),
		UpwardPower:     math.Max(0, vertical),
		DownwardPower:   math.Max(0, -vertical),
		WristRotation:   math.Abs(stat.Mean(gz, nil)),
	}
	if n >= minFollowThroughSamples {
		f.FollowThrough = stat.Mean(norms[int(0.6*float64(n)):], nil)
	}
	return f, true
}
