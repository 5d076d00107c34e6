package metrics

import (
	"github.com/san-kum/phitop/internal/dynamo"
	"github.com/san-kum/phitop/internal/physics"
)

// ForPhiTop is the standard metric set for a phi top run.
func ForPhiTop(top *physics.PhiTop) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergyDrift(top),
		NewEnergy(top),
		NewDeviation("quat_norm_drift", physics.QuatNorm, 1),
		NewMin("height_min", physics.Height),
		NewMax("height_max", physics.Height),
	}
}
