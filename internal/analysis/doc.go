// Package analysis provides post-processing tools for simulated trajectories.
//
//   - [Spectrum] and [DominantFrequency]: amplitude spectrum of a sampled
//     observable, e.g. the nutation of the centre height
//   - [ConvergenceOrder] and [StudyConvergence]: empirical order of accuracy
//     of an integrator
//   - [ParameterSweep]: one run per value of a tunable parameter
//
// # Convergence
//
// The slope of log error against log step size estimates the order:
//
//	study, _ := analysis.StudyConvergence(ctx, top, integrators.NewHeun(),
//	    integrators.NewRK4(), x0, 0.2, []float64{0.01, 0.005, 0.0025}, 1e-4)
//	fmt.Printf("order %.2f\n", study.Order)
package analysis
