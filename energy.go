package boltzgen

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// R is the gas constant in kJ/(mol K). It is exposed so that energy
// collaborators reduce their output consistently; nothing in this package
// uses it internally.
const R = 8.314e-3

// KBT returns the thermal energy k_B*T in kJ/mol for a temperature in
// Kelvin.
func KBT(temperature float64) float64 {
	return R * temperature
}

// EnergyModel is the collaborator interface for an external molecular
// mechanics engine. Energies takes a batch of flattened Cartesian
// coordinates and returns the per-sample potential energy in kBT units.
// Implementations should map non-finite geometries to NaN instead of
// failing, so a whole batch is never lost to one bad sample; see
// RegularizeEnergy for the caller-side handling.
type EnergyModel interface {
	Energies(cart *mat.Dense) ([]float64, error)
}

// RegularizeEnergy caps and reshapes raw energies so downstream training is
// robust to the non-finite values that degenerate geometries produce:
// non-finite energies become max, everything is capped at max, and the
// result grows logarithmically above cut while staying linear below it.
func RegularizeEnergy(energies []float64, cut, max float64) []float64 {
	out := make([]float64, len(energies))
	for i, e := range energies {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			e = max
		}
		if e > max {
			e = max
		}
		if e >= cut {
			e = math.Log(e-cut+1) + cut
		}
		out[i] = e
	}
	return out
}
