package domain

import (
	"fmt"
	"math"
	"strings"
)

// Arc names a target energy-versus-position curve.
type Arc string

const (
	ArcBalanced   Arc = "balanced"
	ArcBuild      Arc = "build"
	ArcEarlyBuild Arc = "early_build"
	ArcJourney    Arc = "journey"
	ArcEnergize   Arc = "energize"
	ArcWindDown   Arc = "wind_down"
)

// Arcs lists every known arc.
var Arcs = []Arc{ArcBalanced, ArcBuild, ArcEarlyBuild, ArcJourney, ArcEnergize, ArcWindDown}

// ParseArc resolves a name to a known Arc. Matching ignores case and surrounding space.
func ParseArc(name string) (Arc, error) {
	a := Arc(strings.ToLower(strings.TrimSpace(name)))
	if a.Valid() {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownArc, name)
}

// Valid reports whether a is one of the known arcs.
func (a Arc) Valid() bool {
	switch a {
	case ArcBalanced, ArcBuild, ArcEarlyBuild, ArcJourney, ArcEnergize, ArcWindDown:
		return true
	}
	return false
}

// TargetEnergy returns the target energy at position i of n.
// Unknown arcs are treated as balanced.
func (a Arc) TargetEnergy(i, n int) float64 {
	if n <= 0 {
		return 0.5
	}
	p := float64(i) / float64(n)

	switch a {
	case ArcBuild:
		return 0.3 + 0.7*p
	case ArcEarlyBuild:
		mid := n / 2
		if i < mid {
			return 0.3 + 0.5*float64(i)/float64(mid)
		}
		return 0.8 + 0.1*float64(i-mid)/float64(n-mid)
	case ArcJourney:
		if p < 0.6 {
			return 0.4 + 0.6*p/0.6
		}
		return 1.0 - 0.5*(p-0.6)/0.4
	case ArcEnergize:
		return 0.7 + 0.3*math.Min(float64(i)/3, 1)
	case ArcWindDown:
		return 0.8 - 0.5*p
	default:
		return 0.5
	}
}

// Curve returns the n target energies of the arc.
func (a Arc) Curve(n int) []float64 {
	if n <= 0 {
		return nil
	}
	curve := make([]float64, n)
	for i := range curve {
		curve[i] = a.TargetEnergy(i, n)
	}
	return curve
}
