package domain

// Classify assigns the alert tier for a magnitude/depth pair. Rules are
// evaluated in order, first match wins. Depth comparisons are strict
// less-than; magnitude comparisons are greater-or-equal.
//
//	mag >= 8.0                      critical
//	mag >= 7.0                      critical
//	mag >= 6.0                      warning
//	mag >= 5.0 and depth < 70 km    warning
//	mag >= 4.5 and depth < 30 km    advisory
//	otherwise                       none
//
// Shallow quakes shake harder at the surface, which is why the two lower
// bands require a depth cutoff.
func Classify(magnitude, depthKm float64) Priority {
	switch {
	case magnitude >= 8.0:
		return PriorityCritical
	case magnitude >= 7.0:
		return PriorityCritical
	case magnitude >= 6.0:
		return PriorityWarning
	case magnitude >= 5.0 && depthKm < 70:
		return PriorityWarning
	case magnitude >= 4.5 && depthKm < 30:
		return PriorityAdvisory
	default:
		return PriorityNone
	}
}
