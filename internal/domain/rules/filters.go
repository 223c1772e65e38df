package rules

const (
	// AgeFloor and AgeCeiling bound the configurable age range.
	AgeFloor   = 18
	AgeCeiling = 65

	// UnboundedDistanceMiles is the sentinel meaning "no distance cap".
	UnboundedDistanceMiles = 100

	DefaultAgeMin           = 18
	DefaultAgeMax           = 35
	DefaultMaxDistanceMiles = 25

	DiscoveryPageSize = 20
)

// ValidAgeRange reports whether [min,max] is a usable filter range:
// strictly ordered and inside the global bounds.
func ValidAgeRange(min, max int) bool {
	return min >= AgeFloor && max <= AgeCeiling && min < max
}

// ValidMaxDistance accepts 1..UnboundedDistanceMiles; the top value doubles
// as the "unbounded" sentinel.
func ValidMaxDistance(miles int) bool {
	return miles >= 1 && miles <= UnboundedDistanceMiles
}

// DistanceUnbounded reports whether the configured cap disables distance
// filtering.
func DistanceUnbounded(miles int) bool {
	return miles >= UnboundedDistanceMiles
}

// SharesEthnicity reports whether a candidate passes a non-empty ethnicity
// preference set: at least one shared tag. An empty preference set means no
// restriction and always passes.
func SharesEthnicity(candidate, preferred []string) bool {
	if len(preferred) == 0 {
		return true
	}
	for _, want := range preferred {
		for _, have := range candidate {
			if want == have {
				return true
			}
		}
	}
	return false
}
