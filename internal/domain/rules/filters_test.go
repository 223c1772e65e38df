package rules

import "testing"

func TestValidAgeRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		want     bool
	}{
		{name: "typical", min: 25, max: 40, want: true},
		{name: "full span", min: 18, max: 65, want: true},
		{name: "equal bounds rejected", min: 30, max: 30, want: false},
		{name: "inverted", min: 40, max: 25, want: false},
		{name: "below floor", min: 17, max: 30, want: false},
		{name: "above ceiling", min: 20, max: 66, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidAgeRange(tc.min, tc.max); got != tc.want {
				t.Fatalf("ValidAgeRange(%d, %d) = %v, want %v", tc.min, tc.max, got, tc.want)
			}
		})
	}
}

func TestDistanceUnbounded(t *testing.T) {
	if DistanceUnbounded(99) {
		t.Fatal("99 miles should be a real cap")
	}
	if !DistanceUnbounded(UnboundedDistanceMiles) {
		t.Fatal("sentinel value should disable the distance filter")
	}
}

func TestSharesEthnicity(t *testing.T) {
	tests := []struct {
		name      string
		candidate []string
		preferred []string
		want      bool
	}{
		{name: "empty preference passes everyone", candidate: []string{"ng"}, preferred: nil, want: true},
		{name: "shared tag", candidate: []string{"gh", "ng"}, preferred: []string{"ng", "ke"}, want: true},
		{name: "no overlap", candidate: []string{"gh"}, preferred: []string{"ke"}, want: false},
		{name: "empty candidate against preference", candidate: nil, preferred: []string{"ke"}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SharesEthnicity(tc.candidate, tc.preferred); got != tc.want {
				t.Fatalf("SharesEthnicity(%v, %v) = %v, want %v", tc.candidate, tc.preferred, got, tc.want)
			}
		})
	}
}
