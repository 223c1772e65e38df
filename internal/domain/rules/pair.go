package rules

// CanonicalPair orders two user ids so the lower one comes first. Match rows
// are keyed on this ordering, which makes the pair key unique regardless of
// which side liked first.
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
