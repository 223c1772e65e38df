package rules

import "strings"

// AbsolutePhotoRef reports whether a stored photo reference is already a
// full URL rather than an object key that needs presigning.
func AbsolutePhotoRef(ref string) bool {
	return strings.Contains(ref, "://")
}
