package analyzer

// Truncate keeps the first max runes of s and appends marker when s is longer.
// Shorter input is returned unchanged. A non-positive max disables truncation.
func Truncate(s string, max int, marker string) string {
	if max <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i] + marker
		}
		count++
	}
	return s
}
