package hrtimer

// Diff returns a-b as a signed value. a and b must be within 2^63 of each
// other; the result is meaningless otherwise and the bound is not checked.
func Diff(a, b uint64) int64 {
	return int64(a + (^b + 1))
}
