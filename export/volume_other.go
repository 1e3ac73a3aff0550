//go:build !unix && !windows

package export

func IsCrossVolume(err error) bool {
	return false
}

// SameVolume always reports true, leaving the decision to the link call.
func SameVolume(a, b string) (bool, error) {
	return true, nil
}
