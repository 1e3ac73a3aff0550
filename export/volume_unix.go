//go:build unix

package export

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsCrossVolume reports whether err was caused by linking across devices.
func IsCrossVolume(err error) bool {
	return errors.Is(err, unix.EXDEV)
}

// SameVolume reports whether a and b are stored on the same device.
// Paths that do not exist yet are compared by their nearest existing ancestor.
func SameVolume(a, b string) (bool, error) {
	devA, err := device(a)
	if err != nil {
		return false, err
	}

	devB, err := device(b)
	if err != nil {
		return false, err
	}

	return devA == devB, nil
}

func device(path string) (uint64, error) {
	existing, err := nearestExisting(path)
	if err != nil {
		return 0, err
	}

	var st unix.Stat_t
	if err := unix.Stat(existing, &st); err != nil {
		return 0, err
	}

	return uint64(st.Dev), nil
}
