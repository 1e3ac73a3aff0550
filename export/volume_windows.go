//go:build windows

package export

import (
	"errors"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

// IsCrossVolume reports whether err was caused by linking across volumes.
func IsCrossVolume(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_SAME_DEVICE)
}

// SameVolume reports whether a and b are stored on the same volume.
func SameVolume(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}

	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}

	return strings.EqualFold(filepath.VolumeName(absA), filepath.VolumeName(absB)), nil
}
