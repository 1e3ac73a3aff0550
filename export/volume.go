package export

import (
	"os"
	"path/filepath"
)

// nearestExisting returns path or its closest ancestor that exists.
func nearestExisting(path string) (string, error) {
	current, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(current); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return current, nil
		}
		current = parent
	}
}
