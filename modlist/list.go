package modlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// State is the activation state of a modlist.txt line.
type State int

const (
	StateEnabled   State = iota // "+name"
	StateDisabled               // "-name"
	StateUnmanaged              // "*name", provided by the game itself
)

func (s State) String() string {
	switch s {
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	case StateUnmanaged:
		return "unmanaged"
	default:
		return "unknown"
	}
}

const separatorSuffix = "_separator"

// ListEntry is one mod line of a modlist.txt file.
type ListEntry struct {
	Name  string
	State State
}

// Separator reports whether the entry is a separator marker.
func (e ListEntry) Separator() bool {
	return strings.HasSuffix(e.Name, separatorSuffix)
}

// ParseList reads a modlist.txt file. Entries are returned in file order,
// which is highest priority first.
func ParseList(r io.Reader) ([]ListEntry, error) {
	var entries []ListEntry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var state State
		switch line[0] {
		case '+':
			state = StateEnabled
		case '-':
			state = StateDisabled
		case '*':
			state = StateUnmanaged
		default:
			return nil, fmt.Errorf("line %d: unknown mod state in '%s'", lineNo, line)
		}

		name := strings.TrimSpace(line[1:])
		if name == "" {
			return nil, fmt.Errorf("line %d: missing mod name", lineNo)
		}

		entries = append(entries, ListEntry{Name: name, State: state})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
