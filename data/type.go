package data

// EntryKind identifies whether a tree entry is a file or a directory.
type EntryKind int

const (
	KindFile      EntryKind = iota // Regular file
	KindDirectory                  // Directory
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// IsDir reports whether k describes a directory.
func (k EntryKind) IsDir() bool {
	return k == KindDirectory
}
