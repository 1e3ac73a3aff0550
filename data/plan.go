package data

// Action tells an engine what to do with a plan entry.
type Action int

const (
	ActionCreateDirectory Action = iota // Create a directory on the target
	ActionWriteFile                     // Copy, link or compress a file
)

func (a Action) String() string {
	switch a {
	case ActionCreateDirectory:
		return "create-directory"
	case ActionWriteFile:
		return "write-file"
	default:
		return "unknown"
	}
}

// Policy decides how an engine treats a target that already exists.
type Policy int

const (
	PolicyOverwrite Policy = iota // Remove the existing target and recreate it
	PolicyPreserve                // Keep the existing target, count it as preserved
)

func (p Policy) String() string {
	switch p {
	case PolicyOverwrite:
		return "overwrite"
	case PolicyPreserve:
		return "preserve"
	default:
		return "unknown"
	}
}

// PlanEntry is one step of an export plan.
type PlanEntry struct {
	// Relative target path with forward slashes
	Path string `json:"path"`

	// Absolute source path
	Source string `json:"source"`

	// Name of the mod providing the source
	Mod string `json:"mod"`

	Kind   EntryKind `json:"kind"`
	Action Action    `json:"action"`
	Policy Policy    `json:"policy"`
}

// Plan is the ordered, filtered list of entries handed to exactly one engine run.
type Plan struct {
	Entries []PlanEntry `json:"entries"`

	// Relative paths removed by exclusion filters
	Filtered []string `json:"filtered,omitempty"`
}

// Len returns the number of entries the engine has to process.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}

	return len(p.Entries)
}

// Empty reports whether the plan has nothing to export.
func (p *Plan) Empty() bool {
	return p.Len() == 0
}

// Files returns the number of file entries.
func (p *Plan) Files() int {
	if p == nil {
		return 0
	}

	n := 0
	for _, entry := range p.Entries {
		if entry.Action == ActionWriteFile {
			n++
		}
	}

	return n
}
