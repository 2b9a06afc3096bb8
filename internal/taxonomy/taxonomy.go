// Package taxonomy defines the small closed vocabularies shared across the
// pipeline: which side an entry belongs to, which mode the run is in, the
// kinds of mismatch a comparison can surface, and the kinds of error a
// filesystem operation can fail with.
package taxonomy

import "strings"

// Side attributes an entry or a counter event to one of the two trees.
type Side int

const (
	Source Side = iota
	Destination
)

func (s Side) String() string {
	if s == Source {
		return "source"
	}
	return "destination"
}

// Mode selects what the pipeline does with a detected difference.
type Mode int

const (
	Compare Mode = iota
	Copy
	Cull
)

func (m Mode) String() string {
	switch m {
	case Copy:
		return "copy"
	case Cull:
		return "cull"
	default:
		return "compare"
	}
}

// Mismatch is a detected difference between source and destination. It is
// distinct from an Error: a mismatch is an expected outcome of comparison,
// not a failure to complete the comparison.
type Mismatch int

const (
	Missing Mismatch = iota
	Extra
	Size
	Modified
)

func (m Mismatch) String() string {
	switch m {
	case Missing:
		return "Missing"
	case Extra:
		return "Extra"
	case Size:
		return "Size"
	case Modified:
		return "Modified"
	default:
		return "Unknown"
	}
}

// ErrKind enumerates the specific ways a per-entry filesystem operation can
// fail. It is a classification for counting and logging, not a Go error
// type in its own right — see pkg/errors.CategoryFor for how a kind is
// mapped to the suggestions shown in an error event's detail.
type ErrKind int

const (
	DirIterMake ErrKind = iota
	DirIterInc
	Status
	SymlinkStatus
	ErrSize
	UnsupportedType
	Open
	Read
	CreateDirectory
	ErrCopy
	ErrRemove
	Exists
	Access // reclassification target, never produced directly by callers
)

func (k ErrKind) String() string {
	switch k {
	case DirIterMake:
		return "DirIterMake"
	case DirIterInc:
		return "DirIterInc"
	case Status:
		return "Status"
	case SymlinkStatus:
		return "SymlinkStatus"
	case ErrSize:
		return "Size"
	case UnsupportedType:
		return "UnsupportedType"
	case Open:
		return "Open"
	case Read:
		return "Read"
	case CreateDirectory:
		return "CreateDirectory"
	case ErrCopy:
		return "Copy"
	case ErrRemove:
		return "Remove"
	case Exists:
		return "Exists"
	case Access:
		return "Access"
	default:
		return "Unknown"
	}
}

// accessEligible holds the ErrKinds eligible for reclassification into
// the Access bucket.
var accessEligible = map[ErrKind]bool{
	Exists:        true,
	Status:        true,
	SymlinkStatus: true,
	ErrSize:       true,
	Open:          true,
	Read:          true,
}

// IsAccessError reports whether kind is eligible for access-error
// reclassification and msg's text reads like an OS permission denial.
// Matching is substring-based against "denied"/"permitted", mirroring the
// source tool's recognition (case-insensitive, since Go's os errors vary in
// capitalization across platforms).
func IsAccessError(kind ErrKind, msg string) bool {
	if !accessEligible[kind] {
		return false
	}

	lower := strings.ToLower(msg)

	return strings.Contains(lower, "denied") || strings.Contains(lower, "permitted")
}

// Color is a display-only hint; it carries no meaning to the pipeline core.
// internal/output is the sole consumer, rendering it via lipgloss rather
// than raw ANSI escapes.
type Color int

const (
	ColorDefault Color = iota
	ColorGray
	ColorGreen
	ColorYellow
	ColorRed
	ColorDisabled
)
