package errors

import "github.com/joe/treesync/internal/taxonomy"

// CategoryFor maps a taxonomy.ErrKind — the purely-numeric classification
// the pipeline's counters use — onto the ErrorCategory this package's
// ActionableError values carry for human-facing suggestions. The two
// classifications serve different audiences (tallying vs. remediation)
// and are kept separate; this is their one connection point.
func CategoryFor(kind taxonomy.ErrKind) ErrorCategory {
	switch kind {
	case taxonomy.ErrCopy:
		return CategoryCopy
	case taxonomy.ErrRemove:
		return CategoryDelete
	case taxonomy.Open, taxonomy.Read, taxonomy.Status, taxonomy.SymlinkStatus, taxonomy.Exists:
		return CategoryPath
	case taxonomy.Access:
		return CategoryPermission
	case taxonomy.CreateDirectory, taxonomy.ErrSize, taxonomy.DirIterMake, taxonomy.DirIterInc, taxonomy.UnsupportedType:
		return CategoryUnknown
	default:
		return CategoryUnknown
	}
}
