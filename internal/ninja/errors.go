package ninja

import "fmt"

// ErrorKind enumerates the fatal conditions emission can hit. All abort the
// current target's emit; none crash the process.
type ErrorKind int

const (
	// ErrDuplicateObject: two sources map to the same object path.
	ErrDuplicateObject ErrorKind = iota
	// ErrMissingModuleMapOutput: a module-map source produced zero or more
	// than one output.
	ErrMissingModuleMapOutput
	// ErrMissingLinkOutput: a linkable dep has an empty link-output path.
	ErrMissingLinkOutput
	// ErrUnknownPCHType: a PCH edge was requested for a tool whose dialect
	// is none.
	ErrUnknownPCHType
)

// EmitError is a structured emission failure naming the target and, when
// applicable, the offending path.
type EmitError struct {
	Kind        ErrorKind
	TargetLabel string
	Path        string
	Remediation string
}

func (e *EmitError) Error() string {
	switch e.Kind {
	case ErrDuplicateObject:
		s := fmt.Sprintf("Duplicate object file: the target %s generates two object files with the same name:\n  %s",
			e.TargetLabel, e.Path)
		if e.Remediation != "" {
			s += "\n" + e.Remediation
		}
		return s
	case ErrMissingModuleMapOutput:
		return fmt.Sprintf("Expected exactly one output for module map %s in target %s",
			e.Path, e.TargetLabel)
	case ErrMissingLinkOutput:
		return fmt.Sprintf("No link output file for %s", e.TargetLabel)
	case ErrUnknownPCHType:
		return fmt.Sprintf("Cannot write a PCH command with no PCH header type in target %s",
			e.TargetLabel)
	}
	return fmt.Sprintf("emit error in target %s", e.TargetLabel)
}

const duplicateObjectRemediation = "It could be you accidentally have a file listed twice in the\n" +
	"sources. Or, depending on how your toolchain maps sources to\n" +
	"object files, two source files with the same name in different\n" +
	"directories could map to the same object file.\n" +
	"\n" +
	"In the latter case, either rename one of the files or move one of\n" +
	"the sources to a separate source_set to avoid them both being in\n" +
	"the same target."
