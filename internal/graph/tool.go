package graph

// ToolKind discriminates the tool variants. The emitter dispatches on this
// tag instead of downcasting.
type ToolKind int

const (
	ToolKindC ToolKind = iota
	ToolKindGeneral
	ToolKindRust
	ToolKindSwift
)

// PCHType is the precompiled-header dialect a C tool supports.
type PCHType int

const (
	PCHNone PCHType = iota
	PCHGCC
	PCHMSVC
)

// Tool name constants. Which names are valid depends on the tool kind.
const (
	ToolNone = ""

	ToolCc        = "cc"
	ToolCxx       = "cxx"
	ToolCxxModule = "cxx_module"
	ToolObjC      = "objc"
	ToolObjCxx    = "objcxx"
	ToolAsm       = "asm"
	ToolAlink     = "alink"
	ToolSolink    = "solink"
	ToolLink      = "link"

	ToolStamp = "stamp"
	ToolCopy  = "copy"

	ToolSwift = "swift"

	ToolRustBin   = "rust_bin"
	ToolRustRlib  = "rust_rlib"
	ToolRustMacro = "rust_macro"
)

// CToolParams carries the C-family-specific tool attributes.
type CToolParams struct {
	PrecompiledHeaderType PCHType

	LibSwitch          string // e.g. "-l"
	LibDirSwitch       string // e.g. "-L"
	FrameworkSwitch    string // e.g. "-framework "
	FrameworkDirSwitch string // e.g. "-F"
	SwiftModuleSwitch  string // e.g. "-Wl,-add_ast_path,"
}

// SwiftToolParams carries the Swift compile tool attributes.
type SwiftToolParams struct {
	// PartialOutputs are per-source output templates used when whole-module
	// optimization is off.
	PartialOutputs SubstitutionList
}

// RustToolParams carries the Rust tool attributes.
type RustToolParams struct {
	DylibSwitch string
	RlibSwitch  string
}

// Tool describes one (toolchain, tool-kind) entry: the command template, the
// output templates and the supported substitutions. A Tool is immutable once
// its toolchain is complete.
type Tool struct {
	Kind ToolKind
	Name string

	Command     string
	Description string

	Outputs        SubstitutionList
	Depfile        string
	DepsFormat     string // "gcc" or "msvc"
	Rspfile        string
	RspfileContent string

	OutputPrefix           string
	DefaultOutputExtension string // includes the leading "." if nonempty
	DefaultOutputDir       SubstitutionPattern

	Pool string

	// Substitutions used by the command and output templates.
	Substitutions SubstitutionBits

	C     *CToolParams
	Swift *SwiftToolParams
	Rust  *RustToolParams
}

// AsC returns the C params when this is a C tool, else nil.
func (t *Tool) AsC() *CToolParams {
	if t.Kind == ToolKindC {
		return t.C
	}
	return nil
}

// AsSwift returns the Swift params when this is a Swift tool, else nil.
func (t *Tool) AsSwift() *SwiftToolParams {
	if t.Kind == ToolKindSwift {
		return t.Swift
	}
	return nil
}

// ToolForSourceType maps a source type to the name of the tool that compiles
// it. Types with no compile step map to ToolNone.
func ToolForSourceType(t SourceType) string {
	switch t {
	case SourceC:
		return ToolCc
	case SourceCpp:
		return ToolCxx
	case SourceModuleMap:
		return ToolCxxModule
	case SourceM:
		return ToolObjC
	case SourceMM:
		return ToolObjCxx
	case SourceS:
		return ToolAsm
	case SourceSwift:
		return ToolSwift
	}
	return ToolNone
}

// ToolForTargetFinalOutput maps the target's output type to the tool that
// produces its final artifact.
func ToolForTargetFinalOutput(t *Target) string {
	switch t.Type {
	case TargetExecutable:
		return ToolLink
	case TargetSharedLibrary, TargetLoadableModule:
		return ToolSolink
	case TargetStaticLibrary:
		return ToolAlink
	case TargetRustLibrary:
		return ToolRustRlib
	case TargetRustProcMacro:
		return ToolRustMacro
	}
	return ToolStamp
}
