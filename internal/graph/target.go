package graph

// TargetType is the output type of a resolved target.
type TargetType int

const (
	TargetUnknown TargetType = iota
	TargetGroup
	TargetExecutable
	TargetSharedLibrary
	TargetLoadableModule
	TargetStaticLibrary
	TargetSourceSet
	TargetAction
	TargetActionForeach
	TargetCopy
	TargetRustLibrary
	TargetRustProcMacro
)

func (t TargetType) String() string {
	switch t {
	case TargetGroup:
		return "group"
	case TargetExecutable:
		return "executable"
	case TargetSharedLibrary:
		return "shared_library"
	case TargetLoadableModule:
		return "loadable_module"
	case TargetStaticLibrary:
		return "static_library"
	case TargetSourceSet:
		return "source_set"
	case TargetAction:
		return "action"
	case TargetActionForeach:
		return "action_foreach"
	case TargetCopy:
		return "copy"
	case TargetRustLibrary:
		return "rust_library"
	case TargetRustProcMacro:
		return "rust_proc_macro"
	}
	return "unknown"
}

// SwiftValues holds the Swift-module data for a target.
type SwiftValues struct {
	ModuleName       string
	ModuleOutputFile OutputFile

	// Modules are the Swift-module targets this target imports.
	Modules []*Target
}

// Target is one resolved node of the build graph. All fields are filled
// before emission starts and never mutated afterwards, so multiple emitters
// may read the same graph concurrently.
type Target struct {
	Label    Label
	Type     TargetType
	Settings *BuildSettings

	Toolchain *Toolchain

	Sources []SourceFile

	// Inputs are non-source prerequisites (scripts, data read at compile
	// time) that compiles truly depend on.
	Inputs []SourceFile

	PublicDeps  []*Target
	PrivateDeps []*Target
	DataDeps    []*Target

	OwnValues ConfigValues
	Configs   []*Config

	// OutputNameOverride replaces the label name in artifact paths.
	OutputNameOverride string
	OutputExtension    string
	OutputExtensionSet bool
	OutputDir          string

	CompleteStaticLib bool

	// FrameworkBundle marks targets that assemble a framework bundle;
	// dependents relink when the bundle's stamp changes.
	FrameworkBundle bool

	Swift SwiftValues

	// InheritedLibraries is the ordered transitive closure of linkable
	// libraries, in the order the graph discovered them.
	InheritedLibraries []*Target

	sourceTypes SourceTypeSet

	linkOutputFile       OutputFile
	dependencyOutputFile OutputFile

	classified    ClassifiedDeps
	hasClassified bool
}

// OutputName returns the artifact base name without any tool prefix.
func (t *Target) OutputName() string {
	if t.OutputNameOverride != "" {
		return t.OutputNameOverride
	}
	return t.Label.Name
}

// SourceTypesUsed returns the set of source types present in Sources.
// Resolve must have run.
func (t *Target) SourceTypesUsed() *SourceTypeSet { return &t.sourceTypes }

// LinkedDeps returns the public then private dependencies, in declaration
// order.
func (t *Target) LinkedDeps() []*Target {
	deps := make([]*Target, 0, len(t.PublicDeps)+len(t.PrivateDeps))
	deps = append(deps, t.PublicDeps...)
	deps = append(deps, t.PrivateDeps...)
	return deps
}

// IsLinkable reports whether dependents link this target's output.
func (t *Target) IsLinkable() bool {
	switch t.Type {
	case TargetStaticLibrary, TargetSharedLibrary, TargetRustLibrary, TargetRustProcMacro:
		return true
	}
	return false
}

// IsFinal reports whether this target's output is an end artifact rather
// than an intermediate linked into something else.
func (t *Target) IsFinal() bool {
	switch t.Type {
	case TargetExecutable, TargetSharedLibrary, TargetLoadableModule:
		return true
	case TargetStaticLibrary:
		return t.CompleteStaticLib
	}
	return false
}

// BuildsSwiftModule reports whether this target compiles Swift sources into
// a module of its own.
func (t *Target) BuildsSwiftModule() bool {
	return t.sourceTypes.SwiftSourceUsed() && !t.Swift.ModuleOutputFile.IsNull()
}

// LinkOutputFile is the file dependents pass to their linker. Empty for
// non-linkable targets.
func (t *Target) LinkOutputFile() OutputFile { return t.linkOutputFile }

// DependencyOutputFile is the file dependents depend on to consider this
// target built. For shared libraries this is the table-of-contents file,
// which only changes when the ABI does.
func (t *Target) DependencyOutputFile() OutputFile { return t.dependencyOutputFile }

// Resolve computes the derived state: source-type set and the link and
// dependency output files. It must run once, before emission.
func (t *Target) Resolve() {
	t.sourceTypes = NewSourceTypeSet()
	for _, s := range t.Sources {
		t.sourceTypes.Set(s.Type())
	}

	switch t.Type {
	case TargetExecutable, TargetStaticLibrary, TargetRustLibrary, TargetRustProcMacro:
		tool := t.Toolchain.Tool(ToolForTargetFinalOutput(t))
		if tool != nil && len(tool.Outputs) > 0 {
			outs := ApplyListToLinkerAsOutputFile(t, tool, tool.Outputs)
			t.linkOutputFile = outs[0]
			t.dependencyOutputFile = outs[0]
		}
	case TargetSharedLibrary, TargetLoadableModule:
		tool := t.Toolchain.Tool(ToolForTargetFinalOutput(t))
		if tool != nil && len(tool.Outputs) > 0 {
			outs := ApplyListToLinkerAsOutputFile(t, tool, tool.Outputs)
			t.linkOutputFile = outs[0]
			// The second output, when present, is the TOC file dependents
			// use to avoid relinking on every rebuild of the library.
			if len(outs) > 1 {
				t.dependencyOutputFile = outs[1]
			} else {
				t.dependencyOutputFile = outs[0]
			}
		}
	default:
		// Groups, source sets, actions and copies are represented to
		// dependents by their stamp file.
		t.dependencyOutputFile = MakeOutputFile(
			targetOutDir(t) + "/" + t.OutputName() + ".stamp")
	}
}

// OutputFilesForSource resolves the tool and output files compiling one
// source of this target. ok is false when no tool applies (headers, def
// files, object files); the emitter gives such sources no compile edge and
// does not link object-file sources.
func (t *Target) OutputFilesForSource(source SourceFile) (toolName string, outputs []OutputFile, ok bool) {
	name := ToolForSourceType(source.Type())
	if name == ToolNone {
		return ToolNone, nil, false
	}
	tool := t.Toolchain.Tool(name)
	if tool == nil || len(tool.Outputs) == 0 {
		return ToolNone, nil, false
	}
	return name, ApplyListToCompilerAsOutputFile(t, source, tool.Outputs), true
}

// ModuleMapFromSources returns the target's module-map source, if any.
func (t *Target) ModuleMapFromSources() (SourceFile, bool) {
	for _, s := range t.Sources {
		if s.IsModuleMapType() {
			return s, true
		}
	}
	return SourceFile{}, false
}

// ObjectFiles enumerates the object files this target's sources compile to,
// including MSVC-dialect PCH objects. Used for source sets, whose objects
// are linked by dependents.
func (t *Target) ObjectFiles() []OutputFile {
	var objs []OutputFile
	for _, source := range t.Sources {
		_, outputs, ok := t.OutputFilesForSource(source)
		if !ok || source.IsModuleMapType() {
			continue
		}
		objs = append(objs, outputs[0])
	}
	objs = append(objs, t.msvcPCHObjectFiles()...)
	return objs
}

func (t *Target) msvcPCHObjectFiles() []OutputFile {
	var objs []OutputFile
	hasPCH := false
	t.EachConfigValues(func(cv *ConfigValues) {
		if cv.HasPrecompiledHeaders() {
			hasPCH = true
		}
	})
	if !hasPCH {
		return nil
	}
	for _, name := range []string{ToolCc, ToolCxx, ToolObjC, ToolObjCxx} {
		tool := t.Toolchain.ToolAsC(name)
		if tool == nil || tool.C.PrecompiledHeaderType != PCHMSVC {
			continue
		}
		if !t.sourceTypes.Get(sourceTypeForCTool(name)) {
			continue
		}
		objs = append(objs, PCHOutputFiles(t, name)...)
	}
	return objs
}

func sourceTypeForCTool(name string) SourceType {
	switch name {
	case ToolCc:
		return SourceC
	case ToolCxx:
		return SourceCpp
	case ToolObjC:
		return SourceM
	case ToolObjCxx:
		return SourceMM
	}
	return SourceUnknown
}
