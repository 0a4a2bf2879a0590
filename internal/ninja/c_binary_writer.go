package ninja

import (
	"fmt"
	"strings"

	"github.com/TritiumXs/gn/internal/graph"
	"github.com/TritiumXs/gn/internal/sched"
)

// moduleDep records one Clang module visible to this target's compiles:
// either its own or one exported by a linked dependency.
type moduleDep struct {
	modulemap  graph.SourceFile
	moduleName string
	pcm        graph.OutputFile
	isSelf     bool
}

// moduleDepsInformation collects the module records for the target itself
// (when it exports a module map) and for every linked dep that does.
func moduleDepsInformation(t *graph.Target) ([]moduleDep, error) {
	var deps []moduleDep

	add := func(cur *graph.Target, isSelf bool) error {
		mm, ok := cur.ModuleMapFromSources()
		if !ok {
			return &EmitError{Kind: ErrMissingModuleMapOutput, TargetLabel: cur.Label.String()}
		}
		_, outputs, ok := cur.OutputFilesForSource(mm)
		if !ok || len(outputs) != 1 {
			return &EmitError{
				Kind:        ErrMissingModuleMapOutput,
				TargetLabel: cur.Label.String(),
				Path:        mm.Value(),
			}
		}
		deps = append(deps, moduleDep{
			modulemap:  mm,
			moduleName: cur.Label.String(),
			pcm:        outputs[0],
			isSelf:     isSelf,
		})
		return nil
	}

	if t.SourceTypesUsed().Get(graph.SourceModuleMap) {
		if err := add(t, true); err != nil {
			return nil, err
		}
	}
	for _, dep := range t.LinkedDeps() {
		// A .modulemap source means the dependency is modularized.
		if dep.SourceTypesUsed().Get(graph.SourceModuleMap) {
			if err := add(dep, false); err != nil {
				return nil, err
			}
		}
	}
	return deps, nil
}

// CBinaryWriter emits the build rules for one C-family binary target:
// compiles, precompiled headers, Clang modules and the final link or stamp.
type CBinaryWriter struct {
	binaryWriter
	tool *graph.Tool
}

func NewCBinaryWriter(ctx *sched.Context, target *graph.Target, out *strings.Builder) *CBinaryWriter {
	return &CBinaryWriter{
		binaryWriter: newBinaryWriter(ctx, target, out),
		tool:         target.Toolchain.Tool(graph.ToolForTargetFinalOutput(target)),
	}
}

// Run emits the whole block for the target. A failure is recorded on the
// shared context and aborts this target only; the caller may keep emitting
// other targets.
func (w *CBinaryWriter) Run() error {
	if err := w.run(); err != nil {
		w.ctx.FailWithError(err)
		return err
	}
	return nil
}

func (w *CBinaryWriter) run() error {
	moduleDeps, err := moduleDepsInformation(w.target)
	if err != nil {
		return err
	}

	w.writeCompilerVars(moduleDeps)

	numStampUses := len(w.target.Sources)

	inputDeps := w.writeInputsAndGetDep(numStampUses)

	// Order-only is enough for upstream actions: before depfiles exist the
	// upstream outputs only need to be present, and afterwards the compiler
	// reports the real header deps. Implicit deps here would recompile the
	// world whenever an unrelated upstream action reran.
	orderOnlyDeps := w.writeInputDepsStampAndGetDep(numStampUses)

	// GCC-dialect .gch files are not object files but still become implicit
	// deps of compiles, so they are collected separately from the MSVC
	// PCH objects that flow into the link.
	pchObjFiles, pchOtherFiles, err := w.writePCHCommands(inputDeps, orderOnlyDeps)
	if err != nil {
		return err
	}
	pchFiles := pchObjFiles
	if len(pchFiles) == 0 {
		pchFiles = pchOtherFiles
	}

	var objFiles []graph.OutputFile
	var otherFiles []graph.SourceFile
	if !w.target.SourceTypesUsed().SwiftSourceUsed() {
		objFiles, otherFiles, err = w.writeSources(pchFiles, inputDeps, orderOnlyDeps, moduleDeps)
	} else {
		objFiles, err = w.writeSwiftSources(inputDeps, orderOnlyDeps)
	}
	if err != nil {
		return err
	}

	// MSVC PCH objects link like any other object. The slice is empty on
	// GCC toolchains.
	objFiles = append(objFiles, pchObjFiles...)
	if err := w.checkDuplicateObjectFiles(objFiles); err != nil {
		return err
	}

	if w.target.Type == graph.TargetSourceSet {
		w.writeSourceSetStamp(objFiles)
		return nil
	}
	return w.writeLinkerStuff(objFiles, otherFiles, inputDeps)
}

func (w *CBinaryWriter) writeCompilerVars(moduleDeps []moduleDep) {
	w.writeCCompilerVars()

	if len(moduleDeps) > 0 {
		// Clang modules only work for C++ so far.
		st := w.target.SourceTypesUsed()
		if st.Get(graph.SourceCpp) || st.Get(graph.SourceModuleMap) {
			w.writeModuleDepsSubstitution(graph.SubstModuleDeps, moduleDeps, true)
			w.writeModuleDepsSubstitution(graph.SubstModuleDepsNoSelf, moduleDeps, false)
		}
	}

	w.writeSharedVars()
}

func (w *CBinaryWriter) writeModuleDepsSubstitution(sub graph.Substitution,
	moduleDeps []moduleDep, includeSelf bool) {
	if !w.target.Toolchain.SubstitutionBits().Has(sub) {
		return
	}
	write(w.out, sub.NinjaName(), " = -Xclang ", escapeCommand("-fmodules-embed-all-files"))
	for _, md := range moduleDeps {
		if !md.isSelf || includeSelf {
			write(w.out, " ", escapeCommand("-fmodule-file="), escapePath(md.pcm.Value()))
		}
	}
	writeln(w.out)
}

// pchTool pairs a language compile tool with the source type and flag
// variable its PCH edge overrides.
var pchTools = []struct {
	toolName   string
	sourceType graph.SourceType
	flagVar    string
	getFlags   func(*graph.ConfigValues) []string
	gccOnly    bool
}{
	{graph.ToolCc, graph.SourceC, "cflags_c",
		func(cv *graph.ConfigValues) []string { return cv.CFlagsC }, false},
	{graph.ToolCxx, graph.SourceCpp, "cflags_cc",
		func(cv *graph.ConfigValues) []string { return cv.CFlagsCc }, false},
	{graph.ToolObjC, graph.SourceM, "cflags_objc",
		func(cv *graph.ConfigValues) []string { return cv.CFlagsObjC }, true},
	{graph.ToolObjCxx, graph.SourceMM, "cflags_objcc",
		func(cv *graph.ConfigValues) []string { return cv.CFlagsObjCc }, true},
}

func (w *CBinaryWriter) writePCHCommands(inputDeps, orderOnlyDeps []graph.OutputFile) (objFiles, otherFiles []graph.OutputFile, err error) {
	hasPCH := false
	w.target.EachConfigValues(func(cv *graph.ConfigValues) {
		if cv.HasPrecompiledHeaders() {
			hasPCH = true
		}
	})
	if !hasPCH {
		return nil, nil, nil
	}

	for _, pt := range pchTools {
		tool := w.target.Toolchain.ToolAsC(pt.toolName)
		if tool == nil || tool.C.PrecompiledHeaderType == graph.PCHNone {
			continue
		}
		if pt.gccOnly && tool.C.PrecompiledHeaderType != graph.PCHGCC {
			continue
		}
		if !w.target.SourceTypesUsed().Get(pt.sourceType) {
			continue
		}
		switch tool.C.PrecompiledHeaderType {
		case graph.PCHMSVC:
			w.writeWindowsPCHCommand(pt.flagVar, pt.toolName, inputDeps, orderOnlyDeps, &objFiles)
		case graph.PCHGCC:
			w.writeGCCPCHCommand(pt.flagVar, pt.toolName, pt.getFlags, inputDeps, orderOnlyDeps, &otherFiles)
		default:
			return nil, nil, &EmitError{Kind: ErrUnknownPCHType, TargetLabel: w.target.Label.String()}
		}
	}
	return objFiles, otherFiles, nil
}

func (w *CBinaryWriter) pchSource() graph.SourceFile {
	var src graph.SourceFile
	w.target.EachConfigValues(func(cv *graph.ConfigValues) {
		if src.IsNull() && cv.HasPrecompiledHeaders() {
			src = cv.PrecompiledSource
		}
	})
	return src
}

func (w *CBinaryWriter) pchHeader() string {
	var header string
	w.target.EachConfigValues(func(cv *graph.ConfigValues) {
		if header == "" && cv.HasPrecompiledHeaders() {
			header = cv.PrecompiledHeader
		}
	})
	return header
}

// writeGCCPCHCommand compiles the precompiled source to a language-specific
// .gch. The per-edge flag variable replaces the language flags with the
// target's own values plus the -x <lang>-header marker.
func (w *CBinaryWriter) writeGCCPCHCommand(flagVar, toolName string,
	getFlags func(*graph.ConfigValues) []string,
	inputDeps, orderOnlyDeps []graph.OutputFile, gchFiles *[]graph.OutputFile) {
	outputs := graph.PCHOutputFiles(w.target, toolName)
	if len(outputs) == 0 {
		return
	}
	*gchFiles = append(*gchFiles, outputs...)

	w.writeCompilerBuildLine([]graph.SourceFile{w.pchSource()}, inputDeps,
		orderOnlyDeps, toolName, outputs)

	write(w.out, "  ", flagVar, " =")
	for _, flag := range graph.FlagStrings(w.target, getFlags) {
		write(w.out, " ", escapeCommand(flag))
	}
	write(w.out, " -x ", graph.PCHHeaderLang(toolName))
	writeln(w.out)
	writeln(w.out)
}

// writeWindowsPCHCommand compiles the precompiled source into a .pch plus
// the object file ninja tracks for it. The per-edge variable appends /Yc so
// the same compile emits the header.
func (w *CBinaryWriter) writeWindowsPCHCommand(flagVar, toolName string,
	inputDeps, orderOnlyDeps []graph.OutputFile, objFiles *[]graph.OutputFile) {
	outputs := graph.PCHOutputFiles(w.target, toolName)
	if len(outputs) == 0 {
		return
	}
	*objFiles = append(*objFiles, outputs...)

	w.writeCompilerBuildLine([]graph.SourceFile{w.pchSource()}, inputDeps,
		orderOnlyDeps, toolName, outputs)

	write(w.out, "  ", flagVar, " =")
	write(w.out, " ${", flagVar, "}")
	write(w.out, " /Yc", w.pchHeader())
	writeln(w.out)
	writeln(w.out)
}

func (w *CBinaryWriter) writeSources(pchDeps, inputDeps, orderOnlyDeps []graph.OutputFile,
	moduleDeps []moduleDep) (objFiles []graph.OutputFile, otherFiles []graph.SourceFile, err error) {
	objFiles = make([]graph.OutputFile, 0, len(w.target.Sources))

	var deps []graph.OutputFile
	for _, source := range w.target.Sources {
		deps = deps[:0]

		toolName, toolOutputs, ok := w.target.OutputFilesForSource(source)
		if !ok {
			if source.IsDefType() {
				otherFiles = append(otherFiles, source)
			}
			continue // No output for this source.
		}

		deps = append(deps, inputDeps...)

		// Only take the PCH outputs matching this tool's language; a C
		// compile must not depend on the C++ PCH artifact and vice-versa.
		if tool := w.target.Toolchain.ToolAsC(toolName); tool != nil &&
			tool.C.PrecompiledHeaderType != graph.PCHNone {
			var wantExt string
			switch tool.C.PrecompiledHeaderType {
			case graph.PCHMSVC:
				wantExt = graph.WindowsPCHObjectExtension(toolName)
			case graph.PCHGCC:
				wantExt = graph.GCCPCHOutputExtension(toolName)
			}
			for _, dep := range pchDeps {
				if strings.HasSuffix(dep.Value(), wantExt) {
					deps = append(deps, dep)
				}
			}
		}

		// Module files from deps (and self, except when compiling the
		// module map: its own .pcm is this edge's output).
		for _, md := range moduleDeps {
			if toolOutputs[0] != md.pcm {
				deps = append(deps, md.pcm)
			}
		}

		w.writeCompilerBuildLine([]graph.SourceFile{source}, deps,
			orderOnlyDeps, toolName, toolOutputs)
		w.writePool(w.target.Toolchain.Tool(toolName))

		// A compiler may produce more than one output; only the first is
		// linked. Module maps yield a .pcm, which is not an object file.
		if !source.IsModuleMapType() {
			objFiles = append(objFiles, toolOutputs[0])
		}
	}

	writeln(w.out)
	return objFiles, otherFiles, nil
}

func (w *CBinaryWriter) writeSwiftSources(inputDeps, orderOnlyDeps []graph.OutputFile) (objFiles []graph.OutputFile, err error) {
	tool := w.target.Toolchain.ToolForSourceType(graph.SourceSwift)
	if tool == nil {
		return nil, fmt.Errorf("toolchain %s has no swift tool for target %s",
			w.target.Toolchain.Label.String(), w.target.Label.String())
	}

	swiftmoduleOutput := w.target.Swift.ModuleOutputFile

	// Swift sources compile as a single unit but can still produce several
	// outputs when whole-module optimization is off.
	additionalOutputs := make([]graph.OutputFile, 0)
	for _, out := range graph.ApplyListToLinkerAsOutputFile(w.target, tool, tool.Outputs) {
		if out == swiftmoduleOutput {
			continue
		}
		additionalOutputs = append(additionalOutputs, out)
		if out.AsSourceFile(w.target.Settings).IsObjectType() {
			objFiles = append(objFiles, out)
		}
	}

	if st := tool.AsSwift(); st != nil && len(st.PartialOutputs) > 0 {
		for _, source := range w.target.Sources {
			if !source.IsSwiftType() {
				continue
			}
			for _, out := range graph.ApplyListToCompilerAsOutputFile(w.target, source, st.PartialOutputs) {
				additionalOutputs = append(additionalOutputs, out)
				if out.AsSourceFile(w.target.Settings).IsObjectType() {
					objFiles = append(objFiles, out)
				}
			}
		}
	}

	swiftOrderOnly := make([]graph.OutputFile, 0, len(orderOnlyDeps)+len(w.target.Swift.Modules))
	seen := make(map[string]struct{}, cap(swiftOrderOnly))
	appendUnique := func(out graph.OutputFile) {
		if _, dup := seen[out.Value()]; dup {
			return
		}
		seen[out.Value()] = struct{}{}
		swiftOrderOnly = append(swiftOrderOnly, out)
	}
	for _, out := range orderOnlyDeps {
		appendUnique(out)
	}
	for _, mod := range w.target.Swift.Modules {
		appendUnique(mod.DependencyOutputFile())
	}

	w.writeCompilerBuildLine(w.target.Sources, inputDeps, swiftOrderOnly,
		tool.Name, []graph.OutputFile{swiftmoduleOutput})

	// The stamp tells ninja the partial outputs come from the same
	// invocation that produced the module file.
	if len(additionalOutputs) > 0 {
		writeln(w.out)
		w.writeCompilerBuildLine(
			[]graph.SourceFile{swiftmoduleOutput.AsSourceFile(w.target.Settings)},
			inputDeps, swiftOrderOnly, graph.ToolStamp, additionalOutputs)
	}

	writeln(w.out)
	return objFiles, nil
}

func (w *CBinaryWriter) writeLinkerStuff(objFiles []graph.OutputFile,
	otherFiles []graph.SourceFile, inputDeps []graph.OutputFile) error {
	outputFiles := graph.ApplyListToLinkerAsOutputFile(w.target, w.tool, w.tool.Outputs)

	write(w.out, "build")
	w.path.WriteFiles(w.out, outputFiles)
	write(w.out, " : ", w.rulePrefix, graph.ToolForTargetFinalOutput(w.target))

	classified := w.target.ClassifiedDeps()

	// Object files.
	w.path.WriteFiles(w.out, objFiles)
	w.path.WriteFiles(w.out, classified.ExtraObjectFiles)

	var implicitDeps []graph.OutputFile
	var solibs []graph.OutputFile
	for _, dep := range classified.LinkableDeps {
		if dep.LinkOutputFile().IsNull() {
			return &EmitError{Kind: ErrMissingLinkOutput, TargetLabel: dep.Label.String()}
		}

		// Rust libraries enter through the inherited-library walk below.
		if dep.Type == graph.TargetRustLibrary || dep.Type == graph.TargetRustProcMacro {
			continue
		}

		if dep.DependencyOutputFile() != dep.LinkOutputFile() {
			// Shared library with separate link and deps files: relink only
			// when the TOC changes, and pass the real library at link time
			// via solibs.
			implicitDeps = append(implicitDeps, dep.DependencyOutputFile())
			solibs = append(solibs, dep.LinkOutputFile())
		} else {
			write(w.out, " ")
			w.path.WriteFile(w.out, dep.LinkOutputFile())
		}
	}

	var optionalDefFile graph.SourceFile
	for _, src := range otherFiles {
		if src.IsDefType() {
			optionalDefFile = src
			implicitDeps = append(implicitDeps,
				graph.OutputFileForSource(w.target.Settings, src))
			break // Only one def file is allowed.
		}
	}

	// Libraries specified by path.
	for _, lib := range w.target.AllLibs() {
		if lib.IsSourceFile() {
			implicitDeps = append(implicitDeps,
				graph.OutputFileForSource(w.target.Settings, lib.SourceFile()))
		}
	}

	// Framework bundles relink dependents through their stamp. Pessimistic,
	// but an API change in the framework must force the relink.
	for _, dep := range classified.FrameworkDeps {
		implicitDeps = append(implicitDeps, dep.DependencyOutputFile())
	}

	// Only needed when there are no object files to carry the dependency
	// transitively, and harmless otherwise.
	implicitDeps = append(implicitDeps, inputDeps...)

	// A final target linking Rust code depends on the whole transitive rlib
	// tree inside the linking unit.
	var transitiveRustlibs []graph.OutputFile
	if w.target.IsFinal() {
		for _, dep := range w.target.InheritedLibraries {
			if dep.Type == graph.TargetRustLibrary {
				transitiveRustlibs = append(transitiveRustlibs, dep.DependencyOutputFile())
				implicitDeps = append(implicitDeps, dep.DependencyOutputFile())
			}
		}
	}

	// Swift modules from dependencies, and from self when this target
	// builds one.
	var swiftmodules []graph.OutputFile
	if w.target.IsFinal() {
		for _, dep := range classified.SwiftModuleDeps {
			swiftmodules = append(swiftmodules, dep.Swift.ModuleOutputFile)
			implicitDeps = append(implicitDeps, dep.Swift.ModuleOutputFile)
		}
		if w.target.BuildsSwiftModule() {
			swiftmodules = append(swiftmodules, w.target.Swift.ModuleOutputFile)
			implicitDeps = append(implicitDeps, w.target.Swift.ModuleOutputFile)
		}
	}

	if len(implicitDeps) > 0 {
		write(w.out, " |")
		w.path.WriteFiles(w.out, implicitDeps)
	}

	w.writeOrderOnlyDependencies(classified.NonLinkableDeps)
	writeln(w.out)

	switch w.target.Type {
	case graph.TargetExecutable, graph.TargetSharedLibrary, graph.TargetLoadableModule:
		write(w.out, "  ldflags =")
		w.writeLinkerFlags(optionalDefFile)
		writeln(w.out)
		write(w.out, "  libs =")
		w.writeLibs()
		writeln(w.out)
		write(w.out, "  frameworks =")
		w.writeFrameworks()
		writeln(w.out)
		write(w.out, "  swiftmodules =")
		w.writeSwiftModules(swiftmodules)
		writeln(w.out)
	case graph.TargetStaticLibrary:
		write(w.out, "  arflags =")
		for _, flag := range graph.FlagStrings(w.target, func(cv *graph.ConfigValues) []string { return cv.ArFlags }) {
			write(w.out, " ", escapeCommand(flag))
		}
		writeln(w.out)
	}
	w.writeOutputSubstitutions()
	w.writeLibsList("solibs", solibs)
	w.writeLibsList("rlibs", transitiveRustlibs)
	w.writePool(w.tool)
	return nil
}

func (w *CBinaryWriter) writeLinkerFlags(defFile graph.SourceFile) {
	for _, flag := range graph.FlagStrings(w.target, func(cv *graph.ConfigValues) []string { return cv.LdFlags }) {
		write(w.out, " ", escapeCommand(flag))
	}

	c := w.tool.AsC()
	libDirSwitch := "-L"
	frameworkDirSwitch := "-F"
	if c != nil {
		if c.LibDirSwitch != "" {
			libDirSwitch = c.LibDirSwitch
		}
		if c.FrameworkDirSwitch != "" {
			frameworkDirSwitch = c.FrameworkDirSwitch
		}
	}

	for _, dir := range w.target.AllLibDirs() {
		write(w.out, " ", libDirSwitch, escapeCommand(w.target.Settings.RebasePath(dir)))
	}
	for _, dir := range w.target.AllFrameworkDirs() {
		write(w.out, " ", frameworkDirSwitch, escapeCommand(w.target.Settings.RebasePath(dir)))
	}

	if !defFile.IsNull() {
		write(w.out, " /DEF:", escapeCommand(w.target.Settings.RebasePath(defFile.Value())))
	}
}

func (w *CBinaryWriter) writeLibs() {
	c := w.tool.AsC()
	libSwitch := "-l"
	if c != nil && c.LibSwitch != "" {
		libSwitch = c.LibSwitch
	}
	for _, lib := range w.target.AllLibs() {
		if lib.IsSourceFile() {
			write(w.out, " ", escapeCommand(w.target.Settings.RebasePath(lib.Value())))
		} else {
			write(w.out, " ", libSwitch, escapeCommand(lib.Value()))
		}
	}
}

func (w *CBinaryWriter) writeFrameworks() {
	c := w.tool.AsC()
	frameworkSwitch := "-framework "
	if c != nil && c.FrameworkSwitch != "" {
		frameworkSwitch = c.FrameworkSwitch
	}
	for _, name := range w.target.AllFrameworks() {
		write(w.out, " ", frameworkSwitch, escapeCommand(strings.TrimSuffix(name, ".framework")))
	}
}

func (w *CBinaryWriter) writeSwiftModules(swiftmodules []graph.OutputFile) {
	c := w.tool.AsC()
	moduleSwitch := "-Wl,-add_ast_path,"
	if c != nil && c.SwiftModuleSwitch != "" {
		moduleSwitch = c.SwiftModuleSwitch
	}
	for _, mod := range swiftmodules {
		write(w.out, " ", moduleSwitch, escapeCommand(mod.Value()))
	}
}

func (w *CBinaryWriter) writeOutputSubstitutions() {
	writeln(w.out, "  output_extension = ",
		graph.LinkerSubstitution(w.target, w.tool, graph.SubstOutputExtension))
	writeln(w.out, "  output_dir = ",
		graph.LinkerSubstitution(w.target, w.tool, graph.SubstOutputDir))
}

func (w *CBinaryWriter) writeLibsList(name string, libs []graph.OutputFile) {
	if len(libs) == 0 {
		return
	}
	write(w.out, "  ", name, " =")
	for _, lib := range libs {
		write(w.out, " ", escapeCommand(lib.Value()))
	}
	writeln(w.out)
}

func (w *CBinaryWriter) writeOrderOnlyDependencies(nonLinkableDeps []*graph.Target) {
	if len(nonLinkableDeps) == 0 {
		return
	}
	write(w.out, " ||")
	for _, dep := range nonLinkableDeps {
		write(w.out, " ")
		w.path.WriteFile(w.out, dep.DependencyOutputFile())
	}
}

// writeSourceSetStamp aggregates a source set's objects under its stamp so
// dependents can order on a single file.
func (w *CBinaryWriter) writeSourceSetStamp(objFiles []graph.OutputFile) {
	write(w.out, "build ")
	w.path.WriteFile(w.out, w.target.DependencyOutputFile())
	write(w.out, " : ", w.rulePrefix, graph.ToolStamp)
	w.path.WriteFiles(w.out, objFiles)
	w.writeOrderOnlyDependencies(w.target.ClassifiedDeps().NonLinkableDeps)
	writeln(w.out)
}

// checkDuplicateObjectFiles enforces that no two sources map to the same
// object path; ninja would accept the duplicate silently and link
// nondeterministically.
func (w *CBinaryWriter) checkDuplicateObjectFiles(files []graph.OutputFile) error {
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, dup := seen[f.Value()]; dup {
			return &EmitError{
				Kind:        ErrDuplicateObject,
				TargetLabel: w.target.Label.String(),
				Path:        f.Value(),
				Remediation: duplicateObjectRemediation,
			}
		}
		seen[f.Value()] = struct{}{}
	}
	return nil
}
