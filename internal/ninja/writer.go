package ninja

import (
	"strings"

	"github.com/TritiumXs/gn/internal/graph"
	"github.com/TritiumXs/gn/internal/sched"
)

// RulePrefix returns the prefix applied to every rule name of a toolchain.
// The default toolchain's rules are unprefixed.
func RulePrefix(bs *graph.BuildSettings, tc *graph.Toolchain) string {
	if tc.Label == bs.DefaultToolchain || tc.Label.Name == "" {
		return ""
	}
	return tc.Label.Name + "_"
}

// binaryWriter carries the state shared by the per-target writers.
type binaryWriter struct {
	ctx    *sched.Context
	target *graph.Target
	out    *strings.Builder

	path       pathOutput
	rulePrefix string
}

func newBinaryWriter(ctx *sched.Context, target *graph.Target, out *strings.Builder) binaryWriter {
	return binaryWriter{
		ctx:        ctx,
		target:     target,
		out:        out,
		path:       pathOutput{bs: target.Settings},
		rulePrefix: RulePrefix(target.Settings, target.Toolchain),
	}
}

// writeCompilerBuildLine emits one build edge:
//
//	build <outputs> : <rule> <sources> [ | <extra> ] [ || <order-only> ]
func (w *binaryWriter) writeCompilerBuildLine(sources []graph.SourceFile,
	extraDeps, orderOnlyDeps []graph.OutputFile, toolName string,
	outputs []graph.OutputFile) {
	write(w.out, "build")
	w.path.WriteFiles(w.out, outputs)
	write(w.out, " : ", w.rulePrefix, toolName)
	w.path.WriteSources(w.out, sources)

	if len(extraDeps) > 0 {
		write(w.out, " |")
		w.path.WriteFiles(w.out, extraDeps)
	}
	if len(orderOnlyDeps) > 0 {
		write(w.out, " ||")
		w.path.WriteFiles(w.out, orderOnlyDeps)
	}
	writeln(w.out)
}

// writeStampAndGetDep folds many dependency files into a single stamp edge
// when fanning the full list into every consumer would bloat the output.
func (w *binaryWriter) writeStampAndGetDep(files []graph.OutputFile,
	stampSuffix string, numUses int) []graph.OutputFile {
	if len(files) == 0 {
		return nil
	}
	if len(files) == 1 || numUses < 2 {
		return files
	}

	stamp := graph.MakeOutputFile(
		graph.TargetSubstitution(w.target, graph.SubstTargetOutDir) + "/" +
			w.target.OutputName() + "." + stampSuffix + ".stamp")

	write(w.out, "build ")
	w.path.WriteFile(w.out, stamp)
	write(w.out, " : ", w.rulePrefix, graph.ToolStamp)
	w.path.WriteFiles(w.out, files)
	writeln(w.out)

	return []graph.OutputFile{stamp}
}

// writeInputsAndGetDep returns the target's non-source inputs as implicit
// dependency tokens, stamped together when referenced more than once.
func (w *binaryWriter) writeInputsAndGetDep(numUses int) []graph.OutputFile {
	inputs := make([]graph.OutputFile, 0, len(w.target.Inputs))
	for _, in := range w.target.Inputs {
		inputs = append(inputs, graph.OutputFileForSource(w.target.Settings, in))
	}
	return w.writeStampAndGetDep(inputs, "inputs", numUses)
}

// writeInputDepsStampAndGetDep returns the order-only dependency tokens: the
// stamps of the target's non-linkable deps. Compiles depend on these
// order-only; depfiles refine per-header deps after the first build.
func (w *binaryWriter) writeInputDepsStampAndGetDep(numUses int) []graph.OutputFile {
	var deps []graph.OutputFile
	for _, dep := range w.target.ClassifiedDeps().NonLinkableDeps {
		if out := dep.DependencyOutputFile(); !out.IsNull() {
			deps = append(deps, out)
		}
	}
	return w.writeStampAndGetDep(deps, "inputdeps", numUses)
}

// writeFlagVar writes one `name = v1 v2 …` line; values keep their
// extraction order including duplicates.
func (w *binaryWriter) writeFlagVar(name string, values []string) {
	write(w.out, name, " =")
	for _, v := range values {
		write(w.out, " ", escapeCommand(v))
	}
	writeln(w.out)
}

// writeCCompilerVars emits the flag variables for every language the
// toolchain references and the target actually uses.
func (w *binaryWriter) writeCCompilerVars() {
	t := w.target
	bits := t.Toolchain.SubstitutionBits()
	st := t.SourceTypesUsed()

	if bits.Has(graph.SubstDefines) {
		defines := graph.FlagStrings(t, func(cv *graph.ConfigValues) []string { return cv.Defines })
		write(w.out, "defines =")
		for _, d := range defines {
			write(w.out, " -D", escapeCommand(d))
		}
		writeln(w.out)
	}
	if bits.Has(graph.SubstIncludeDirs) {
		dirs := graph.FlagStrings(t, func(cv *graph.ConfigValues) []string { return cv.IncludeDirs })
		write(w.out, "include_dirs =")
		for _, d := range dirs {
			write(w.out, " -I", escapeCommand(t.Settings.RebasePath(d)))
		}
		writeln(w.out)
	}
	if bits.Has(graph.SubstCFlags) {
		w.writeFlagVar("cflags", graph.FlagStrings(t, func(cv *graph.ConfigValues) []string { return cv.CFlags }))
	}
	if bits.Has(graph.SubstCFlagsC) && w.languageUsed(graph.SourceC) {
		w.writeFlagVar("cflags_c", graph.FlagStrings(t, func(cv *graph.ConfigValues) []string { return cv.CFlagsC }))
	}
	if bits.Has(graph.SubstCFlagsCc) && (w.languageUsed(graph.SourceCpp) || st.Get(graph.SourceModuleMap)) {
		w.writeFlagVar("cflags_cc", graph.FlagStrings(t, func(cv *graph.ConfigValues) []string { return cv.CFlagsCc }))
	}
	if bits.Has(graph.SubstCFlagsObjC) && w.languageUsed(graph.SourceM) {
		w.writeFlagVar("cflags_objc", graph.FlagStrings(t, func(cv *graph.ConfigValues) []string { return cv.CFlagsObjC }))
	}
	if bits.Has(graph.SubstCFlagsObjCc) && w.languageUsed(graph.SourceMM) {
		w.writeFlagVar("cflags_objcc", graph.FlagStrings(t, func(cv *graph.ConfigValues) []string { return cv.CFlagsObjCc }))
	}
	if bits.Has(graph.SubstAsmFlags) && st.Get(graph.SourceS) {
		w.writeFlagVar("asmflags", graph.FlagStrings(t, func(cv *graph.ConfigValues) []string { return cv.AsmFlags }))
	}
	if bits.Has(graph.SubstSwiftFlags) && st.SwiftSourceUsed() {
		w.writeFlagVar("swiftflags", graph.FlagStrings(t, func(cv *graph.ConfigValues) []string { return cv.SwiftFlags }))
		writeln(w.out, "module_name = ", escapeCommand(t.Swift.ModuleName))
	}
}

// languageUsed reports whether sources of the given type are present, or the
// precompiled source is of that type (its compile uses the same flag var).
func (w *binaryWriter) languageUsed(st graph.SourceType) bool {
	if w.target.SourceTypesUsed().Get(st) {
		return true
	}
	used := false
	w.target.EachConfigValues(func(cv *graph.ConfigValues) {
		if cv.HasPrecompiledHeaders() && cv.PrecompiledSource.Type() == st {
			used = true
		}
	})
	return used
}

// writeSharedVars emits the target-scope variables the toolchain references.
func (w *binaryWriter) writeSharedVars() {
	bits := w.target.Toolchain.SubstitutionBits()
	for _, sub := range []graph.Substitution{
		graph.SubstLabel,
		graph.SubstRootOutDir,
		graph.SubstTargetOutDir,
		graph.SubstTargetOutputName,
	} {
		if bits.Has(sub) {
			writeln(w.out, sub.NinjaName(), " = ", graph.TargetSubstitution(w.target, sub))
		}
	}
}

// writePool emits the pool override under an edge when the tool is assigned
// to one.
func (w *binaryWriter) writePool(tool *graph.Tool) {
	if tool != nil && tool.Pool != "" {
		writeln(w.out, "  pool = ", tool.Pool)
	}
}
