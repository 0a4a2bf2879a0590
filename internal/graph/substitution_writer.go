package graph

import "strings"

// The functions here bind substitution placeholders to concrete values for
// the two contexts the emitter needs: per-source (compiler) and per-target
// (linker).

// CompilerSubstitution resolves a substitution for one source in one target.
// Flag-variable substitutions are not resolved here; they expand to ninja
// variable references handled by the rule definitions.
func CompilerSubstitution(t *Target, source SourceFile, sub Substitution) string {
	switch sub {
	case SubstSource:
		return t.Settings.RebasePath(source.Value())
	case SubstSourceNamePart:
		return source.NamePart()
	case SubstSourceFilePart:
		return source.Name()
	case SubstSourceOutDir:
		return sourceOutDir(source)
	default:
		return TargetSubstitution(t, sub)
	}
}

// TargetSubstitution resolves substitutions that depend only on the target.
func TargetSubstitution(t *Target, sub Substitution) string {
	switch sub {
	case SubstLabel:
		return t.Label.String()
	case SubstLabelName:
		return t.Label.Name
	case SubstRootOutDir:
		return "."
	case SubstTargetOutDir:
		return targetOutDir(t)
	case SubstTargetOutputName:
		return t.OutputName()
	case SubstSwiftModuleName:
		return t.Swift.ModuleName
	}
	return ""
}

// LinkerSubstitution resolves substitutions for the final-output edge of a
// target with the given tool.
func LinkerSubstitution(t *Target, tool *Tool, sub Substitution) string {
	switch sub {
	case SubstOutputDir:
		return outputDir(t, tool)
	case SubstOutputExtension:
		if t.OutputExtensionSet {
			if t.OutputExtension == "" {
				return ""
			}
			return "." + t.OutputExtension
		}
		return tool.DefaultOutputExtension
	case SubstTargetOutputName:
		return prefixedOutputName(t, tool)
	default:
		return TargetSubstitution(t, sub)
	}
}

func sourceOutDir(source SourceFile) string {
	dir := strings.Trim(strings.TrimPrefix(source.Dir(), "//"), "/")
	if dir == "" {
		return "obj"
	}
	return "obj/" + dir
}

func targetOutDir(t *Target) string {
	dir := t.Label.DirNoSlashes()
	if dir == "" {
		return "obj"
	}
	return "obj/" + dir
}

func outputDir(t *Target, tool *Tool) string {
	if t.OutputDir != "" {
		return t.OutputDir
	}
	if !tool.DefaultOutputDir.Empty() {
		return ApplyPatternToLinker(t, tool, tool.DefaultOutputDir)
	}
	return targetOutDir(t)
}

func prefixedOutputName(t *Target, tool *Tool) string {
	name := t.OutputName()
	if tool.OutputPrefix != "" && !strings.HasPrefix(name, tool.OutputPrefix) {
		return tool.OutputPrefix + name
	}
	return name
}

// ApplyPatternToCompiler expands a pattern for one source.
func ApplyPatternToCompiler(t *Target, source SourceFile, p SubstitutionPattern) string {
	var sb strings.Builder
	for _, seg := range p.segments {
		if seg.subst == SubstNone {
			sb.WriteString(seg.literal)
		} else {
			sb.WriteString(CompilerSubstitution(t, source, seg.subst))
		}
	}
	return sb.String()
}

// ApplyListToCompilerAsOutputFile expands a tool's output templates for one
// source file.
func ApplyListToCompilerAsOutputFile(t *Target, source SourceFile, list SubstitutionList) []OutputFile {
	outputs := make([]OutputFile, 0, len(list))
	for _, p := range list {
		outputs = append(outputs, MakeOutputFile(ApplyPatternToCompiler(t, source, p)))
	}
	return outputs
}

// ApplyPatternToLinker expands a pattern in linker (per-target) context.
func ApplyPatternToLinker(t *Target, tool *Tool, p SubstitutionPattern) string {
	var sb strings.Builder
	for _, seg := range p.segments {
		if seg.subst == SubstNone {
			sb.WriteString(seg.literal)
		} else {
			sb.WriteString(LinkerSubstitution(t, tool, seg.subst))
		}
	}
	return sb.String()
}

// ApplyListToLinkerAsOutputFile expands a tool's output templates for the
// target's final output.
func ApplyListToLinkerAsOutputFile(t *Target, tool *Tool, list SubstitutionList) []OutputFile {
	outputs := make([]OutputFile, 0, len(list))
	for _, p := range list {
		outputs = append(outputs, MakeOutputFile(ApplyPatternToLinker(t, tool, p)))
	}
	return outputs
}
