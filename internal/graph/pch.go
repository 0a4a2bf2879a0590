package graph

import "strings"

// pchLangSuffix is the short language tag embedded in PCH artifact names so
// that artifacts of different languages can never be confused.
func pchLangSuffix(toolName string) string {
	switch toolName {
	case ToolCc:
		return "c"
	case ToolCxx:
		return "cc"
	case ToolObjC:
		return "m"
	case ToolObjCxx:
		return "mm"
	}
	return ""
}

// PCHHeaderLang returns the language gcc's -x flag expects for a
// precompiled header compiled with the given tool.
func PCHHeaderLang(toolName string) string {
	switch toolName {
	case ToolCc:
		return "c-header"
	case ToolCxx:
		return "c++-header"
	case ToolObjC:
		return "objective-c-header"
	case ToolObjCxx:
		return "objective-c++-header"
	}
	return ""
}

// WindowsPCHObjectExtension is the suffix of an MSVC-dialect PCH object for
// the given tool, e.g. ".cc.obj" for the C++ tool.
func WindowsPCHObjectExtension(toolName string) string {
	return "." + pchLangSuffix(toolName) + ".obj"
}

// GCCPCHOutputExtension is the suffix of a GCC-dialect PCH artifact for the
// given tool, e.g. ".cc.gch" for the C++ tool.
func GCCPCHOutputExtension(toolName string) string {
	return "." + pchLangSuffix(toolName) + ".gch"
}

// PCHOutputFiles computes the PCH artifacts the given language tool emits
// for the target's precompiled source. The tool's normal output templates
// are applied to the precompiled source, then the object extension is
// replaced with the dialect- and language-specific one.
func PCHOutputFiles(t *Target, toolName string) []OutputFile {
	tool := t.Toolchain.ToolAsC(toolName)
	if tool == nil || tool.C.PrecompiledHeaderType == PCHNone {
		return nil
	}

	var source SourceFile
	t.EachConfigValues(func(cv *ConfigValues) {
		if source.IsNull() && cv.HasPrecompiledHeaders() {
			source = cv.PrecompiledSource
		}
	})
	if source.IsNull() {
		return nil
	}

	var ext string
	switch tool.C.PrecompiledHeaderType {
	case PCHMSVC:
		ext = WindowsPCHObjectExtension(toolName)
	case PCHGCC:
		ext = GCCPCHOutputExtension(toolName)
	}

	raw := ApplyListToCompilerAsOutputFile(t, source, tool.Outputs)
	outputs := make([]OutputFile, 0, len(raw))
	for _, out := range raw {
		value := out.Value()
		if i := strings.LastIndexByte(value, '.'); i >= 0 && !strings.ContainsRune(value[i:], '/') {
			value = value[:i]
		}
		outputs = append(outputs, MakeOutputFile(value+ext))
	}
	return outputs
}
