package loader

import (
	"os"
	"os/exec"

	"github.com/TritiumXs/gn/internal/graph"
)

// TODO: zig cc
var (
	commonCCompilers   = []string{"clang", "gcc", "icx", "icc", "tcc", "cl"}
	commonCxxCompilers = []string{"clang++", "g++", "clang", "gcc", "icpx", "icx", "icpc", "icc", "cl"}
)

// findCompiler attempts to find a suitable C or C++ compiler on the system.
func findCompiler(needCxx bool) string {
	cc := os.Getenv("CC")
	cxx := os.Getenv("CXX")

	if needCxx && cxx != "" {
		return cxx
	}
	if !needCxx && cc != "" {
		return cc
	}
	if cxx != "" {
		return cxx
	}
	if cc != "" {
		return cc
	}

	var compilersToTry []string
	if needCxx {
		compilersToTry = commonCxxCompilers
	} else {
		compilersToTry = commonCCompilers
	}
	for _, compiler := range compilersToTry {
		if path, err := exec.LookPath(compiler); err == nil {
			return path
		}
	}
	return ""
}

const (
	compileOutputs = "{{source_out_dir}}/{{target_output_name}}.{{source_name_part}}.o"
	pcmOutputs     = "{{source_out_dir}}/{{target_output_name}}.{{source_name_part}}.pcm"
	linkOutputs    = "{{output_dir}}/{{target_output_name}}{{output_extension}}"
)

func cTool(name, command, description string, pchType graph.PCHType) *graph.Tool {
	t := &graph.Tool{
		Kind:        graph.ToolKindC,
		Name:        name,
		Command:     command,
		Description: description,
		Outputs:     graph.MustParsePatternList(compileOutputs),
		Depfile:     "{{output}}.d",
		DepsFormat:  "gcc",
		C:           &graph.CToolParams{PrecompiledHeaderType: pchType},
	}
	t.Substitutions = patternBits(command)
	return t
}

func patternBits(command string) graph.SubstitutionBits {
	return graph.MustParsePattern(command).RequiredBits()
}

// GCCToolchain builds the gcc/clang tool set: GCC-dialect precompiled
// headers, .gch artifacts, unix linker switches.
func GCCToolchain(cc, cxx string) *graph.Toolchain {
	tc := graph.NewToolchain(graph.Label{})
	if cc == "" {
		cc = findCompiler(false)
	}
	if cxx == "" {
		cxx = findCompiler(true)
	}

	tc.SetTool(cTool(graph.ToolCc,
		cc+" -MMD -MF {{output}}.d {{defines}} {{include_dirs}} {{cflags}} {{cflags_c}} -c {{source}} -o {{output}}",
		"CC {{output}}", graph.PCHGCC))
	tc.SetTool(cTool(graph.ToolCxx,
		cxx+" -MMD -MF {{output}}.d {{defines}} {{include_dirs}} {{cflags}} {{cflags_cc}} {{module_deps}} -c {{source}} -o {{output}}",
		"CXX {{output}}", graph.PCHGCC))
	tc.SetTool(cTool(graph.ToolObjC,
		cc+" -MMD -MF {{output}}.d {{defines}} {{include_dirs}} {{cflags}} {{cflags_objc}} -c {{source}} -o {{output}}",
		"OBJC {{output}}", graph.PCHGCC))
	tc.SetTool(cTool(graph.ToolObjCxx,
		cxx+" -MMD -MF {{output}}.d {{defines}} {{include_dirs}} {{cflags}} {{cflags_objcc}} -c {{source}} -o {{output}}",
		"OBJCXX {{output}}", graph.PCHGCC))
	tc.SetTool(cTool(graph.ToolAsm,
		cc+" -MMD -MF {{output}}.d {{defines}} {{include_dirs}} {{asmflags}} -c {{source}} -o {{output}}",
		"ASM {{output}}", graph.PCHNone))

	modTool := cTool(graph.ToolCxxModule,
		cxx+" {{defines}} {{include_dirs}} {{cflags}} {{cflags_cc}} {{module_deps_no_self}} -x c++-module --precompile -c {{source}} -o {{output}}",
		"CXX_MODULE {{output}}", graph.PCHNone)
	modTool.Outputs = graph.MustParsePatternList(pcmOutputs)
	tc.SetTool(modTool)

	alink := &graph.Tool{
		Kind:                   graph.ToolKindC,
		Name:                   graph.ToolAlink,
		Command:                "ar {{arflags}} rcs {{output}} {{source}}",
		Description:            "AR {{output}}",
		Outputs:                graph.MustParsePatternList(linkOutputs),
		OutputPrefix:           "lib",
		DefaultOutputExtension: ".a",
		DefaultOutputDir:       graph.MustParsePattern("{{target_out_dir}}"),
		C:                      &graph.CToolParams{},
	}
	alink.Substitutions = patternBits(alink.Command)
	tc.SetTool(alink)

	solink := &graph.Tool{
		Kind:                   graph.ToolKindC,
		Name:                   graph.ToolSolink,
		Command:                cxx + " -shared {{ldflags}} -o {{output}} {{source}} {{solibs}} {{libs}} {{frameworks}} {{swiftmodules}}",
		Description:            "SOLINK {{output}}",
		Outputs:                graph.MustParsePatternList(linkOutputs, linkOutputs+".TOC"),
		OutputPrefix:           "lib",
		DefaultOutputExtension: ".so",
		DefaultOutputDir:       graph.MustParsePattern("{{root_out_dir}}"),
		C:                      &graph.CToolParams{},
	}
	solink.Substitutions = patternBits(solink.Command)
	tc.SetTool(solink)

	link := &graph.Tool{
		Kind:             graph.ToolKindC,
		Name:             graph.ToolLink,
		Command:          cxx + " {{ldflags}} -o {{output}} {{source}} {{solibs}} {{libs}} {{frameworks}} {{swiftmodules}}",
		Description:      "LINK {{output}}",
		Outputs:          graph.MustParsePatternList(linkOutputs),
		DefaultOutputDir: graph.MustParsePattern("{{root_out_dir}}"),
		Pool:             "link_pool",
		C:                &graph.CToolParams{},
	}
	link.Substitutions = patternBits(link.Command)
	tc.SetTool(link)

	stamp := &graph.Tool{
		Kind:        graph.ToolKindGeneral,
		Name:        graph.ToolStamp,
		Command:     "touch {{output}}",
		Description: "STAMP {{output}}",
	}
	tc.SetTool(stamp)

	swift := &graph.Tool{
		Kind:        graph.ToolKindSwift,
		Name:        graph.ToolSwift,
		Command:     "swiftc -module-name {{module_name}} {{swiftflags}} -emit-module -o {{output}} {{source}}",
		Description: "SWIFT {{output}}",
		Outputs:     graph.MustParsePatternList("{{target_out_dir}}/{{module_name}}.swiftmodule"),
		Swift: &graph.SwiftToolParams{
			PartialOutputs: graph.MustParsePatternList("{{target_out_dir}}/{{source_name_part}}.o"),
		},
	}
	swift.Substitutions = patternBits(swift.Command)
	tc.SetTool(swift)

	return tc
}

// MSVCToolchain builds the cl.exe tool set: MSVC-dialect precompiled
// headers whose outputs are objects, msvc depfile format and link switches.
func MSVCToolchain(cl, link string) *graph.Toolchain {
	tc := graph.NewToolchain(graph.Label{})
	if cl == "" {
		cl = "cl"
	}
	if link == "" {
		link = "link"
	}

	msvcCTool := func(name, flagVar, description string) *graph.Tool {
		t := cTool(name,
			cl+" /nologo /showIncludes {{defines}} {{include_dirs}} {{cflags}} {{"+flagVar+"}} /c {{source}} /Fo{{output}}",
			description, graph.PCHMSVC)
		t.DepsFormat = "msvc"
		t.Depfile = ""
		t.C.LibSwitch = ""
		t.C.LibDirSwitch = "/LIBPATH:"
		return t
	}
	tc.SetTool(msvcCTool(graph.ToolCc, "cflags_c", "CC {{output}}"))
	tc.SetTool(msvcCTool(graph.ToolCxx, "cflags_cc", "CXX {{output}}"))

	asm := cTool(graph.ToolAsm,
		"ml /nologo {{defines}} {{include_dirs}} {{asmflags}} /c /Fo{{output}} {{source}}",
		"ASM {{output}}", graph.PCHNone)
	tc.SetTool(asm)

	alink := &graph.Tool{
		Kind:                   graph.ToolKindC,
		Name:                   graph.ToolAlink,
		Command:                "lib /nologo {{arflags}} /OUT:{{output}} {{source}}",
		Description:            "LIB {{output}}",
		Outputs:                graph.MustParsePatternList(linkOutputs),
		DefaultOutputExtension: ".lib",
		DefaultOutputDir:       graph.MustParsePattern("{{target_out_dir}}"),
		C:                      &graph.CToolParams{LibDirSwitch: "/LIBPATH:"},
	}
	alink.Substitutions = patternBits(alink.Command)
	tc.SetTool(alink)

	solink := &graph.Tool{
		Kind:                   graph.ToolKindC,
		Name:                   graph.ToolSolink,
		Command:                link + " /nologo /DLL {{ldflags}} /OUT:{{output}} {{source}} {{solibs}} {{libs}}",
		Description:            "SOLINK {{output}}",
		Outputs:                graph.MustParsePatternList(linkOutputs, linkOutputs+".lib"),
		DefaultOutputExtension: ".dll",
		DefaultOutputDir:       graph.MustParsePattern("{{root_out_dir}}"),
		C:                      &graph.CToolParams{LibDirSwitch: "/LIBPATH:"},
	}
	solink.Substitutions = patternBits(solink.Command)
	tc.SetTool(solink)

	exeLink := &graph.Tool{
		Kind:                   graph.ToolKindC,
		Name:                   graph.ToolLink,
		Command:                link + " /nologo {{ldflags}} /OUT:{{output}} {{source}} {{solibs}} {{libs}}",
		Description:            "LINK {{output}}",
		Outputs:                graph.MustParsePatternList(linkOutputs),
		DefaultOutputExtension: ".exe",
		DefaultOutputDir:       graph.MustParsePattern("{{root_out_dir}}"),
		Pool:                   "link_pool",
		C:                      &graph.CToolParams{LibDirSwitch: "/LIBPATH:"},
	}
	exeLink.Substitutions = patternBits(exeLink.Command)
	tc.SetTool(exeLink)

	stamp := &graph.Tool{
		Kind:        graph.ToolKindGeneral,
		Name:        graph.ToolStamp,
		Command:     "cmd /c copy nul {{output}} > nul",
		Description: "STAMP {{output}}",
	}
	tc.SetTool(stamp)

	return tc
}
