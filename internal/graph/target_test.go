package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testToolchain builds a minimal gcc-flavored tool set for graph tests.
func testToolchain() *Toolchain {
	tc := NewToolchain(Label{})
	compile := func(name string, pch PCHType) *Tool {
		return &Tool{
			Kind:    ToolKindC,
			Name:    name,
			Outputs: MustParsePatternList("{{source_out_dir}}/{{target_output_name}}.{{source_name_part}}.o"),
			C:       &CToolParams{PrecompiledHeaderType: pch},
		}
	}
	tc.SetTool(compile(ToolCc, PCHGCC))
	tc.SetTool(compile(ToolCxx, PCHGCC))
	mod := compile(ToolCxxModule, PCHNone)
	mod.Outputs = MustParsePatternList("{{source_out_dir}}/{{target_output_name}}.{{source_name_part}}.pcm")
	tc.SetTool(mod)
	tc.SetTool(&Tool{
		Kind:                   ToolKindC,
		Name:                   ToolAlink,
		Outputs:                MustParsePatternList("{{output_dir}}/{{target_output_name}}{{output_extension}}"),
		OutputPrefix:           "lib",
		DefaultOutputExtension: ".a",
		DefaultOutputDir:       MustParsePattern("{{target_out_dir}}"),
		C:                      &CToolParams{},
	})
	tc.SetTool(&Tool{
		Kind:                   ToolKindC,
		Name:                   ToolSolink,
		Outputs:                MustParsePatternList("{{output_dir}}/{{target_output_name}}{{output_extension}}", "{{output_dir}}/{{target_output_name}}{{output_extension}}.TOC"),
		OutputPrefix:           "lib",
		DefaultOutputExtension: ".so",
		DefaultOutputDir:       MustParsePattern("{{root_out_dir}}"),
		C:                      &CToolParams{},
	})
	tc.SetTool(&Tool{
		Kind:             ToolKindC,
		Name:             ToolLink,
		Outputs:          MustParsePatternList("{{output_dir}}/{{target_output_name}}{{output_extension}}"),
		DefaultOutputDir: MustParsePattern("{{root_out_dir}}"),
		C:                &CToolParams{},
	})
	tc.SetTool(&Tool{Kind: ToolKindGeneral, Name: ToolStamp})
	return tc
}

func newTestTarget(label Label, typ TargetType, sources ...string) *Target {
	t := &Target{
		Label:     label,
		Type:      typ,
		Settings:  &BuildSettings{BuildDir: "//out/"},
		Toolchain: testToolchain(),
	}
	for _, s := range sources {
		t.Sources = append(t.Sources, MakeSourceFile(s))
	}
	t.Resolve()
	return t
}

func TestResolveStaticLibraryOutputs(t *testing.T) {
	target := newTestTarget(MakeLabel("//foo", "bar"), TargetStaticLibrary, "//foo/a.cc")
	assert.Equal(t, "obj/foo/libbar.a", target.LinkOutputFile().Value())
	assert.Equal(t, "obj/foo/libbar.a", target.DependencyOutputFile().Value())
}

func TestResolveSharedLibraryOutputs(t *testing.T) {
	target := newTestTarget(MakeLabel("//lib", "s"), TargetSharedLibrary, "//lib/s.cc")
	assert.Equal(t, "./libs.so", target.LinkOutputFile().Value())
	assert.Equal(t, "./libs.so.TOC", target.DependencyOutputFile().Value())
	assert.NotEqual(t, target.LinkOutputFile(), target.DependencyOutputFile())
}

func TestResolveSourceSetStamp(t *testing.T) {
	target := newTestTarget(MakeLabel("//foo", "objs"), TargetSourceSet, "//foo/a.cc")
	assert.True(t, target.LinkOutputFile().IsNull())
	assert.Equal(t, "obj/foo/objs.stamp", target.DependencyOutputFile().Value())
}

func TestOutputFilesForSource(t *testing.T) {
	target := newTestTarget(MakeLabel("//foo", "bar"), TargetStaticLibrary, "//foo/a.cc")

	toolName, outputs, ok := target.OutputFilesForSource(MakeSourceFile("//foo/a.cc"))
	require.True(t, ok)
	assert.Equal(t, ToolCxx, toolName)
	require.Len(t, outputs, 1)
	assert.Equal(t, "obj/foo/bar.a.o", outputs[0].Value())

	_, _, ok = target.OutputFilesForSource(MakeSourceFile("//foo/a.h"))
	assert.False(t, ok)

	_, _, ok = target.OutputFilesForSource(MakeSourceFile("//foo/a.def"))
	assert.False(t, ok)

	toolName, outputs, ok = target.OutputFilesForSource(MakeSourceFile("//foo/a.modulemap"))
	require.True(t, ok)
	assert.Equal(t, ToolCxxModule, toolName)
	assert.Equal(t, "obj/foo/bar.a.pcm", outputs[0].Value())
}

func TestObjectFilesSkipsModuleMaps(t *testing.T) {
	target := newTestTarget(MakeLabel("//foo", "bar"), TargetSourceSet,
		"//foo/a.cc", "//foo/a.modulemap", "//foo/a.h")
	objs := target.ObjectFiles()
	require.Len(t, objs, 1)
	assert.Equal(t, "obj/foo/bar.a.o", objs[0].Value())
}

func TestPCHOutputFiles(t *testing.T) {
	target := newTestTarget(MakeLabel("//foo", "bar"), TargetStaticLibrary, "//foo/a.cc")
	target.OwnValues.PrecompiledHeader = "build/pch.h"
	target.OwnValues.PrecompiledSource = MakeSourceFile("//build/pch.cc")

	outs := PCHOutputFiles(target, ToolCxx)
	require.Len(t, outs, 1)
	assert.Equal(t, "obj/build/bar.pch.cc.gch", outs[0].Value())

	// No PCH configured for a tool with dialect none.
	assert.Empty(t, PCHOutputFiles(target, ToolCxxModule))
}

func TestClassifiedDeps(t *testing.T) {
	static := newTestTarget(MakeLabel("//lib", "a"), TargetStaticLibrary, "//lib/a.cc")
	shared := newTestTarget(MakeLabel("//lib", "s"), TargetSharedLibrary, "//lib/s.cc")
	sourceSet := newTestTarget(MakeLabel("//lib", "objs"), TargetSourceSet, "//lib/x.cc")
	action := newTestTarget(MakeLabel("//gen", "headers"), TargetAction)
	dataDep := newTestTarget(MakeLabel("//tools", "helper"), TargetExecutable, "//tools/main.cc")

	target := newTestTarget(MakeLabel("//app", "x"), TargetExecutable, "//app/main.cc")
	target.PublicDeps = []*Target{static}
	target.PrivateDeps = []*Target{shared, sourceSet, action}
	target.DataDeps = []*Target{dataDep}

	cd := target.ClassifiedDeps()
	assert.Equal(t, []*Target{static, shared}, cd.LinkableDeps)
	assert.Equal(t, []*Target{sourceSet, action, dataDep}, cd.NonLinkableDeps)
	require.Len(t, cd.ExtraObjectFiles, 1)
	assert.Equal(t, "obj/lib/objs.x.o", cd.ExtraObjectFiles[0].Value())
	assert.Empty(t, cd.FrameworkDeps)
	assert.Empty(t, cd.SwiftModuleDeps)

	// Memoized: same pointer on second call.
	assert.Same(t, cd, target.ClassifiedDeps())
}

func TestFlagStringsPreservesDuplicatesAndOrder(t *testing.T) {
	target := newTestTarget(MakeLabel("//foo", "bar"), TargetStaticLibrary, "//foo/a.cc")
	target.OwnValues.LdFlags = []string{"-Wl,--start-group", "-la"}
	target.Configs = []*Config{
		{Values: ConfigValues{LdFlags: []string{"-la", "-Wl,--end-group"}}},
	}

	flags := FlagStrings(target, func(cv *ConfigValues) []string { return cv.LdFlags })
	assert.Equal(t, []string{"-Wl,--start-group", "-la", "-la", "-Wl,--end-group"}, flags)
}
