package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("{{source_out_dir}}/{{target_output_name}}.{{source_name_part}}.o")
	require.NoError(t, err)
	assert.True(t, p.RequiredBits().Has(SubstSourceOutDir))
	assert.True(t, p.RequiredBits().Has(SubstTargetOutputName))
	assert.True(t, p.RequiredBits().Has(SubstSourceNamePart))
	assert.False(t, p.RequiredBits().Has(SubstCFlags))
}

func TestParsePatternErrors(t *testing.T) {
	_, err := ParsePattern("{{nonsense}}")
	assert.Error(t, err)

	_, err = ParsePattern("{{source")
	assert.Error(t, err)
}

func TestNinjaForRule(t *testing.T) {
	p := MustParsePattern("cc {{defines}} -c {{source}} -o {{output}}")
	assert.Equal(t, "cc ${defines} -c $in -o $out", p.NinjaForRule())
}

func testTargetFoo() *Target {
	bs := &BuildSettings{BuildDir: "//out/"}
	tc := NewToolchain(Label{})
	tc.SetTool(&Tool{
		Kind:    ToolKindC,
		Name:    ToolCxx,
		Outputs: MustParsePatternList("{{source_out_dir}}/{{target_output_name}}.{{source_name_part}}.o"),
		C:       &CToolParams{},
	})
	tc.SetTool(&Tool{
		Kind:                   ToolKindC,
		Name:                   ToolAlink,
		Outputs:                MustParsePatternList("{{output_dir}}/{{target_output_name}}{{output_extension}}"),
		OutputPrefix:           "lib",
		DefaultOutputExtension: ".a",
		DefaultOutputDir:       MustParsePattern("{{target_out_dir}}"),
		C:                      &CToolParams{},
	})
	t := &Target{
		Label:     MakeLabel("//foo", "bar"),
		Type:      TargetStaticLibrary,
		Settings:  bs,
		Toolchain: tc,
		Sources:   []SourceFile{MakeSourceFile("//foo/a.cc")},
	}
	t.Resolve()
	return t
}

func TestCompilerSubstitutions(t *testing.T) {
	target := testTargetFoo()
	source := MakeSourceFile("//foo/sub/a.cc")

	assert.Equal(t, "../foo/sub/a.cc", CompilerSubstitution(target, source, SubstSource))
	assert.Equal(t, "a", CompilerSubstitution(target, source, SubstSourceNamePart))
	assert.Equal(t, "a.cc", CompilerSubstitution(target, source, SubstSourceFilePart))
	assert.Equal(t, "obj/foo/sub", CompilerSubstitution(target, source, SubstSourceOutDir))
	assert.Equal(t, "bar", CompilerSubstitution(target, source, SubstTargetOutputName))
	assert.Equal(t, "//foo:bar", CompilerSubstitution(target, source, SubstLabel))
	assert.Equal(t, ".", CompilerSubstitution(target, source, SubstRootOutDir))
	assert.Equal(t, "obj/foo", CompilerSubstitution(target, source, SubstTargetOutDir))
}

func TestLinkerSubstitutions(t *testing.T) {
	target := testTargetFoo()
	alink := target.Toolchain.Tool(ToolAlink)

	assert.Equal(t, "libbar", LinkerSubstitution(target, alink, SubstTargetOutputName))
	assert.Equal(t, ".a", LinkerSubstitution(target, alink, SubstOutputExtension))
	assert.Equal(t, "obj/foo", LinkerSubstitution(target, alink, SubstOutputDir))

	outs := ApplyListToLinkerAsOutputFile(target, alink, alink.Outputs)
	require.Len(t, outs, 1)
	assert.Equal(t, "obj/foo/libbar.a", outs[0].Value())
}

func TestLinkerSubstitutionOutputExtensionOverride(t *testing.T) {
	target := testTargetFoo()
	target.OutputExtension = "lib"
	target.OutputExtensionSet = true
	alink := target.Toolchain.Tool(ToolAlink)
	assert.Equal(t, ".lib", LinkerSubstitution(target, alink, SubstOutputExtension))

	target.OutputExtension = ""
	assert.Equal(t, "", LinkerSubstitution(target, alink, SubstOutputExtension))
}

func TestRebasePath(t *testing.T) {
	bs := &BuildSettings{BuildDir: "//out/"}
	assert.Equal(t, "../foo/a.cc", bs.RebasePath("//foo/a.cc"))
	assert.Equal(t, "obj/foo/a.o", bs.RebasePath("//out/obj/foo/a.o"))
	assert.Equal(t, "obj/foo/a.o", bs.RebasePath("obj/foo/a.o"))

	deep := &BuildSettings{BuildDir: "//out/Debug/"}
	assert.Equal(t, "../../foo/a.cc", deep.RebasePath("//foo/a.cc"))
}
