package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TritiumXs/gn/internal/graph"
	"github.com/TritiumXs/gn/internal/sched"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

func testLoad(t *testing.T, files map[string]string) *Build {
	t.Helper()
	root := writeTree(t, files)
	b, err := Load(root, Options{Toolchain: "gcc"})
	require.NoError(t, err)
	return b
}

func TestLoadResolvesGraph(t *testing.T) {
	b := testLoad(t, map[string]string{
		"gn.toml": `
[package]
name = "demo"

[target.app]
type = "executable"
sources = ["src/main.cc"]
deps = [":core"]

[target.core]
type = "static_library"
sources = ["src/**/*.cc"]
`,
		"src/main.cc":   "int main() {}\n",
		"src/core/a.cc": "",
		"src/core/b.cc": "",
	})

	require.Len(t, b.Targets, 2)
	// Deterministic label order.
	assert.Equal(t, "//:app", b.Targets[0].Label.String())
	assert.Equal(t, "//:core", b.Targets[1].Label.String())

	app := b.Targets[0]
	core := b.Targets[1]
	assert.Equal(t, graph.TargetExecutable, app.Type)
	assert.Equal(t, []*graph.Target{core}, app.PrivateDeps)
	assert.Equal(t, []*graph.Target{core}, app.InheritedLibraries)

	// Globs match recursively and sort deterministically; the plain path
	// passes through untouched.
	require.Len(t, app.Sources, 1)
	assert.Equal(t, "//src/main.cc", app.Sources[0].Value())
	require.Len(t, core.Sources, 3)
	assert.Equal(t, "//src/core/a.cc", core.Sources[0].Value())
	assert.Equal(t, "//src/core/b.cc", core.Sources[1].Value())
	assert.Equal(t, "//src/main.cc", core.Sources[2].Value())
}

func TestLoadUnknownDep(t *testing.T) {
	root := writeTree(t, map[string]string{
		"gn.toml": `
[target.app]
type = "executable"
sources = ["main.cc"]
deps = [":nonexistent"]
`,
		"main.cc": "",
	})
	_, err := Load(root, Options{Toolchain: "gcc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestLoadUnknownTargetType(t *testing.T) {
	root := writeTree(t, map[string]string{
		"gn.toml": `
[target.app]
type = "mystery"
`,
	})
	_, err := Load(root, Options{Toolchain: "gcc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestParseLabelForms(t *testing.T) {
	from := graph.MakeLabel("//foo", "bar")

	label, err := parseLabel(from, ":baz")
	require.NoError(t, err)
	assert.Equal(t, "//foo:baz", label.String())

	label, err = parseLabel(from, "//lib:z")
	require.NoError(t, err)
	assert.Equal(t, "//lib:z", label.String())

	label, err = parseLabel(from, "//lib/z")
	require.NoError(t, err)
	assert.Equal(t, "//lib/z:z", label.String())

	_, err = parseLabel(from, "no-prefix")
	assert.Error(t, err)
}

func TestEmitAllProducesLoadableFile(t *testing.T) {
	b := testLoad(t, map[string]string{
		"gn.toml": `
[target.app]
type = "executable"
sources = ["main.cc"]
deps = [":core"]

[target.core]
type = "static_library"
sources = ["core.cc"]
`,
		"main.cc": "",
		"core.cc": "",
	})

	ctx := sched.NewContext()
	out, err := EmitAll(ctx, b, 4)
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "ninja_required_version = 1.7.2\n")
	assert.Contains(t, text, "rule cxx\n")
	assert.Contains(t, text, "rule alink\n")
	assert.Contains(t, text, "# //:app\n")
	assert.Contains(t, text, "# //:core\n")
	assert.Contains(t, text, "build obj/libcore.a : alink obj/core.core.o\n")
	assert.Contains(t, text, "build ./app : link obj/app.main.o obj/libcore.a")

	// Emission is deterministic across runs.
	out2, err := EmitAll(sched.NewContext(), b, 1)
	require.NoError(t, err)
	assert.Equal(t, out, out2)
}

func TestEmitAllReportsDuplicateObjects(t *testing.T) {
	b := testLoad(t, map[string]string{
		"gn.toml": `
[target.app]
type = "executable"
sources = ["a/x.cc", "b/x.cc", "x.cc"]
`,
		"a/x.cc": "",
		"b/x.cc": "",
		"x.cc":   "",
	})

	// Collapse every object into the same path to provoke the invariant.
	cxx := b.Toolchain.Tool(graph.ToolCxx)
	cxx.Outputs = graph.MustParsePatternList("{{target_out_dir}}/{{source_name_part}}.o")

	ctx := sched.NewContext()
	_, err := EmitAll(ctx, b, 2)
	require.Error(t, err)
	assert.True(t, ctx.IsFailed())
	assert.Contains(t, err.Error(), "Duplicate object file")
	assert.Contains(t, err.Error(), "x.o")
}

func TestLoadLocalImport(t *testing.T) {
	b := testLoad(t, map[string]string{
		"gn.toml": `
[imports]
zlib = "libs/zlib"

[target.app]
type = "executable"
sources = ["main.cc"]
deps = ["//libs/zlib:zlib"]
`,
		"main.cc": "",
		"libs/zlib/gn.toml": `
[target.zlib]
type = "static_library"
sources = ["inflate.cc"]
`,
		"libs/zlib/inflate.cc": "",
	})

	require.Len(t, b.Targets, 2)
	assert.Equal(t, "//:app", b.Targets[0].Label.String())
	assert.Equal(t, "//libs/zlib:zlib", b.Targets[1].Label.String())
	assert.Equal(t, "//libs/zlib/inflate.cc", b.Targets[1].Sources[0].Value())
}

func TestIsRemoteImport(t *testing.T) {
	assert.True(t, isRemoteImport("gh:someone/libfoo"))
	assert.True(t, isRemoteImport("git:https://example.com/repo.git"))
	assert.False(t, isRemoteImport("libs/zlib"))
}

func TestGCCToolchainShape(t *testing.T) {
	tc := GCCToolchain("gcc", "g++")

	cxx := tc.ToolAsC(graph.ToolCxx)
	require.NotNil(t, cxx)
	assert.Equal(t, graph.PCHGCC, cxx.C.PrecompiledHeaderType)

	solink := tc.Tool(graph.ToolSolink)
	require.NotNil(t, solink)
	require.Len(t, solink.Outputs, 2)
	assert.Equal(t, "lib", solink.OutputPrefix)

	assert.True(t, tc.SubstitutionBits().Has(graph.SubstModuleDeps))
	assert.True(t, tc.SubstitutionBits().Has(graph.SubstCFlagsCc))
}

func TestMSVCToolchainShape(t *testing.T) {
	tc := MSVCToolchain("cl", "link")

	cxx := tc.ToolAsC(graph.ToolCxx)
	require.NotNil(t, cxx)
	assert.Equal(t, graph.PCHMSVC, cxx.C.PrecompiledHeaderType)
	assert.Equal(t, "msvc", cxx.DepsFormat)

	link := tc.Tool(graph.ToolLink)
	require.NotNil(t, link)
	assert.Equal(t, ".exe", link.DefaultOutputExtension)
}
