package loader

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv() Env {
	return Env{
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Environ:    map[string]string{},
	}
}

func TestParseDesc(t *testing.T) {
	desc, err := ParseDesc(strings.NewReader(`
[package]
name = "demo"

[target.bar]
type = "static_library"
sources = ["src/a.cc", "src/b.cc"]
cflags_cc = ["-std=c++17"]
deps = [":baz"]

[target.baz]
type = "source_set"
sources = ["src/x.cc"]
`), testEnv())
	require.NoError(t, err)

	assert.Equal(t, "demo", desc.Package.Name)
	require.Contains(t, desc.Targets, "bar")
	bar := desc.Targets["bar"]
	assert.Equal(t, "static_library", bar.Type)
	assert.Equal(t, []string{"src/a.cc", "src/b.cc"}, bar.Sources)
	assert.Equal(t, []string{"-std=c++17"}, bar.CFlagsCc)
	assert.Equal(t, []string{":baz"}, bar.Deps)
}

func TestParseDescConditionalSection(t *testing.T) {
	env := testEnv()
	env.TargetOS = "linux"

	desc, err := ParseDesc(strings.NewReader(`
[target.bar]
type = "executable"
cflags = ["-Wall"]

[target.bar.'target_os == "linux"']
cflags = ["-pthread"]
defines = ["USE_EPOLL"]

[target.bar.'target_os == "windows"']
defines = ["UNICODE"]
`), env)
	require.NoError(t, err)

	bar := desc.Targets["bar"]
	assert.Equal(t, []string{"-Wall", "-pthread"}, bar.CFlags)
	assert.Equal(t, []string{"USE_EPOLL"}, bar.Defines)
	assert.NotContains(t, bar.Defines, "UNICODE")
}

func TestParseDescStringExpressions(t *testing.T) {
	env := testEnv()
	env.TargetArch = "amd64"

	desc, err := ParseDesc(strings.NewReader(`
[target.bar]
type = "executable"
defines = ["ARCH_{{ target_arch }}"]
`), env)
	require.NoError(t, err)
	assert.Equal(t, []string{"ARCH_amd64"}, desc.Targets["bar"].Defines)
}

func TestParseDescBadExpression(t *testing.T) {
	_, err := ParseDesc(strings.NewReader(`
[target.bar]
type = "executable"
defines = ["{{ nonsense( }}"]
`), testEnv())
	assert.Error(t, err)
}

func TestParseGitURL(t *testing.T) {
	res := parseGitURL("someone/something@feature-branch#12345abc")
	assert.Equal(t, "someone/something.git", res.cleanURL)
	assert.Equal(t, "feature-branch", res.branch)
	assert.Equal(t, "12345abc", res.commitOrTag)

	res = parseGitURL("someone/something#12345abc")
	assert.Equal(t, "someone/something.git", res.cleanURL)
	assert.Equal(t, "", res.branch)
	assert.Equal(t, "12345abc", res.commitOrTag)

	res = parseGitURL("https://example.com/repo.git")
	assert.Equal(t, "https://example.com/repo.git", res.cleanURL)
}

func TestFetchImportLocalPath(t *testing.T) {
	path, err := fetchImport("libs/zlib", "/tmp/ignored")
	require.NoError(t, err)
	assert.Equal(t, "libs/zlib", path)

	_, err = fetchImport("", "/tmp/ignored")
	assert.Error(t, err)
}
