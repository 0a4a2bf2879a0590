package graph

import "strings"

// LibFile is a library reference from the `libs` config value: either a
// system library name ("z", "pthread") or a source-root-relative file path.
type LibFile struct {
	value string
}

func MakeLibFile(value string) LibFile { return LibFile{value: value} }

func (l LibFile) Value() string { return l.value }

// IsSourceFile reports whether the reference is a file path rather than a
// system library name.
func (l LibFile) IsSourceFile() bool { return strings.HasPrefix(l.value, "//") }

func (l LibFile) SourceFile() SourceFile { return MakeSourceFile(l.value) }

// ConfigValues is one bundle of compile and link settings. A target carries
// its own values plus an ordered chain of configs.
type ConfigValues struct {
	AsmFlags    []string
	CFlags      []string
	CFlagsC     []string
	CFlagsCc    []string
	CFlagsObjC  []string
	CFlagsObjCc []string
	SwiftFlags  []string
	ArFlags     []string
	LdFlags     []string

	Defines     []string
	IncludeDirs []string

	Libs          []LibFile
	LibDirs       []string
	Frameworks    []string
	FrameworkDirs []string

	// Precompiled header settings. PrecompiledSource is the file compiled
	// into the PCH artifact; PrecompiledHeader is the header name the
	// compile commands reference.
	PrecompiledHeader string
	PrecompiledSource SourceFile
}

func (cv *ConfigValues) HasPrecompiledHeaders() bool {
	return cv.PrecompiledHeader != "" && !cv.PrecompiledSource.IsNull()
}

// Config is a named reusable bundle of values attached to targets.
type Config struct {
	Label  Label
	Values ConfigValues
}

// EachConfigValues visits the target's own values first, then each config in
// declaration order. Extraction through this walker preserves both ordering
// and duplicates, which matters for order-sensitive linker flags.
func (t *Target) EachConfigValues(fn func(*ConfigValues)) {
	fn(&t.OwnValues)
	for _, c := range t.Configs {
		fn(&c.Values)
	}
}

// FlagStrings collects one string-list field across the config chain.
func FlagStrings(t *Target, get func(*ConfigValues) []string) []string {
	var out []string
	t.EachConfigValues(func(cv *ConfigValues) {
		out = append(out, get(cv)...)
	})
	return out
}

// AllLibs collects the `libs` values across the target's config chain, in
// chain order. The `libs` of dependencies are not included.
func (t *Target) AllLibs() []LibFile {
	var out []LibFile
	t.EachConfigValues(func(cv *ConfigValues) {
		out = append(out, cv.Libs...)
	})
	return out
}

// AllLibDirs collects the `lib_dirs` values across the config chain.
func (t *Target) AllLibDirs() []string {
	return FlagStrings(t, func(cv *ConfigValues) []string { return cv.LibDirs })
}

// AllFrameworks collects the `frameworks` values across the config chain.
func (t *Target) AllFrameworks() []string {
	return FlagStrings(t, func(cv *ConfigValues) []string { return cv.Frameworks })
}

// AllFrameworkDirs collects the `framework_dirs` values across the chain.
func (t *Target) AllFrameworkDirs() []string {
	return FlagStrings(t, func(cv *ConfigValues) []string { return cv.FrameworkDirs })
}
