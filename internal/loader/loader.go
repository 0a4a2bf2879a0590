package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/TritiumXs/gn/internal/graph"
	"github.com/TritiumXs/gn/internal/msg"
)

// Build is the fully resolved graph for one output directory.
type Build struct {
	Settings  *graph.BuildSettings
	Toolchain *graph.Toolchain

	// Targets in deterministic (label) order.
	Targets []*graph.Target
}

// Options control graph loading.
type Options struct {
	// Toolchain is "auto", "gcc" or "msvc".
	Toolchain string

	// BuildDirName is the output directory under the root, "out" by default.
	BuildDirName string
}

var targetTypes = map[string]graph.TargetType{
	"group":           graph.TargetGroup,
	"executable":      graph.TargetExecutable,
	"shared_library":  graph.TargetSharedLibrary,
	"loadable_module": graph.TargetLoadableModule,
	"static_library":  graph.TargetStaticLibrary,
	"source_set":      graph.TargetSourceSet,
	"action":          graph.TargetAction,
	"copy":            graph.TargetCopy,
	"rust_library":    graph.TargetRustLibrary,
	"rust_proc_macro": graph.TargetRustProcMacro,
}

// Load reads the description files starting at rootDir, fetches remote
// imports and resolves the target graph.
func Load(rootDir string, opts Options) (*Build, error) {
	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}

	buildDirName := opts.BuildDirName
	if buildDirName == "" {
		buildDirName = "out"
	}

	b := &Build{
		Settings: &graph.BuildSettings{BuildDir: "//" + buildDirName + "/"},
	}

	switch {
	case opts.Toolchain == "msvc",
		opts.Toolchain == "auto" && runtime.GOOS == "windows" && findMSVC() != "":
		b.Toolchain = MSVCToolchain("", "")
	default:
		b.Toolchain = GCCToolchain("", "")
	}

	env := NewEnv()

	type pendingTarget struct {
		label   graph.Label
		dir     string // absolute directory of the description file
		section TargetSection
	}
	var pending []pendingTarget

	var loadDesc func(dir, labelDir string) error
	loadDesc = func(dir, labelDir string) error {
		desc, err := ParseDescFromFile(filepath.Join(dir, DescFilename), env)
		if err != nil {
			return err
		}
		for name, section := range desc.Targets {
			pending = append(pending, pendingTarget{
				label:   graph.MakeLabel(labelDir, name),
				dir:     dir,
				section: section,
			})
		}

		for name, spec := range desc.Imports {
			var dest, importLabelDir string
			if isRemoteImport(spec) {
				dest = filepath.Join(rootDir, buildDirName, "_deps", name)
				importLabelDir = "//" + buildDirName + "/_deps/" + name + "/"
				if stat, statErr := os.Stat(dest); os.IsNotExist(statErr) || (statErr == nil && !stat.IsDir()) {
					if err := os.MkdirAll(dest, 0755); err != nil && !os.IsExist(err) {
						return err
					}
					msg.Info("fetching import %s", name)
					if _, err := fetchImport(spec, dest); err != nil {
						return fmt.Errorf("failed to fetch import %q: %w", name, err)
					}
				}
			} else {
				// Local path import: load in place.
				path := strings.Trim(spec, "/")
				dest = filepath.Join(rootDir, filepath.FromSlash(path))
				importLabelDir = "//" + path + "/"
			}
			if err := loadDesc(dest, importLabelDir); err != nil {
				return fmt.Errorf("in import %q: %w", name, err)
			}
		}
		return nil
	}

	if err := loadDesc(rootDir, "//"); err != nil {
		return nil, err
	}

	// Pass 1: create targets.
	targets := make(map[string]*graph.Target, len(pending))
	for _, pt := range pending {
		typ, ok := targetTypes[pt.section.Type]
		if !ok {
			return nil, fmt.Errorf("target %s has unknown type %q", pt.label.String(), pt.section.Type)
		}
		t, err := makeTarget(b, pt.label, typ, pt.dir, pt.section)
		if err != nil {
			return nil, err
		}
		if _, dup := targets[pt.label.String()]; dup {
			return nil, fmt.Errorf("duplicate target %s", pt.label.String())
		}
		targets[pt.label.String()] = t
	}

	// Pass 2: resolve dependency labels.
	for _, pt := range pending {
		t := targets[pt.label.String()]
		var err error
		if t.PublicDeps, err = resolveDeps(targets, pt.label, pt.section.PublicDeps); err != nil {
			return nil, err
		}
		if t.PrivateDeps, err = resolveDeps(targets, pt.label, pt.section.Deps); err != nil {
			return nil, err
		}
		if t.DataDeps, err = resolveDeps(targets, pt.label, pt.section.DataDeps); err != nil {
			return nil, err
		}
	}

	for _, t := range targets {
		t.Resolve()
		b.Targets = append(b.Targets, t)
	}
	for _, t := range targets {
		inheritLibraries(t)
		for _, dep := range t.LinkedDeps() {
			if dep.BuildsSwiftModule() {
				t.Swift.Modules = append(t.Swift.Modules, dep)
			}
		}
	}

	slices.SortFunc(b.Targets, func(a, c *graph.Target) int {
		return strings.Compare(a.Label.String(), c.Label.String())
	})
	return b, nil
}

func makeTarget(b *Build, label graph.Label, typ graph.TargetType, dir string, s TargetSection) (*graph.Target, error) {
	t := &graph.Target{
		Label:     label,
		Type:      typ,
		Settings:  b.Settings,
		Toolchain: b.Toolchain,

		OutputNameOverride: s.OutputName,
		OutputDir:          s.OutputDir,
		CompleteStaticLib:  s.CompleteStaticLib,
		FrameworkBundle:    s.FrameworkBundle,
	}
	if s.OutputExtension != "" {
		t.OutputExtension = strings.TrimPrefix(s.OutputExtension, ".")
		t.OutputExtensionSet = true
	}

	var err error
	if t.Sources, err = collectSources(dir, label.Dir, s.Sources); err != nil {
		return nil, fmt.Errorf("failed to collect sources for %s: %w", label.String(), err)
	}
	if t.Inputs, err = collectSources(dir, label.Dir, s.Inputs); err != nil {
		return nil, fmt.Errorf("failed to collect inputs for %s: %w", label.String(), err)
	}

	cv := &t.OwnValues
	cv.Defines = s.Defines
	for _, inc := range s.IncludeDirs {
		cv.IncludeDirs = append(cv.IncludeDirs, label.Dir+strings.Trim(inc, "/"))
	}
	cv.CFlags = s.CFlags
	cv.CFlagsC = s.CFlagsC
	cv.CFlagsCc = s.CFlagsCc
	cv.CFlagsObjC = s.CFlagsObjC
	cv.CFlagsObjCc = s.CFlagsObjCc
	cv.AsmFlags = s.AsmFlags
	cv.SwiftFlags = s.SwiftFlags
	cv.LdFlags = s.LdFlags
	cv.ArFlags = s.ArFlags
	cv.LibDirs = s.LibDirs
	cv.Frameworks = s.Frameworks
	cv.FrameworkDirs = s.FrameworkDirs
	for _, lib := range s.Libs {
		cv.Libs = append(cv.Libs, graph.MakeLibFile(lib))
	}
	cv.PrecompiledHeader = s.PrecompiledHeader
	if s.PrecompiledSource != "" {
		cv.PrecompiledSource = graph.MakeSourceFile(label.Dir + strings.TrimPrefix(s.PrecompiledSource, "/"))
	}

	hasSwift := false
	for _, src := range t.Sources {
		if src.IsSwiftType() {
			hasSwift = true
			break
		}
	}
	if hasSwift {
		moduleName := s.SwiftModuleName
		if moduleName == "" {
			moduleName = label.Name
		}
		t.Swift.ModuleName = moduleName
		dirPart := label.DirNoSlashes()
		if dirPart == "" {
			dirPart = "obj"
		} else {
			dirPart = "obj/" + dirPart
		}
		t.Swift.ModuleOutputFile = graph.MakeOutputFile(dirPart + "/" + moduleName + ".swiftmodule")
	}

	return t, nil
}

// collectSources globs patterns relative to dir and returns source-root-
// relative files under labelDir.
func collectSources(dir, labelDir string, patterns []string) ([]graph.SourceFile, error) {
	var files []graph.SourceFile
	fsys := os.DirFS(dir)
	for _, pat := range patterns {
		pat = strings.TrimPrefix(pat, "/")
		if !strings.ContainsAny(pat, "*?[{") {
			files = append(files, graph.MakeSourceFile(labelDir+pat))
			continue
		}
		matches, err := doublestar.Glob(fsys, pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		slices.Sort(matches)
		for _, match := range matches {
			files = append(files, graph.MakeSourceFile(labelDir+match))
		}
	}
	return files, nil
}

// resolveDeps maps dep label strings (":name" or "//dir:name" or "//dir")
// to targets.
func resolveDeps(targets map[string]*graph.Target, from graph.Label, deps []string) ([]*graph.Target, error) {
	var out []*graph.Target
	for _, dep := range deps {
		label, err := parseLabel(from, dep)
		if err != nil {
			return nil, fmt.Errorf("in target %s: %w", from.String(), err)
		}
		t, ok := targets[label.String()]
		if !ok {
			return nil, fmt.Errorf("target %s depends on unknown target %s", from.String(), label.String())
		}
		out = append(out, t)
	}
	return out, nil
}

func parseLabel(from graph.Label, s string) (graph.Label, error) {
	switch {
	case strings.HasPrefix(s, ":"):
		return graph.MakeLabel(from.Dir, s[1:]), nil
	case strings.HasPrefix(s, "//"):
		rest := s[2:]
		if i := strings.IndexByte(rest, ':'); i >= 0 {
			return graph.MakeLabel("//"+rest[:i], rest[i+1:]), nil
		}
		// "//foo/bar" names target bar in //foo/bar.
		name := rest
		if i := strings.LastIndexByte(rest, '/'); i >= 0 {
			name = rest[i+1:]
		}
		return graph.MakeLabel("//"+rest, name), nil
	}
	return graph.Label{}, fmt.Errorf("malformed dependency label %q", s)
}

// inheritLibraries fills the ordered transitive closure of linkable deps.
func inheritLibraries(t *graph.Target) {
	if t.InheritedLibraries != nil {
		return
	}
	seen := make(map[*graph.Target]struct{})
	var walk func(cur *graph.Target)
	walk = func(cur *graph.Target) {
		for _, dep := range cur.LinkedDeps() {
			if _, dup := seen[dep]; dup {
				continue
			}
			seen[dep] = struct{}{}
			if dep.IsLinkable() {
				t.InheritedLibraries = append(t.InheritedLibraries, dep)
			}
			// Shared libraries keep their own subtree; everything below
			// them links into the library itself.
			if dep.Type != graph.TargetSharedLibrary {
				walk(dep)
			}
		}
	}
	walk(t)
	if t.InheritedLibraries == nil {
		t.InheritedLibraries = []*graph.Target{}
	}
}
