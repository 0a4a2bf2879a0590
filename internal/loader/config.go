// Package loader reads build description files, resolves the target graph
// and drives per-target emission.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/pelletier/go-toml/v2"
)

// DescFilename is the build description file read from the root directory
// and from each imported directory.
const DescFilename = "gn.toml"

// Desc is one parsed description file.
type Desc struct {
	Package PackageSection           `toml:"package"`
	Targets map[string]TargetSection `toml:"target"`
	Imports map[string]string        `toml:"imports"`
}

// PackageSection defines the [package] section.
type PackageSection struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Authors     []string `toml:"authors"`
}

// TargetSection defines one [target.*] table.
type TargetSection struct {
	Type string `toml:"type"`

	Sources []string `toml:"sources"`
	Inputs  []string `toml:"inputs"`

	Deps       []string `toml:"deps"`
	PublicDeps []string `toml:"public_deps"`
	DataDeps   []string `toml:"data_deps"`

	Defines     []string `toml:"defines"`
	IncludeDirs []string `toml:"include_dirs"`

	CFlags      []string `toml:"cflags"`
	CFlagsC     []string `toml:"cflags_c"`
	CFlagsCc    []string `toml:"cflags_cc"`
	CFlagsObjC  []string `toml:"cflags_objc"`
	CFlagsObjCc []string `toml:"cflags_objcc"`
	AsmFlags    []string `toml:"asmflags"`
	SwiftFlags  []string `toml:"swiftflags"`
	LdFlags     []string `toml:"ldflags"`
	ArFlags     []string `toml:"arflags"`

	Libs          []string `toml:"libs"`
	LibDirs       []string `toml:"lib_dirs"`
	Frameworks    []string `toml:"frameworks"`
	FrameworkDirs []string `toml:"framework_dirs"`

	PrecompiledHeader string `toml:"precompiled_header"`
	PrecompiledSource string `toml:"precompiled_source"`

	OutputName      string `toml:"output_name"`
	OutputExtension string `toml:"output_extension"`
	OutputDir       string `toml:"output_dir"`

	SwiftModuleName string `toml:"swift_module_name"`

	FrameworkBundle   bool `toml:"framework_bundle"`
	CompleteStaticLib bool `toml:"complete_static_lib"`
}

// Env is the expression environment conditional sections evaluate against.
type Env struct {
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Environ    map[string]string `expr:"environ"`
}

func NewEnv() Env {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if i := strings.Index(e, "="); i >= 0 {
			environ[e[:i]] = e[i+1:]
		}
	}
	return Env{
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Environ:    environ,
	}
}

// mergeStructs appends/overwrites the fields of src into dst. Slices append,
// bools or, everything else overwrites when non-zero.
func mergeStructs(dst, src any) error {
	dstVal := reflect.ValueOf(dst)
	if dstVal.Kind() != reflect.Pointer || dstVal.Elem().Kind() != reflect.Struct {
		return errors.New("dst must be a pointer to a struct")
	}
	dstElem := dstVal.Elem()
	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() == reflect.Pointer {
		srcVal = srcVal.Elem()
	}
	if srcVal.Kind() != reflect.Struct || dstElem.Type() != srcVal.Type() {
		return errors.New("dst and src must be of the same struct type")
	}

	for i := range srcVal.NumField() {
		srcField := srcVal.Field(i)
		dstField := dstElem.Field(i)
		if !dstField.CanSet() {
			continue
		}
		switch dstField.Kind() {
		case reflect.Slice:
			if !srcField.IsNil() {
				dstField.Set(reflect.AppendSlice(dstField, srcField))
			}
		case reflect.Bool:
			dstField.SetBool(dstField.Bool() || srcField.Bool())
		default:
			if !srcField.IsZero() {
				dstField.Set(srcField)
			}
		}
	}
	return nil
}

func mustMarshal(v any) string {
	b, err := toml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// unmarshalTargetSection parses one target table, evaluating and merging
// conditional sub-tables whose key compiles as a boolean expression.
func unmarshalTargetSection(raw map[string]any, name string, env Env) (TargetSection, error) {
	var dst TargetSection

	baseFields := make(map[string]any)
	type condField struct {
		key string
		sub map[string]any
	}
	var conditionals []condField

	for key, val := range raw {
		if subMap, ok := val.(map[string]any); ok {
			if _, err := expr.Compile(key, expr.Env(env)); err == nil {
				conditionals = append(conditionals, condField{key, subMap})
				continue
			}
		}
		baseFields[key] = val
	}

	if len(baseFields) > 0 {
		if err := toml.Unmarshal([]byte(mustMarshal(baseFields)), &dst); err != nil {
			return dst, fmt.Errorf("failed to parse [target.%s]: %w", name, err)
		}
	}

	for _, cond := range conditionals {
		program, err := expr.Compile(cond.key, expr.Env(env))
		if err != nil {
			return dst, fmt.Errorf("failed to compile condition [target.%s.%q]: %w", name, cond.key, err)
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return dst, fmt.Errorf("failed to run condition [target.%s.%q]: %w", name, cond.key, err)
		}
		if matched, ok := result.(bool); !ok || !matched {
			continue
		}
		var section TargetSection
		if err := toml.Unmarshal([]byte(mustMarshal(cond.sub)), &section); err != nil {
			return dst, fmt.Errorf("failed to parse conditional section [target.%s.%q]: %w", name, cond.key, err)
		}
		if err := mergeStructs(&dst, section); err != nil {
			return dst, fmt.Errorf("failed to merge conditional section [target.%s.%q]: %w", name, cond.key, err)
		}
	}

	return dst, nil
}

var exprRegex = regexp.MustCompile(`\{\{(.+?)\}\}`)

// evaluateString expands every {{...}} expression in s against env.
func evaluateString(s string, env Env) (string, error) {
	matches := exprRegex.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var builder strings.Builder
	lastIndex := 0
	for _, m := range matches {
		builder.WriteString(s[lastIndex:m[0]])

		expression := strings.TrimSpace(s[m[2]:m[3]])
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			return "", fmt.Errorf("failed to compile expression %q: %w", expression, err)
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return "", fmt.Errorf("failed to run expression %q: %w", expression, err)
		}
		fmt.Fprintf(&builder, "%v", result)
		lastIndex = m[1]
	}
	builder.WriteString(s[lastIndex:])
	return builder.String(), nil
}

// processExpressions walks the decoded TOML tree and expands expressions in
// every string.
func processExpressions(data any, env Env) (any, error) {
	switch v := data.(type) {
	case map[string]any:
		for key, val := range v {
			processed, err := processExpressions(val, env)
			if err != nil {
				return nil, err
			}
			v[key] = processed
		}
		return v, nil
	case []any:
		for i, item := range v {
			processed, err := processExpressions(item, env)
			if err != nil {
				return nil, err
			}
			v[i] = processed
		}
		return v, nil
	case string:
		return evaluateString(v, env)
	default:
		return data, nil
	}
}

// ParseDesc parses one description file.
func ParseDesc(rdr io.Reader, env Env) (*Desc, error) {
	var raw map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}

	processed, err := processExpressions(raw, env)
	if err != nil {
		return nil, fmt.Errorf("error processing expressions in description: %w", err)
	}
	raw = processed.(map[string]any)

	desc := new(Desc)
	if data, ok := raw["package"]; ok {
		if err := toml.Unmarshal([]byte(mustMarshal(data)), &desc.Package); err != nil {
			return nil, fmt.Errorf("failed to parse [package] section: %w", err)
		}
	}
	if data, ok := raw["imports"]; ok {
		if err := toml.Unmarshal([]byte(mustMarshal(data)), &desc.Imports); err != nil {
			return nil, fmt.Errorf("failed to parse [imports] section: %w", err)
		}
	}
	if data, ok := raw["target"]; ok {
		targets, ok := data.(map[string]any)
		if !ok {
			return nil, errors.New("invalid [target] section format: expected a table")
		}
		desc.Targets = make(map[string]TargetSection, len(targets))
		for name, val := range targets {
			sub, ok := val.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid [target.%s] format: expected a table", name)
			}
			section, err := unmarshalTargetSection(sub, name, env)
			if err != nil {
				return nil, err
			}
			desc.Targets[name] = section
		}
	}
	return desc, nil
}

// ParseDescFromFile parses a description file from disk.
func ParseDescFromFile(path string, env Env) (*Desc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDesc(bufio.NewReader(f), env)
}
