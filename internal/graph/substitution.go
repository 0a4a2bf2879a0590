package graph

import (
	"fmt"
	"strings"
)

// Substitution is one of the closed set of placeholders a tool template may
// reference. Tools declare which substitutions they use as a bitset so the
// emitter never compares placeholder names in the hot path.
type Substitution int

const (
	SubstNone Substitution = iota

	// Shared.
	SubstLabel
	SubstLabelName
	SubstOutput
	SubstRootOutDir
	SubstTargetOutDir
	SubstTargetOutputName

	// Compiler, per-source.
	SubstSource
	SubstSourceNamePart
	SubstSourceFilePart
	SubstSourceOutDir

	// C-family flag variables.
	SubstAsmFlags
	SubstCFlags
	SubstCFlagsC
	SubstCFlagsCc
	SubstCFlagsObjC
	SubstCFlagsObjCc
	SubstDefines
	SubstIncludeDirs
	SubstModuleDeps
	SubstModuleDepsNoSelf

	// Linker.
	SubstOutputDir
	SubstOutputExtension
	SubstLdFlags
	SubstLibs
	SubstFrameworks
	SubstSwiftModules
	SubstArFlags
	SubstSolibs
	SubstRlibs

	// Swift compile.
	SubstSwiftFlags
	SubstSwiftModuleName

	substNumTypes
)

var substNinjaNames = [substNumTypes]string{
	SubstNone:             "",
	SubstLabel:            "label",
	SubstLabelName:        "label_name",
	SubstOutput:           "output",
	SubstRootOutDir:       "root_out_dir",
	SubstTargetOutDir:     "target_out_dir",
	SubstTargetOutputName: "target_output_name",
	SubstSource:           "source",
	SubstSourceNamePart:   "source_name_part",
	SubstSourceFilePart:   "source_file_part",
	SubstSourceOutDir:     "source_out_dir",
	SubstAsmFlags:         "asmflags",
	SubstCFlags:           "cflags",
	SubstCFlagsC:          "cflags_c",
	SubstCFlagsCc:         "cflags_cc",
	SubstCFlagsObjC:       "cflags_objc",
	SubstCFlagsObjCc:      "cflags_objcc",
	SubstDefines:          "defines",
	SubstIncludeDirs:      "include_dirs",
	SubstModuleDeps:       "module_deps",
	SubstModuleDepsNoSelf: "module_deps_no_self",
	SubstOutputDir:        "output_dir",
	SubstOutputExtension:  "output_extension",
	SubstLdFlags:          "ldflags",
	SubstLibs:             "libs",
	SubstFrameworks:       "frameworks",
	SubstSwiftModules:     "swiftmodules",
	SubstArFlags:          "arflags",
	SubstSolibs:           "solibs",
	SubstRlibs:            "rlibs",
	SubstSwiftFlags:       "swiftflags",
	SubstSwiftModuleName:  "module_name",
}

// NinjaName returns the variable name the substitution expands to in the
// emitted file.
func (s Substitution) NinjaName() string { return substNinjaNames[s] }

var substByName = func() map[string]Substitution {
	m := make(map[string]Substitution, substNumTypes)
	for i := Substitution(1); i < substNumTypes; i++ {
		m[substNinjaNames[i]] = i
	}
	return m
}()

// SubstitutionBits is the set of substitutions a tool (or toolchain) uses.
type SubstitutionBits uint64

func (b SubstitutionBits) Has(s Substitution) bool   { return b&(1<<uint(s)) != 0 }
func (b *SubstitutionBits) Add(s Substitution)       { *b |= 1 << uint(s) }
func (b *SubstitutionBits) Merge(o SubstitutionBits) { *b |= o }

// patternSegment is either a literal or one substitution placeholder.
type patternSegment struct {
	literal string
	subst   Substitution
}

// SubstitutionPattern is a parsed template like
// "{{source_out_dir}}/{{target_output_name}}.{{source_name_part}}.o".
type SubstitutionPattern struct {
	segments []patternSegment
	required SubstitutionBits
}

func (p SubstitutionPattern) Empty() bool                    { return len(p.segments) == 0 }
func (p SubstitutionPattern) RequiredBits() SubstitutionBits { return p.required }

// MustParsePattern parses a template string, panicking on malformed input.
// Tool templates are program constants, so a parse failure is a programming
// error.
func MustParsePattern(s string) SubstitutionPattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

func ParsePattern(s string) (SubstitutionPattern, error) {
	var p SubstitutionPattern
	for len(s) > 0 {
		open := strings.Index(s, "{{")
		if open < 0 {
			p.segments = append(p.segments, patternSegment{literal: s})
			break
		}
		if open > 0 {
			p.segments = append(p.segments, patternSegment{literal: s[:open]})
		}
		s = s[open+2:]
		close := strings.Index(s, "}}")
		if close < 0 {
			return SubstitutionPattern{}, fmt.Errorf("unterminated {{ in substitution pattern")
		}
		name := s[:close]
		sub, ok := substByName[name]
		if !ok {
			return SubstitutionPattern{}, fmt.Errorf("unknown substitution %q", name)
		}
		p.segments = append(p.segments, patternSegment{subst: sub})
		p.required.Add(sub)
		s = s[close+2:]
	}
	return p, nil
}

// NinjaForRule renders the pattern as rule text: {{source}} maps to $in,
// {{output}} to $out, everything else to a variable reference.
func (p SubstitutionPattern) NinjaForRule() string {
	var sb strings.Builder
	for _, seg := range p.segments {
		switch seg.subst {
		case SubstNone:
			sb.WriteString(seg.literal)
		case SubstSource:
			sb.WriteString("$in")
		case SubstOutput:
			sb.WriteString("$out")
		default:
			sb.WriteString("${")
			sb.WriteString(seg.subst.NinjaName())
			sb.WriteString("}")
		}
	}
	return sb.String()
}

// SubstitutionList is an ordered list of patterns, e.g. a tool's outputs.
type SubstitutionList []SubstitutionPattern

func MustParsePatternList(ss ...string) SubstitutionList {
	list := make(SubstitutionList, 0, len(ss))
	for _, s := range ss {
		list = append(list, MustParsePattern(s))
	}
	return list
}

func (l SubstitutionList) RequiredBits() SubstitutionBits {
	var bits SubstitutionBits
	for _, p := range l {
		bits.Merge(p.required)
	}
	return bits
}
