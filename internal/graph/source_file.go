package graph

import (
	"path"
	"strings"
)

// SourceType classifies a source file by its extension.
type SourceType int

const (
	SourceUnknown SourceType = iota
	SourceC
	SourceCpp
	SourceH
	SourceM
	SourceMM
	SourceS
	SourceRC
	SourceO
	SourceDef
	SourceRS
	SourceSwift
	SourceModuleMap

	sourceNumTypes
)

// SourceFile is a source-root-relative path, e.g. "//foo/bar.cc".
type SourceFile struct {
	value string
}

func MakeSourceFile(value string) SourceFile {
	return SourceFile{value: value}
}

func (f SourceFile) Value() string { return f.value }
func (f SourceFile) IsNull() bool  { return f.value == "" }

// Extension returns the part after the last dot, without the dot.
func (f SourceFile) Extension() string {
	base := path.Base(f.value)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// Name returns the file name including extension.
func (f SourceFile) Name() string { return path.Base(f.value) }

// NamePart returns the file name without extension.
func (f SourceFile) NamePart() string {
	base := path.Base(f.value)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// Dir returns the source-root-relative directory with a trailing slash,
// e.g. "//foo/" for "//foo/bar.cc".
func (f SourceFile) Dir() string {
	if i := strings.LastIndexByte(f.value, '/'); i >= 0 {
		return f.value[:i+1]
	}
	return ""
}

func (f SourceFile) Type() SourceType {
	switch f.Extension() {
	case "cc", "cpp", "cxx":
		return SourceCpp
	case "h", "hpp", "hxx", "hh", "inc":
		return SourceH
	case "c":
		return SourceC
	case "m":
		return SourceM
	case "mm":
		return SourceMM
	case "rc":
		return SourceRC
	case "S", "s", "asm":
		return SourceS
	case "o", "obj":
		return SourceO
	case "def":
		return SourceDef
	case "rs":
		return SourceRS
	case "swift":
		return SourceSwift
	case "modulemap":
		return SourceModuleMap
	}
	return SourceUnknown
}

func (f SourceFile) IsDefType() bool       { return f.Type() == SourceDef }
func (f SourceFile) IsObjectType() bool    { return f.Type() == SourceO }
func (f SourceFile) IsSwiftType() bool     { return f.Type() == SourceSwift }
func (f SourceFile) IsModuleMapType() bool { return f.Type() == SourceModuleMap }

// SourceTypeSet records which source types appear in a target.
type SourceTypeSet struct {
	flags [sourceNumTypes]bool
	empty bool
}

func NewSourceTypeSet() SourceTypeSet {
	return SourceTypeSet{empty: true}
}

func (s *SourceTypeSet) Set(t SourceType) {
	s.flags[t] = true
	s.empty = false
}

func (s *SourceTypeSet) Get(t SourceType) bool { return s.flags[t] }

func (s *SourceTypeSet) CSourceUsed() bool {
	return s.empty || s.Get(SourceCpp) || s.Get(SourceH) || s.Get(SourceC) ||
		s.Get(SourceM) || s.Get(SourceMM) || s.Get(SourceRC) || s.Get(SourceS) ||
		s.Get(SourceO) || s.Get(SourceDef) || s.Get(SourceModuleMap)
}

func (s *SourceTypeSet) SwiftSourceUsed() bool { return s.Get(SourceSwift) }
func (s *SourceTypeSet) RustSourceUsed() bool  { return s.Get(SourceRS) }

func (s *SourceTypeSet) MixedSourceUsed() bool {
	n := 0
	if s.CSourceUsed() {
		n++
	}
	if s.SwiftSourceUsed() {
		n++
	}
	if s.RustSourceUsed() {
		n++
	}
	return n > 1
}
