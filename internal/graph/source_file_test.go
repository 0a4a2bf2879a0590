package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceFileType(t *testing.T) {
	cases := []struct {
		path string
		typ  SourceType
	}{
		{"//foo/a.c", SourceC},
		{"//foo/a.cc", SourceCpp},
		{"//foo/a.cpp", SourceCpp},
		{"//foo/a.cxx", SourceCpp},
		{"//foo/a.h", SourceH},
		{"//foo/a.hpp", SourceH},
		{"//foo/a.m", SourceM},
		{"//foo/a.mm", SourceMM},
		{"//foo/a.S", SourceS},
		{"//foo/a.asm", SourceS},
		{"//foo/a.o", SourceO},
		{"//foo/a.obj", SourceO},
		{"//foo/a.def", SourceDef},
		{"//foo/a.rs", SourceRS},
		{"//foo/a.swift", SourceSwift},
		{"//foo/module.modulemap", SourceModuleMap},
		{"//foo/a.rc", SourceRC},
		{"//foo/README", SourceUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.typ, MakeSourceFile(tc.path).Type(), tc.path)
	}
}

func TestSourceFileParts(t *testing.T) {
	f := MakeSourceFile("//foo/bar/baz.cc")
	assert.Equal(t, "baz.cc", f.Name())
	assert.Equal(t, "baz", f.NamePart())
	assert.Equal(t, "cc", f.Extension())
	assert.Equal(t, "//foo/bar/", f.Dir())

	noExt := MakeSourceFile("//foo/Makefile")
	assert.Equal(t, "Makefile", noExt.NamePart())
	assert.Equal(t, "", noExt.Extension())
}

func TestSourceTypeSet(t *testing.T) {
	s := NewSourceTypeSet()
	assert.True(t, s.CSourceUsed(), "empty set counts as C")
	assert.False(t, s.SwiftSourceUsed())

	s.Set(SourceSwift)
	assert.True(t, s.SwiftSourceUsed())
	assert.False(t, s.CSourceUsed())
	assert.False(t, s.MixedSourceUsed())

	s.Set(SourceCpp)
	assert.True(t, s.MixedSourceUsed())
}
