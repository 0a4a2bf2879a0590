package sched

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstErrorWins(t *testing.T) {
	ctx := NewContext()
	assert.False(t, ctx.IsFailed())
	assert.NoError(t, ctx.Err())

	first := errors.New("first")
	second := errors.New("second")
	ctx.FailWithError(first)
	ctx.FailWithError(second)

	assert.True(t, ctx.IsFailed())
	assert.Same(t, first, ctx.Err())
	assert.Equal(t, []error{first, second}, ctx.Errs())
}

func TestConcurrentFailures(t *testing.T) {
	ctx := NewContext()
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx.FailWithError(errors.New("boom"))
		}()
	}
	wg.Wait()

	assert.True(t, ctx.IsFailed())
	assert.Len(t, ctx.Errs(), 32)
	assert.Error(t, ctx.Err())
}

func TestWrittenFileTracking(t *testing.T) {
	ctx := NewContext()
	assert.True(t, ctx.AddWrittenFile("out/build.ninja"))
	assert.False(t, ctx.AddWrittenFile("out/build.ninja"))
	assert.True(t, ctx.AddWrittenFile("out/other.ninja"))
}

func TestGeneratedFilesAndGenDeps(t *testing.T) {
	ctx := NewContext()
	ctx.AddGeneratedFile("obj/foo/bar.a.o", "//foo:bar")
	owner, ok := ctx.GeneratedFileOwner("obj/foo/bar.a.o")
	assert.True(t, ok)
	assert.Equal(t, "//foo:bar", owner)
	_, ok = ctx.GeneratedFileOwner("obj/unknown.o")
	assert.False(t, ok)

	ctx.AddGenDependency("//foo/gn.toml")
	ctx.AddGenDependency("//lib/gn.toml")
	assert.Equal(t, []string{"//foo/gn.toml", "//lib/gn.toml"}, ctx.GenDependencies())
}

func TestSessionID(t *testing.T) {
	a, b := NewContext(), NewContext()
	assert.NotEmpty(t, a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}
