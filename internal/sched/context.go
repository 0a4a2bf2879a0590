// Package sched holds the state shared by every emitter in one run: the
// failure flag, the recorded errors and the written-file trackers. It is an
// explicit value passed through emission rather than process-global state.
package sched

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/TritiumXs/gn/internal/msg"
)

type Context struct {
	// failed flips once and is read without the lock by outer drivers
	// deciding whether to schedule more work. Go atomics are sequentially
	// consistent; the flag is advisory, so the strongest ordering is fine.
	failed atomic.Bool

	mu       sync.Mutex
	firstErr error
	errs     []error

	writtenFiles   map[string]struct{}
	generatedFiles map[string]string
	genDeps        []string

	sessionID string
	verbose   bool
}

func NewContext() *Context {
	return &Context{
		writtenFiles:   make(map[string]struct{}),
		generatedFiles: make(map[string]string),
		sessionID:      uuid.NewString(),
	}
}

func (c *Context) SessionID() string { return c.sessionID }

func (c *Context) SetVerbose(v bool) { c.verbose = v }

// FailWithError records err and marks the run as failed. The first error
// wins for reporting; later errors from the same batch are still kept.
func (c *Context) FailWithError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firstErr == nil {
		c.firstErr = err
	}
	c.errs = append(c.errs, err)
	c.failed.Store(true)
}

func (c *Context) IsFailed() bool { return c.failed.Load() }

// Err returns the first recorded error, or nil.
func (c *Context) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firstErr
}

// Errs returns every recorded error in arrival order.
func (c *Context) Errs() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]error, len(c.errs))
	copy(out, c.errs)
	return out
}

// AddWrittenFile records an output path about to be written. It returns
// false when the path was already claimed by another writer.
func (c *Context) AddWrittenFile(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.writtenFiles[path]; dup {
		return false
	}
	c.writtenFiles[path] = struct{}{}
	return true
}

// AddGeneratedFile maps a generated file to the label of the target that
// produces it.
func (c *Context) AddGeneratedFile(path, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generatedFiles[path] = label
}

// GeneratedFileOwner returns the label registered for a generated file.
func (c *Context) GeneratedFileOwner(path string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	label, ok := c.generatedFiles[path]
	return label, ok
}

// AddGenDependency declares that a file was read and affected the output,
// so regeneration must rerun when it changes.
func (c *Context) AddGenDependency(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genDeps = append(c.genDeps, path)
}

func (c *Context) GenDependencies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.genDeps))
	copy(out, c.genDeps)
	return out
}

// Log writes a progress line when verbose logging is on.
func (c *Context) Log(verb, message string) {
	if c.verbose {
		msg.Info("[%s] %s %s", c.sessionID[:8], verb, message)
	}
}
