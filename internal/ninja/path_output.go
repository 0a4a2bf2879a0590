package ninja

import (
	"strings"

	"github.com/TritiumXs/gn/internal/graph"
)

// pathOutput writes build-dir-relative paths with ninja path escaping.
// Separators are already forward slashes everywhere in the graph.
type pathOutput struct {
	bs *graph.BuildSettings
}

func (p pathOutput) WriteFile(sb *strings.Builder, f graph.OutputFile) {
	write(sb, escapePath(f.Value()))
}

// WriteFiles writes each file preceded by a space.
func (p pathOutput) WriteFiles(sb *strings.Builder, files []graph.OutputFile) {
	for _, f := range files {
		write(sb, " ")
		p.WriteFile(sb, f)
	}
}

// WriteSource writes a source-root-relative file rebased to the build dir.
func (p pathOutput) WriteSource(sb *strings.Builder, f graph.SourceFile) {
	write(sb, escapePath(p.bs.RebasePath(f.Value())))
}

func (p pathOutput) WriteSources(sb *strings.Builder, files []graph.SourceFile) {
	for _, f := range files {
		write(sb, " ")
		p.WriteSource(sb, f)
	}
}
