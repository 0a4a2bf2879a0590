package loader

import (
	"slices"
	"strings"

	"github.com/TritiumXs/gn/internal/graph"
	"github.com/TritiumXs/gn/internal/ninja"
)

// WriteRules writes the pool and rule definitions for the build's toolchain
// so the emitted edges are loadable on their own.
func WriteRules(out *strings.Builder, b *Build) {
	tools := b.Toolchain.Tools()
	names := make([]string, 0, len(tools))
	pools := make(map[string]struct{})
	for name, tool := range tools {
		names = append(names, name)
		if tool.Pool != "" {
			pools[tool.Pool] = struct{}{}
		}
	}
	slices.Sort(names)

	poolNames := make([]string, 0, len(pools))
	for name := range pools {
		poolNames = append(poolNames, name)
	}
	slices.Sort(poolNames)
	for _, name := range poolNames {
		out.WriteString("pool ")
		out.WriteString(name)
		out.WriteString("\n  depth = 1\n\n")
	}

	prefix := ninja.RulePrefix(b.Settings, b.Toolchain)
	for _, name := range names {
		tool := tools[name]
		if tool.Command == "" {
			continue
		}
		out.WriteString("rule ")
		out.WriteString(prefix)
		out.WriteString(name)
		out.WriteString("\n  command = ")
		out.WriteString(graph.MustParsePattern(tool.Command).NinjaForRule())
		out.WriteString("\n")
		if tool.Description != "" {
			out.WriteString("  description = ")
			out.WriteString(graph.MustParsePattern(tool.Description).NinjaForRule())
			out.WriteString("\n")
		}
		if tool.Depfile != "" {
			out.WriteString("  depfile = ")
			out.WriteString(graph.MustParsePattern(tool.Depfile).NinjaForRule())
			out.WriteString("\n  deps = ")
			if tool.DepsFormat != "" {
				out.WriteString(tool.DepsFormat)
			} else {
				out.WriteString("gcc")
			}
			out.WriteString("\n")
		} else if tool.DepsFormat == "msvc" {
			out.WriteString("  deps = msvc\n")
		}
		if tool.Rspfile != "" {
			out.WriteString("  rspfile = ")
			out.WriteString(graph.MustParsePattern(tool.Rspfile).NinjaForRule())
			out.WriteString("\n")
			if tool.RspfileContent != "" {
				out.WriteString("  rspfile_content = ")
				out.WriteString(graph.MustParsePattern(tool.RspfileContent).NinjaForRule())
				out.WriteString("\n")
			}
		}
		out.WriteString("\n")
	}
}
