package loader

import (
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/TritiumXs/gn/internal/graph"
	"github.com/TritiumXs/gn/internal/ninja"
	"github.com/TritiumXs/gn/internal/sched"
)

// EmitAll emits every target into its own buffer, in parallel, and
// concatenates the blocks in deterministic target order behind the rule
// definitions. The graph is immutable by now, so emitters only share the
// context.
func EmitAll(ctx *sched.Context, b *Build, jobs int) ([]byte, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	buffers := make([]strings.Builder, len(b.Targets))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, t := range b.Targets {
		// A failed run stops scheduling; emits already in flight finish.
		if ctx.IsFailed() {
			break
		}
		g.Go(func() error {
			ctx.Log("emit", t.Label.String())
			emitTarget(ctx, t, &buffers[i])
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out strings.Builder
	out.WriteString("ninja_required_version = 1.7.2\n\n")
	WriteRules(&out, b)
	for i, t := range b.Targets {
		block := buffers[i].String()
		if block == "" {
			continue
		}
		out.WriteString("# ")
		out.WriteString(t.Label.String())
		out.WriteString("\n")
		out.WriteString(block)
		out.WriteString("\n")
	}
	return []byte(out.String()), nil
}

func emitTarget(ctx *sched.Context, t *graph.Target, out *strings.Builder) {
	switch t.Type {
	case graph.TargetExecutable, graph.TargetSharedLibrary, graph.TargetLoadableModule,
		graph.TargetStaticLibrary, graph.TargetSourceSet:
		// Errors are recorded on the context; the remaining targets still
		// emit so one bad target reports alongside the rest.
		ninja.NewCBinaryWriter(ctx, t, out).Run()
	case graph.TargetGroup, graph.TargetAction, graph.TargetActionForeach, graph.TargetCopy:
		emitStubStamp(t, out)
	default:
		// Rust targets have their own emitter outside this layer; their
		// outputs only appear here as dependencies.
	}
}

// emitStubStamp writes the stamp edge for targets without a dedicated
// emitter so dependents can order on their output.
func emitStubStamp(t *graph.Target, out *strings.Builder) {
	prefix := ninja.RulePrefix(t.Settings, t.Toolchain)
	out.WriteString("build ")
	out.WriteString(t.DependencyOutputFile().Value())
	out.WriteString(" : ")
	out.WriteString(prefix)
	out.WriteString(graph.ToolStamp)
	for _, dep := range t.LinkedDeps() {
		if d := dep.DependencyOutputFile(); !d.IsNull() {
			out.WriteString(" ")
			out.WriteString(d.Value())
		}
	}
	for _, dep := range t.DataDeps {
		if d := dep.DependencyOutputFile(); !d.IsNull() {
			out.WriteString(" ")
			out.WriteString(d.Value())
		}
	}
	out.WriteString("\n")
}
