package graph

// ClassifiedDeps is the per-class view of a target's dependencies the link
// step needs. Each list keeps the order classification discovered its
// members, so emission stays byte-stable.
type ClassifiedDeps struct {
	// LinkableDeps are libraries whose output enters the link line.
	LinkableDeps []*Target

	// NonLinkableDeps produce no linkable artifact (actions, groups,
	// source sets); they only gate ordering.
	NonLinkableDeps []*Target

	// FrameworkDeps assemble framework bundles; their stamp is an implicit
	// relink dependency.
	FrameworkDeps []*Target

	// SwiftModuleDeps build Swift modules imported by this target.
	SwiftModuleDeps []*Target

	// ExtraObjectFiles are objects contributed by source-set deps.
	ExtraObjectFiles []OutputFile
}

// uniqueTargets appends t unless already present, preserving order.
func uniqueTargets(list []*Target, t *Target) []*Target {
	for _, cur := range list {
		if cur == t {
			return list
		}
	}
	return append(list, t)
}

// ClassifiedDeps classifies the target's dependencies once and memoizes the
// result; the graph is immutable during emission so this is safe to share.
func (t *Target) ClassifiedDeps() *ClassifiedDeps {
	if !t.hasClassified {
		t.classified = classifyDeps(t)
		t.hasClassified = true
	}
	return &t.classified
}

func classifyDeps(t *Target) ClassifiedDeps {
	var cd ClassifiedDeps

	for _, dep := range t.LinkedDeps() {
		classifyOne(&cd, dep)
	}

	// Data deps never link; they only need to exist by the time this
	// target's output is used.
	for _, dep := range t.DataDeps {
		cd.NonLinkableDeps = uniqueTargets(cd.NonLinkableDeps, dep)
	}

	return cd
}

func classifyOne(cd *ClassifiedDeps, dep *Target) {
	switch {
	case dep.Type == TargetSourceSet:
		// A source set's objects are linked directly by the dependent; the
		// stamp orders the compiles.
		cd.ExtraObjectFiles = append(cd.ExtraObjectFiles, dep.ObjectFiles()...)
		cd.NonLinkableDeps = uniqueTargets(cd.NonLinkableDeps, dep)
	case dep.FrameworkBundle:
		cd.FrameworkDeps = uniqueTargets(cd.FrameworkDeps, dep)
	case dep.BuildsSwiftModule():
		cd.SwiftModuleDeps = uniqueTargets(cd.SwiftModuleDeps, dep)
		if dep.IsLinkable() {
			cd.LinkableDeps = uniqueTargets(cd.LinkableDeps, dep)
		}
	case dep.IsLinkable():
		cd.LinkableDeps = uniqueTargets(cd.LinkableDeps, dep)
	default:
		cd.NonLinkableDeps = uniqueTargets(cd.NonLinkableDeps, dep)
	}
}
