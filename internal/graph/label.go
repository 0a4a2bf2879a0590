package graph

import "strings"

// Label identifies a target: "//dir:name". It carries no toolchain part;
// the toolchain is held by the target, and String never prints it.
type Label struct {
	// Dir is the source-root-relative directory with a trailing slash,
	// e.g. "//foo/".
	Dir  string
	Name string
}

func MakeLabel(dir, name string) Label {
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return Label{Dir: dir, Name: name}
}

// String returns the user-visible form without a toolchain suffix. This is
// also the internal Clang module name for modularized targets.
func (l Label) String() string {
	dir := l.Dir
	if dir != "//" {
		dir = strings.TrimSuffix(dir, "/")
	}
	return dir + ":" + l.Name
}

// DirNoSlashes returns the directory without the leading "//" or the
// trailing slash, e.g. "foo/bar".
func (l Label) DirNoSlashes() string {
	return strings.Trim(strings.TrimPrefix(l.Dir, "//"), "/")
}
