package ninja

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "obj/foo/bar.o", escapePath("obj/foo/bar.o"))
	assert.Equal(t, "obj/my$ dir/a.o", escapePath("obj/my dir/a.o"))
	assert.Equal(t, "c$:/x.o", escapePath("c:/x.o"))
	assert.Equal(t, "a$$b", escapePath("a$b"))
}

func TestEscapeCommand(t *testing.T) {
	assert.Equal(t, "-std=c++17", escapeCommand("-std=c++17"))
	assert.Equal(t, "-Wl,--start-group", escapeCommand("-Wl,--start-group"))
	assert.Equal(t, `"-DNAME=\"value\""`, escapeCommand(`-DNAME="value"`))
	assert.Equal(t, `"a b"`, escapeCommand("a b"))
	assert.Equal(t, `"a$$b"`, escapeCommand("a$b"))
}
