//go:build windows

package loader

import (
	"os"
	"path/filepath"

	"github.com/heaths/go-vssetup"

	"github.com/TritiumXs/gn/internal/msg"
)

// findMSVC locates the newest Visual Studio installation and returns the
// root of its MSVC toolset, or "" when none is installed.
func findMSVC() string {
	instances, err := vssetup.Instances(false)
	if err != nil {
		msg.Warn("could not enumerate Visual Studio instances: %v", err)
		return ""
	}

	var best string
	for _, instance := range instances {
		defer instance.Close()
		path, err := instance.InstallationPath()
		if err != nil {
			continue
		}
		verFile := filepath.Join(path, "VC", "Auxiliary", "Build", "Microsoft.VCToolsVersion.default.txt")
		if _, err := os.Stat(verFile); err == nil {
			best = path
		}
	}
	return best
}
