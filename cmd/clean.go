// gn clean [path]
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TritiumXs/gn/internal/msg"
)

func doClean(cmd *cobra.Command, args []string) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	buildDir := filepath.Join(root, flagOutDir)
	if _, err := os.Stat(buildDir); os.IsNotExist(err) {
		msg.Warn("nothing to clean: %s does not exist", buildDir)
		return
	}
	if err := os.RemoveAll(buildDir); err != nil {
		msg.Fatal("%v", err)
	}
	msg.Info("removed %s", buildDir)
}

var cleanCmd = &cobra.Command{
	Use:   "clean [root path]",
	Short: "Remove the output directory",
	Long:  `Remove the output directory. If no root path is given, uses "."`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doClean,
}

func init() {
	// gn clean subcommand
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&flagOutDir, "out", "o", "out", "Name of the output directory under the root")
}
