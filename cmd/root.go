// gn [path], gn gen [path]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TritiumXs/gn/internal/loader"
	"github.com/TritiumXs/gn/internal/msg"
	"github.com/TritiumXs/gn/internal/sched"
)

var (
	flagJobs      int
	flagOutDir    string
	flagVerbose   bool
	flagToolchain EnumValue = NewEnumValue("auto", map[string]string{
		"auto": "Pick a toolchain for the host platform (default)",
		"gcc":  "gcc/clang tool set with .gch precompiled headers",
		"msvc": "cl.exe tool set with object precompiled headers",
	})
)

func doGen(cmd *cobra.Command, args []string) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	msg.Verbose = flagVerbose

	b, err := loader.Load(root, loader.Options{
		Toolchain:    flagToolchain.Value(),
		BuildDirName: flagOutDir,
	})
	if err != nil {
		msg.Fatal("%v", err)
	}

	ctx := sched.NewContext()
	ctx.SetVerbose(flagVerbose)

	out, err := loader.EmitAll(ctx, b, flagJobs)
	if err != nil {
		for _, e := range ctx.Errs() {
			msg.Error("%v", e)
		}
		os.Exit(1)
	}

	buildDir := filepath.Join(root, flagOutDir)
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		msg.Fatal("%v", err)
	}
	buildFile := filepath.Join(buildDir, "build.ninja")
	if !ctx.AddWrittenFile(buildFile) {
		msg.Fatal("output file %s written twice", buildFile)
	}
	if err := os.WriteFile(buildFile, out, 0644); err != nil {
		msg.Fatal("%v", err)
	}
	msg.Info("wrote %s (%d targets)", buildFile, len(b.Targets))
}

var rootCmd = &cobra.Command{
	Use:   "gn [root path]",
	Short: "Generate ninja build files from build descriptions",
	Long:  `Generate ninja build files from build descriptions`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doGen,
}

var genCmd = &cobra.Command{
	Use:   "gen [root path]",
	Short: "Generate the build file",
	Long:  `Generate the build file. If no root path is given, uses "."`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doGen,
}

func init() {
	addGenFlags(rootCmd)

	// gn gen subcommand
	rootCmd.AddCommand(genCmd)
	addGenFlags(genCmd)
}

func addGenFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&flagJobs, "jobs", "j", 0, "Number of targets to emit in parallel (0 = all CPUs)")
	cmd.Flags().StringVarP(&flagOutDir, "out", "o", "out", "Name of the output directory under the root")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every emitted target")
	cmd.Flags().VarP(&flagToolchain, "toolchain", "t", "Toolchain to generate for, one of "+flagToolchain.HelpString())
	cmd.RegisterFlagCompletionFunc("toolchain", flagToolchain.CompletionFunc())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
