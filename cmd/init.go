// gn init [name]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TritiumXs/gn/internal/loader"
	"github.com/TritiumXs/gn/internal/msg"
)

func writefile(content string, elem ...string) {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
			msg.Fatal("create file %s: %v", path, err)
		}
		fmt.Printf("%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
	}
}

func mkdir(elem ...string) {
	path := filepath.Join(elem...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		msg.Fatal("mkdir %s: %v", path, err)
	}
}

func getProgramName() string {
	if len(os.Args) == 0 {
		return "gn"
	}
	basename := filepath.Base(os.Args[0])
	return strings.TrimSuffix(basename, filepath.Ext(basename))
}

// initIn initializes a build description in an existing specified directory
func initIn(dir, name string, lib bool) {
	if lib {
		writefile(`[package]
name = "`+name+`"

[target.`+name+`]
type = "static_library"
sources = ["src/**/*.cc", "src/**/*.c"]
include_dirs = ["src"]
`, dir, loader.DescFilename)
	} else {
		writefile(`[package]
name = "`+name+`"

[target.`+name+`]
type = "executable"
sources = ["src/**/*.cc", "src/**/*.c"]
`, dir, loader.DescFilename)
	}

	mkdir(dir, "src")

	if lib {
		writefile(`#include <stdio.h>
#include "hello.h"

void hello(void) {
    puts("Hello, World!");
}
`, dir, "src", "hello.c")

		writefile(`#ifndef HELLO_H
#define HELLO_H

#ifdef __cplusplus
extern "C" {
#endif

void hello(void);

#ifdef __cplusplus
} // extern "C"
#endif

#endif
`, dir, "src", "hello.h")
	} else {
		writefile(`#include <stdio.h>

int main(void) {
    puts("Hello, World!");
    return 0;
}
`, dir, "src", "main.c")
	}

	writefile(`out/
`, dir, ".gitignore")

	programName := getProgramName()
	fmt.Printf("You can now do %s to generate the build file.\n",
		color.HiCyanString(programName+" gen "+dir))
}

var library bool

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new build description in the current directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initIn(".", args[0], library)
	},
}

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Create a new build description in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mkdir(args[0])
		initIn(args[0], filepath.Base(args[0]), library)
	},
}

func init() {
	// gn init subcommand
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&library, "lib", "l", false, "Create a library target")

	// gn new subcommand
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().BoolVarP(&library, "lib", "l", false, "Create a library target")
}
