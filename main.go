package main

import "github.com/TritiumXs/gn/cmd"

func main() {
	cmd.Execute()
}
