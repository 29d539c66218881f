// The main package for the urlcanon executable.
package main

import (
	"github.com/archivemark/urlcanon/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
