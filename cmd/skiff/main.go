// Command skiff is the application entry point. It wires the capability
// modules into the shell and hands the process to the framework run loop;
// everything after that belongs to the framework and the modules.
package main

import (
	"embed"
	"log"

	"skiff/internal/host/fynehost"
	"skiff/internal/plugin/fs"
	"skiff/internal/shell"
)

//go:embed resources
var resources embed.FS

func main() {
	if err := shell.NewBuilder().
		Host(fynehost.New()).
		Plugin(fs.Init()).
		Run(shell.GenerateContext(resources, "resources")); err != nil {
		log.Fatalf("error while running application: %v", err)
	}
}
