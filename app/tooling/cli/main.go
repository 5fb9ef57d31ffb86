// This program mines a chain from the command line and runs the hashing
// and key demonstrations.
package main

import "github.com/ardanlabs/powminer/app/tooling/cli/cmd"

func main() {
	cmd.Execute()
}
