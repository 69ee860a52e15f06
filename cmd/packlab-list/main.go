// Command packlab-list prints the package inventory of a workspace.
package main

import "github.com/robolab/packlab/cmd/packlab-list/cmd"

func main() {
	cmd.Execute()
}
