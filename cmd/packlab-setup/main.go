// Command packlab-setup builds a package descriptor and installs the
// declared package sources into a prefix.
package main

import "github.com/robolab/packlab/cmd/packlab-setup/cmd"

func main() {
	cmd.Execute()
}
