// Command packlab-submit packs a workspace project and uploads it to the
// lab job API.
package main

import "github.com/robolab/packlab/cmd/packlab-submit/cmd"

func main() {
	cmd.Execute()
}
