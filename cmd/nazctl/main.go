// Command nazctl runs maintenance tasks against the request store:
// schema upgrades, admin bootstrap and offline report exports.
package main

import (
	"fmt"
	"os"
)

func main() {
	root, rt := newRootCmd()
	err := root.Execute()
	rt.shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
