// Command gridctl computes grid lines, edge labels and formatted coordinates
// without running the API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
