// Command h4tree prints the logical structure of HDF4 files: their groups,
// variables, shapes and, on request, attributes and values.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
