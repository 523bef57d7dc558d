// facturacr is a command line front end for the document generation
// engine: it reads invoice JSON, allocates identifiers and writes the
// serialized XML document.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	return root().cmd().ExecuteContext(context.Background())
}
