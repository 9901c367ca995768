// Command flowcanvas serves and inspects node pipelines.
//
// Usage:
//
//	flowcanvas serve --addr :8080 --endpoint http://127.0.0.1:8000/pipelines/parse
//	flowcanvas parse "Hello {{name}}"
//	flowcanvas demo --submit
//	flowcanvas version
package main

import (
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
