// Command recordview exercises the record view core from the terminal:
// localize schemas, diff and validate records, run the save pipeline against
// a REST collection, resolve remote-bound values and serve demo endpoints.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(defaultDeps()).Execute(); err != nil {
		os.Exit(1)
	}
}
