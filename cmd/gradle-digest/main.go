// Command gradle-digest runs an Android project's Gradle wrapper, scrapes the
// output for failures and writes plain-text reports (source dump, build
// errors with code snippets, sync errors, source tree) for a downstream
// debugging session.
//
// Usage:
//
//	gradle-digest [--root DIR] [--config FILE] [--output DIR] [--bundle ZIP]
//	              [--build-log FILE] [--sync-log FILE] [--skip-build]
//	              [--timeout DUR] [--color auto|on|off] [--verbose|--quiet]
//
// The command exits 0 once its flags parse, whatever the build or the
// report stages did.
package main

import (
	"os"
)

// version is stamped at link time.
var version = "dev"

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr, os.LookupEnv)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
