// Command hornverify is the CLI entry point: it delegates immediately
// to pkg/cmd, following Consensys-go-corset's separation between the
// cobra command tree (in pkg/cmd, importable and testable) and the
// thin main package that just calls cmd.Execute().
package main

import "github.com/hornverify/hornverify/pkg/cmd"

func main() {
	cmd.Execute()
}
